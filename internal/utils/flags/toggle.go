package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const toggleValueErrorTemplateConstant = "invalid value %q (expected yes or no)"

// yesNoValue is a pflag.Value accepting the spoken yes/no forms alongside the
// usual boolean literals, so operators can write --draft=no as naturally as
// --draft=false.
type yesNoValue struct {
	target *bool
}

// AddToggleFlag registers name on flagSet as a yes/no flag bound to target.
// Passing the bare flag enables it; --name=no disables it.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	*target = defaultValue

	flagValue := &yesNoValue{target: target}
	flagSet.VarP(flagValue, name, shorthand, usage)

	registeredFlag := flagSet.Lookup(name)
	registeredFlag.NoOptDefVal = "yes"
	registeredFlag.DefValue = flagValue.String()
}

func (value *yesNoValue) Set(rawValue string) error {
	switch strings.ToLower(strings.TrimSpace(rawValue)) {
	case "yes", "y", "true", "t", "on", "1", "":
		*value.target = true
	case "no", "n", "false", "f", "off", "0":
		*value.target = false
	default:
		return fmt.Errorf(toggleValueErrorTemplateConstant, rawValue)
	}
	return nil
}

func (value *yesNoValue) String() string {
	if value.target != nil && *value.target {
		return "yes"
	}
	return "no"
}

func (value *yesNoValue) Type() string {
	return "yes|no"
}

// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote name to target"
)

// ExecutionFlags captures the resolved values of the shared execution flags.
type ExecutionFlags struct {
	AssumeYes    bool
	AssumeYesSet bool
	Remote       string
	RemoteSet    bool
}

// BindExecutionFlags attaches the shared execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()
	persistentFlagSet.BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, false, AssumeYesFlagUsage)
	persistentFlagSet.String(RemoteFlagName, "", RemoteFlagUsage)
}

// ResolveExecutionFlags reads the shared execution flags from the command hierarchy.
func ResolveExecutionFlags(command *cobra.Command) (ExecutionFlags, bool) {
	if command == nil {
		return ExecutionFlags{}, false
	}

	inheritedFlagSet := command.Flags()
	if inheritedFlagSet.Lookup(AssumeYesFlagName) == nil {
		inheritedFlagSet = command.InheritedFlags()
	}
	if inheritedFlagSet == nil || inheritedFlagSet.Lookup(AssumeYesFlagName) == nil {
		return ExecutionFlags{}, false
	}

	resolvedFlags := ExecutionFlags{}
	if assumeYesValue, assumeYesError := inheritedFlagSet.GetBool(AssumeYesFlagName); assumeYesError == nil {
		resolvedFlags.AssumeYes = assumeYesValue
		resolvedFlags.AssumeYesSet = inheritedFlagSet.Changed(AssumeYesFlagName)
	}
	if remoteValue, remoteError := inheritedFlagSet.GetString(RemoteFlagName); remoteError == nil {
		resolvedFlags.Remote = remoteValue
		resolvedFlags.RemoteSet = inheritedFlagSet.Changed(RemoteFlagName)
	}

	return resolvedFlags, true
}

package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultConfiguration []byte

// EmbeddedDefaultConfiguration returns a copy of the baked-in configuration
// defaults together with their format identifier.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return append([]byte(nil), embeddedDefaultConfiguration...), "yaml"
}

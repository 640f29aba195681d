// Package patterns provides the embedded default recognizer definitions for
// the pattern matcher. The YAML uses a Presidio-style recognizer format so
// operators can override or extend it with their own files.
package patterns

import _ "embed"

//go:embed recognizers.yaml
var recognizersYAML []byte

// RecognizersYAML returns the embedded default recognizer definitions.
func RecognizersYAML() []byte { return recognizersYAML }

package detect

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/leedsrising/pdf-to-text/internal/span"
	"github.com/leedsrising/pdf-to-text/patterns"
)

// RecognizerFile is the top-level YAML structure for a recognizer config
// file, in a Presidio-compatible layout.
type RecognizerFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
}

// RecognizerConfig declares one family of regex patterns producing a single
// placeholder label.
type RecognizerConfig struct {
	Name            string          `yaml:"name" json:"name"`
	SupportedEntity string          `yaml:"supported_entity" json:"supported_entity"`
	Enabled         *bool           `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns        []PatternConfig `yaml:"patterns,omitempty" json:"patterns,omitempty"`
}

// PatternConfig is a single regex within a recognizer.
type PatternConfig struct {
	Name  string `yaml:"name" json:"name"`
	Regex string `yaml:"regex" json:"regex"`
}

// isEnabled defaults to true when the field is omitted.
func (r *RecognizerConfig) isEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// CompiledPattern is a ready-to-scan regex mapped to its label.
type CompiledPattern struct {
	Name    string
	Label   span.Label
	Pattern *regexp.Regexp
}

// ParseRecognizerFile parses recognizer YAML bytes.
func ParseRecognizerFile(data []byte) (*RecognizerFile, error) {
	var rf RecognizerFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing recognizer YAML: %w", err)
	}
	return &rf, nil
}

// LoadRecognizerFile reads and parses a recognizer YAML file from disk.
// Returns nil (not an error) when the file does not exist, so a missing
// operator override is a no-op.
func LoadRecognizerFile(path string) (*RecognizerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading recognizer file %s: %w", path, err)
	}
	return ParseRecognizerFile(data)
}

// DefaultRecognizers returns the built-in recognizers parsed from the
// embedded recognizers.yaml. This is the first layer in the merge chain.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.RecognizersYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded recognizers: %w", err)
	}
	return rf.Recognizers, nil
}

// MergeRecognizers layers recognizer lists: later layers replace earlier
// entries with the same Name; new names are appended, preserving the fixed
// scan order of the base layer.
func MergeRecognizers(layers ...[]RecognizerConfig) []RecognizerConfig {
	index := make(map[string]int)
	var merged []RecognizerConfig

	for _, layer := range layers {
		for _, rc := range layer {
			if idx, exists := index[rc.Name]; exists {
				merged[idx] = rc
			} else {
				index[rc.Name] = len(merged)
				merged = append(merged, rc)
			}
		}
	}
	return merged
}

// CompileRecognizers converts recognizer configs into the compiled pattern
// list scanned at runtime. Disabled recognizers are skipped; an unknown
// supported_entity or an invalid regex is a configuration error.
func CompileRecognizers(recognizers []RecognizerConfig) ([]CompiledPattern, error) {
	var compiled []CompiledPattern
	for _, rec := range recognizers {
		if !rec.isEnabled() {
			continue
		}
		label := span.Label(rec.SupportedEntity)
		if !label.Valid() {
			return nil, fmt.Errorf("recognizer %q: unknown entity %q", rec.Name, rec.SupportedEntity)
		}
		for _, p := range rec.Patterns {
			re, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q in recognizer %q: %w", p.Name, rec.Name, err)
			}
			compiled = append(compiled, CompiledPattern{
				Name:    p.Name,
				Label:   label,
				Pattern: re,
			})
		}
	}
	return compiled, nil
}

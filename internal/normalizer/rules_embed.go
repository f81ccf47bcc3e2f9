package normalizer

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed data/street_types.yaml
var streetTypesYAML []byte

// RulesConfig chứa cấu hình rules được load từ YAML
type RulesConfig struct {
	StreetTypes map[string][]string `yaml:"street_types"`
	DottedOnly  []string            `yaml:"dotted_only"`
}

// LoadRulesConfig load cấu hình rules từ embedded YAML files
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(streetTypesYAML, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Tokens returns every roadway token, deduplicated, longest first.
func (rc *RulesConfig) Tokens() []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, group := range rc.StreetTypes {
		for _, tok := range group {
			if !seen[tok] {
				seen[tok] = true
				tokens = append(tokens, tok)
			}
		}
	}
	sortLongestFirst(tokens)
	return tokens
}

package senza

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadParameterFile turns a flat YAML mapping into "key=value" parameters,
// keeping the order of the file.
func ReadParameterFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse parameter file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parameter file %s must be a mapping", path)
	}

	params := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("parameter %q in %s is not a scalar", key.Value, path)
		}
		params = append(params, key.Value+"="+value.Value)
	}
	return params, nil
}

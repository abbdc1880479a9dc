package networks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// extraNetworksFile is the YAML shape of an operator-supplied network
// overlay file
type extraNetworksFile struct {
	Networks []Network `yaml:"networks"`
}

// LoadExtra reads additional networks from a YAML file. The entries are
// validated against the same uniqueness rule as the built-in table when
// handed to NewRegistry.
func LoadExtra(path string) ([]Network, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	}

	var file extraNetworksFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse networks file: %w", err)
	}

	for _, n := range file.Networks {
		if n.ChainID == 0 {
			return nil, fmt.Errorf("network %q is missing a chain id", n.Name)
		}
		if n.Name == "" || n.RPCURL == "" {
			return nil, fmt.Errorf("network with chain id %d needs a name and rpc_url", n.ChainID)
		}
	}

	return file.Networks, nil
}

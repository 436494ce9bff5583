package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"tokenvault/types"
)

// Token kinds a manifest may declare.
const (
	KindFungible    = "fungible"
	KindNonFungible = "nonfungible"
	KindMultiToken  = "multitoken"
)

// Manifest declares the token contracts one deployment carries.
type Manifest struct {
	Deployer string       `yaml:"deployer"`
	Tokens   []TokenEntry `yaml:"tokens"`
}

// TokenEntry describes one token contract. Fields apply per kind: decimals
// and maxSupply to fungible tokens, baseURI and maxTokens to non-fungible
// ones, uri to multi-id ones.
type TokenEntry struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Symbol    string `yaml:"symbol"`
	Decimals  uint8  `yaml:"decimals"`
	MaxSupply string `yaml:"maxSupply"`
	MaxTokens uint64 `yaml:"maxTokens"`
	BaseURI   string `yaml:"baseURI"`
	URI       string `yaml:"uri"`
}

// LoadManifest reads and validates a deployment manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the manifest for contradictions before any state is
// touched.
func (m *Manifest) Validate() error {
	if _, err := m.DeployerAddress(); err != nil {
		return err
	}
	if len(m.Tokens) == 0 {
		return fmt.Errorf("manifest: no tokens declared")
	}
	seen := make(map[string]struct{}, len(m.Tokens))
	for i := range m.Tokens {
		entry := &m.Tokens[i]
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return fmt.Errorf("manifest: token %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("manifest: duplicate token name %q", name)
		}
		seen[name] = struct{}{}
		switch entry.Kind {
		case KindFungible:
			if strings.TrimSpace(entry.Symbol) == "" {
				return fmt.Errorf("manifest: token %q needs a symbol", name)
			}
			if _, err := entry.MaxSupplyAmount(); err != nil {
				return err
			}
		case KindNonFungible:
			if strings.TrimSpace(entry.Symbol) == "" {
				return fmt.Errorf("manifest: token %q needs a symbol", name)
			}
		case KindMultiToken:
			if strings.TrimSpace(entry.URI) == "" {
				return fmt.Errorf("manifest: token %q needs a uri template", name)
			}
		default:
			return fmt.Errorf("manifest: token %q has unknown kind %q", name, entry.Kind)
		}
	}
	return nil
}

// DeployerAddress parses the manifest's deployer field.
func (m *Manifest) DeployerAddress() (types.Address, error) {
	addr, err := types.ParseAddress(strings.TrimSpace(m.Deployer))
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("manifest: deployer: %w", err)
	}
	return addr, nil
}

// MaxSupplyAmount parses the entry's decimal maxSupply; empty means
// unbounded.
func (e *TokenEntry) MaxSupplyAmount() (*uint256.Int, error) {
	s := strings.TrimSpace(e.MaxSupply)
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("manifest: token %q maxSupply %q: %w", e.Name, s, err)
	}
	return v, nil
}

// Entry returns the named token declaration.
func (m *Manifest) Entry(name string) (*TokenEntry, error) {
	for i := range m.Tokens {
		if m.Tokens[i].Name == name {
			return &m.Tokens[i], nil
		}
	}
	return nil, fmt.Errorf("manifest: no token named %q", name)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"tokenvault/config"
	"tokenvault/events"
	"tokenvault/guard"
	"tokenvault/host/local"
	"tokenvault/storage"
	"tokenvault/token"
	"tokenvault/token/fungible"
	"tokenvault/token/multitoken"
	"tokenvault/token/nonfungible"
	"tokenvault/types"
)

// Vault is the CLI's view of one deployment: the shared state database plus
// the token contracts the manifest declares. Each contract gets its own
// key prefix inside the database and its own deterministic address.
type Vault struct {
	cfg      *config.Config
	manifest *Manifest
	db       storage.Database
	deployer types.Address
}

// OpenVault opens the configured backend and loads the manifest.
func OpenVault(cfg *config.Config) (*Vault, error) {
	manifest, err := LoadManifest(cfg.ManifestFile)
	if err != nil {
		return nil, err
	}
	deployer, err := manifest.DeployerAddress()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create data dir: %w", err)
	}
	db, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	return &Vault{cfg: cfg, manifest: manifest, db: db, deployer: deployer}, nil
}

func openBackend(cfg *config.Config) (storage.Database, error) {
	switch cfg.Backend {
	case config.BackendLevelDB:
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "slots"))
	case config.BackendBolt:
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "slots.bolt"))
	default:
		return nil, fmt.Errorf("vault: unknown backend %q", cfg.Backend)
	}
}

// Close releases the state database.
func (v *Vault) Close() error {
	return v.db.Close()
}

// ContractAddress derives the deterministic address of the named token
// contract. The derivation only depends on the name, so addresses are
// stable across restarts.
func ContractAddress(name string) types.Address {
	sum := blake3.Sum256([]byte("tokenvault/contract/" + name))
	return types.Address(sum)
}

// env builds the host environment of one token contract over its own
// prefixed slice of the database.
func (v *Vault) env(name string) *local.Env {
	prefixed := storage.NewPrefixDB(v.db, []byte(name+"/"))
	return local.NewEnv(prefixed, ContractAddress(name), v.deployer)
}

// Fungible resolves the named fungible token contract.
func (v *Vault) Fungible(name string) (*fungible.Token, error) {
	entry, err := v.manifest.Entry(name)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindFungible {
		return nil, fmt.Errorf("vault: token %q is %s, not %s", name, entry.Kind, KindFungible)
	}
	return fungible.New(v.env(name), events.NoopEmitter{}, guard.Standard, v.cfg.ChainID, v.cfg.ProtocolID), nil
}

// NonFungible resolves the named non-fungible token contract.
func (v *Vault) NonFungible(name string) (*nonfungible.Token, error) {
	entry, err := v.manifest.Entry(name)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindNonFungible {
		return nil, fmt.Errorf("vault: token %q is %s, not %s", name, entry.Kind, KindNonFungible)
	}
	return nonfungible.New(v.env(name), events.NoopEmitter{}, guard.Standard, v.cfg.ChainID, v.cfg.ProtocolID), nil
}

// MultiToken resolves the named multi-id token contract.
func (v *Vault) MultiToken(name string) (*multitoken.Token, error) {
	entry, err := v.manifest.Entry(name)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindMultiToken {
		return nil, fmt.Errorf("vault: token %q is %s, not %s", name, entry.Kind, KindMultiToken)
	}
	return multitoken.New(v.env(name), events.NoopEmitter{}, guard.Standard, v.cfg.ChainID, v.cfg.ProtocolID), nil
}

// Initialize writes the metadata of every manifest token that has not been
// initialized yet. Already-deployed tokens are left untouched, so the
// command is safe to re-run after adding manifest entries.
func (v *Vault) Initialize() ([]string, error) {
	deployed := make([]string, 0, len(v.manifest.Tokens))
	for i := range v.manifest.Tokens {
		entry := &v.manifest.Tokens[i]
		fresh, err := v.initializeEntry(entry)
		if err != nil {
			return deployed, fmt.Errorf("vault: initialize %q: %w", entry.Name, err)
		}
		if fresh {
			deployed = append(deployed, entry.Name)
		}
	}
	return deployed, nil
}

func (v *Vault) initializeEntry(entry *TokenEntry) (bool, error) {
	switch entry.Kind {
	case KindFungible:
		tok, err := v.Fungible(entry.Name)
		if err != nil {
			return false, err
		}
		maxSupply, err := entry.MaxSupplyAmount()
		if err != nil {
			return false, err
		}
		err = tok.Initialize(fungible.Config{
			Name:      entry.Name,
			Symbol:    entry.Symbol,
			Decimals:  entry.Decimals,
			MaxSupply: maxSupply,
		})
		return initializeResult(err)
	case KindNonFungible:
		tok, err := v.NonFungible(entry.Name)
		if err != nil {
			return false, err
		}
		err = tok.Initialize(nonfungible.Config{
			Name:      entry.Name,
			Symbol:    entry.Symbol,
			BaseURI:   entry.BaseURI,
			MaxSupply: entry.MaxTokens,
		})
		return initializeResult(err)
	case KindMultiToken:
		tok, err := v.MultiToken(entry.Name)
		if err != nil {
			return false, err
		}
		return initializeResult(tok.Initialize(entry.URI))
	default:
		return false, fmt.Errorf("unknown kind %q", entry.Kind)
	}
}

func initializeResult(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, token.ErrAlreadyInitialized) {
		return false, nil
	}
	return false, err
}

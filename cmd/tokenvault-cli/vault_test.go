package main

import (
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"tokenvault/config"
	"tokenvault/types"
)

func testVault(t *testing.T) (*Vault, types.Address) {
	t.Helper()
	key, err := types.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	deployer := key.Address()
	manifest := writeManifest(t, `
deployer: `+deployer.String()+`
tokens:
  - name: vault-coin
    kind: fungible
    symbol: VLT
    decimals: 18
  - name: vault-items
    kind: multitoken
    uri: https://vault.example/items/{id}.json
`)
	cfg := &config.Config{
		DataDir:      filepath.Join(t.TempDir(), "state"),
		Backend:      config.BackendBolt,
		ManifestFile: manifest,
		ChainID:      1,
		ProtocolID:   7,
	}
	vault, err := OpenVault(cfg)
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	t.Cleanup(func() { vault.Close() })
	return vault, deployer
}

func TestVaultInitialize(t *testing.T) {
	vault, _ := testVault(t)

	deployed, err := vault.Initialize()
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(deployed) != 2 {
		t.Fatalf("expected 2 fresh deployments, got %v", deployed)
	}

	// Re-running deploys nothing and fails nothing.
	again, err := vault.Initialize()
	if err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("re-run deployed %v", again)
	}

	tok, err := vault.Fungible("vault-coin")
	if err != nil {
		t.Fatalf("fungible: %v", err)
	}
	if symbol, _ := tok.Symbol(); symbol != "VLT" {
		t.Fatalf("symbol not persisted: %q", symbol)
	}
}

func TestVaultKindMismatch(t *testing.T) {
	vault, _ := testVault(t)
	if _, err := vault.MultiToken("vault-coin"); err == nil {
		t.Fatal("fungible token resolved as multitoken")
	}
	if _, err := vault.Fungible("vault-items"); err == nil {
		t.Fatal("multitoken resolved as fungible")
	}
}

func TestVaultContractsAreIsolated(t *testing.T) {
	vault, deployer := testVault(t)
	if _, err := vault.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	coin, err := vault.Fungible("vault-coin")
	if err != nil {
		t.Fatalf("fungible: %v", err)
	}
	items, err := vault.MultiToken("vault-items")
	if err != nil {
		t.Fatalf("multitoken: %v", err)
	}

	holder := types.BytesToAddress([]byte("holder"))
	if err := coin.Mint(deployer, holder, uint256.NewInt(100)); err != nil {
		t.Fatalf("mint coin: %v", err)
	}
	if err := items.Mint(deployer, holder, 1, uint256.NewInt(3)); err != nil {
		t.Fatalf("mint items: %v", err)
	}

	coinBalance, err := coin.BalanceOf(holder)
	if err != nil {
		t.Fatalf("coin balance: %v", err)
	}
	if coinBalance.Uint64() != 100 {
		t.Fatalf("coin balance: %s", coinBalance)
	}
	itemBalance, err := items.BalanceOf(holder, 1)
	if err != nil {
		t.Fatalf("item balance: %v", err)
	}
	if itemBalance.Uint64() != 3 {
		t.Fatalf("item balance: %s", itemBalance)
	}
}

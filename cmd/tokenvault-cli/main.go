package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"tokenvault/config"
	"tokenvault/observability/logging"
	"tokenvault/types"
)

var configPath = defaultConfigPath()

func defaultConfigPath() string {
	if p := os.Getenv("TOKENVAULT_CONFIG"); p != "" {
		return p
	}
	return "tokenvault.toml"
}

func main() {
	args := os.Args[1:]
	args = applyGlobalFlags(args)

	if len(args) < 1 {
		printUsage()
		return
	}

	var err error
	switch command := args[0]; command {
	case "gen-key":
		if len(args) < 2 {
			fmt.Println("Error: please provide an output file.")
			printUsage()
			return
		}
		err = generateKey(args[1])
	case "init":
		err = runInit()
	case "balance":
		if len(args) < 3 {
			fmt.Println("Error: please provide a token name and an address.")
			printUsage()
			return
		}
		err = runBalance(args[1], args[2], args[3:])
	case "supply":
		if len(args) < 2 {
			fmt.Println("Error: please provide a token name.")
			printUsage()
			return
		}
		err = runSupply(args[1], args[2:])
	case "mint":
		if len(args) < 5 {
			fmt.Println("Error: please provide a token name, recipient, amount and key file.")
			printUsage()
			return
		}
		err = runMint(args[1], args[2], args[3:len(args)-1], args[len(args)-1])
	case "transfer":
		if len(args) < 5 {
			fmt.Println("Error: please provide a token name, recipient, amount and key file.")
			printUsage()
			return
		}
		err = runTransfer(args[1], args[2], args[3:len(args)-1], args[len(args)-1])
	case "uri":
		if len(args) < 3 {
			fmt.Println("Error: please provide a token name and a token id.")
			printUsage()
			return
		}
		err = runURI(args[1], args[2])
	default:
		fmt.Printf("Unknown command %q.\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func applyGlobalFlags(args []string) []string {
	out := args[:0]
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" && i+1 < len(args) {
			configPath = args[i+1]
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}

func printUsage() {
	fmt.Println(`Usage: tokenvault-cli [--config <file>] <command> [args]

Commands:
  gen-key <file>                          Generate a signing key and print its address
  init                                    Deploy the manifest tokens into the state database
  balance <token> <address> [id]          Query a holder's balance
  supply <token> [id]                     Query the outstanding supply
  mint <token> <to> <amount> <keyfile>    Mint (deployer key required)
  mint <token> <to> <id> <amount> <keyfile>
  transfer <token> <to> <amount> <keyfile>
  transfer <token> <to> <id> <amount> <keyfile>
  uri <token> <id>                        Render a token's metadata URI`)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup("tokenvault-cli", cfg.Environment)
	return cfg, nil
}

func openVault() (*Vault, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return OpenVault(cfg)
}

func generateKey(path string) error {
	key, err := types.GeneratePrivateKey()
	if err != nil {
		return err
	}
	encoded := hex.EncodeToString(key.Bytes())
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	fmt.Printf("Key written to %s\nAddress: %s\n", path, key.Address())
	return nil
}

func loadKey(path string) (*types.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode key file %s: %w", path, err)
	}
	return types.PrivateKeyFromBytes(decoded)
}

func runInit() error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	deployed, err := vault.Initialize()
	if err != nil {
		return err
	}
	for _, name := range deployed {
		slog.Info("token deployed", "token", name, "contract", ContractAddress(name))
	}
	if len(deployed) == 0 {
		fmt.Println("All manifest tokens already deployed.")
	}
	return nil
}

func runBalance(name, holder string, rest []string) error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	account, err := types.ParseAddress(holder)
	if err != nil {
		return err
	}
	entry, err := vault.manifest.Entry(name)
	if err != nil {
		return err
	}
	switch entry.Kind {
	case KindFungible:
		tok, err := vault.Fungible(name)
		if err != nil {
			return err
		}
		balance, err := tok.BalanceOf(account)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", balance, entry.Symbol)
	case KindNonFungible:
		tok, err := vault.NonFungible(name)
		if err != nil {
			return err
		}
		balance, err := tok.BalanceOf(account)
		if err != nil {
			return err
		}
		fmt.Printf("%d tokens\n", balance)
	case KindMultiToken:
		if len(rest) < 1 {
			return fmt.Errorf("token %q needs a token id", name)
		}
		id, err := parseTokenID(rest[0])
		if err != nil {
			return err
		}
		tok, err := vault.MultiToken(name)
		if err != nil {
			return err
		}
		balance, err := tok.BalanceOf(account, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s of id %d\n", balance, id)
	}
	return nil
}

func runSupply(name string, rest []string) error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	entry, err := vault.manifest.Entry(name)
	if err != nil {
		return err
	}
	switch entry.Kind {
	case KindFungible:
		tok, err := vault.Fungible(name)
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply()
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", supply, entry.Symbol)
	case KindNonFungible:
		tok, err := vault.NonFungible(name)
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply()
		if err != nil {
			return err
		}
		fmt.Printf("%d tokens\n", supply)
	case KindMultiToken:
		if len(rest) < 1 {
			return fmt.Errorf("token %q needs a token id", name)
		}
		id, err := parseTokenID(rest[0])
		if err != nil {
			return err
		}
		tok, err := vault.MultiToken(name)
		if err != nil {
			return err
		}
		supply, err := tok.TotalSupply(id)
		if err != nil {
			return err
		}
		fmt.Printf("%s of id %d\n", supply, id)
	}
	return nil
}

func runMint(name, recipient string, amounts []string, keyFile string) error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	key, err := loadKey(keyFile)
	if err != nil {
		return err
	}
	to, err := types.ParseAddress(recipient)
	if err != nil {
		return err
	}
	entry, err := vault.manifest.Entry(name)
	if err != nil {
		return err
	}
	caller := key.Address()
	switch entry.Kind {
	case KindFungible:
		amount, err := parseAmount(amounts, 0)
		if err != nil {
			return err
		}
		tok, err := vault.Fungible(name)
		if err != nil {
			return err
		}
		if err := tok.Mint(caller, to, amount); err != nil {
			return err
		}
	case KindNonFungible:
		id, err := parseTokenID(amounts[0])
		if err != nil {
			return err
		}
		tok, err := vault.NonFungible(name)
		if err != nil {
			return err
		}
		if err := tok.Mint(caller, to, id); err != nil {
			return err
		}
	case KindMultiToken:
		if len(amounts) < 2 {
			return fmt.Errorf("token %q needs an id and an amount", name)
		}
		id, err := parseTokenID(amounts[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(amounts, 1)
		if err != nil {
			return err
		}
		tok, err := vault.MultiToken(name)
		if err != nil {
			return err
		}
		if err := tok.Mint(caller, to, id, amount); err != nil {
			return err
		}
	}
	slog.Info("minted", "token", name, "to", to)
	return nil
}

func runTransfer(name, recipient string, amounts []string, keyFile string) error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	key, err := loadKey(keyFile)
	if err != nil {
		return err
	}
	to, err := types.ParseAddress(recipient)
	if err != nil {
		return err
	}
	entry, err := vault.manifest.Entry(name)
	if err != nil {
		return err
	}
	caller := key.Address()
	switch entry.Kind {
	case KindFungible:
		amount, err := parseAmount(amounts, 0)
		if err != nil {
			return err
		}
		tok, err := vault.Fungible(name)
		if err != nil {
			return err
		}
		if err := tok.Transfer(caller, to, amount); err != nil {
			return err
		}
	case KindNonFungible:
		id, err := parseTokenID(amounts[0])
		if err != nil {
			return err
		}
		tok, err := vault.NonFungible(name)
		if err != nil {
			return err
		}
		if err := tok.Transfer(caller, to, id); err != nil {
			return err
		}
	case KindMultiToken:
		if len(amounts) < 2 {
			return fmt.Errorf("token %q needs an id and an amount", name)
		}
		id, err := parseTokenID(amounts[0])
		if err != nil {
			return err
		}
		amount, err := parseAmount(amounts, 1)
		if err != nil {
			return err
		}
		tok, err := vault.MultiToken(name)
		if err != nil {
			return err
		}
		if err := tok.SafeTransferFrom(caller, caller, to, id, amount, nil); err != nil {
			return err
		}
	}
	slog.Info("transferred", "token", name, "from", caller, "to", to)
	return nil
}

func runURI(name, rawID string) error {
	vault, err := openVault()
	if err != nil {
		return err
	}
	defer vault.Close()

	id, err := parseTokenID(rawID)
	if err != nil {
		return err
	}
	entry, err := vault.manifest.Entry(name)
	if err != nil {
		return err
	}
	var uri string
	switch entry.Kind {
	case KindNonFungible:
		tok, err := vault.NonFungible(name)
		if err != nil {
			return err
		}
		uri, err = tok.TokenURI(id)
		if err != nil {
			return err
		}
	case KindMultiToken:
		tok, err := vault.MultiToken(name)
		if err != nil {
			return err
		}
		uri, err = tok.URI(id)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("token %q has no per-id URIs", name)
	}
	fmt.Println(uri)
	return nil
}

func parseTokenID(raw string) (types.TokenID, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token id %q: %w", raw, err)
	}
	return types.TokenID(id), nil
}

func parseAmount(args []string, index int) (*uint256.Int, error) {
	if index >= len(args) {
		return nil, fmt.Errorf("missing amount")
	}
	amount, err := uint256.FromDecimal(args[index])
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", args[index], err)
	}
	return amount, nil
}

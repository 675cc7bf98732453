package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/authtoken"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/bufferpolicy"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/datum"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/keys"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/model"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/receipt"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/registry"

	_ "github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/grpcstore"
	_ "github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/kubo"
	_ "github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "datum":
		return cmdDatum(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "policy":
		return cmdPolicy(args[1:], out, errOut)
	case "receipt":
		return cmdReceipt(args[1:], out, errOut)
	case "suffix":
		return cmdSuffix(args[1:], out, errOut)
	case "tx":
		return cmdTx(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "terrasacha: datum, key, and release-policy tooling")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  terrasacha datum cid <file>")
	fmt.Fprintln(w, "  terrasacha datum validate --kind protocol|project <file>")
	fmt.Fprintln(w, "  terrasacha datum put --backend <name> [backend flags] <file>")
	fmt.Fprintln(w, "  terrasacha datum get --backend <name> [backend flags] <cid>")
	fmt.Fprintln(w, "  terrasacha key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  terrasacha key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  terrasacha key list")
	fmt.Fprintln(w, "  terrasacha key export --name <name> [--role <role>]")
	fmt.Fprintln(w, "  terrasacha policy check <file>")
	fmt.Fprintln(w, "  terrasacha receipt cid <file>")
	fmt.Fprintln(w, "  terrasacha receipt verify <file>")
	fmt.Fprintln(w, "  terrasacha suffix --tx <txid> --index <n>")
	fmt.Fprintln(w, "  terrasacha tx id <file>")
	fmt.Fprintln(w, "  terrasacha tx check <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - keys are stored under ~/.terrasacha/keys/<name> (0600 private key files)")
	fmt.Fprintln(w, "  - datum cid expects canonical CBOR datum bytes")
	fmt.Fprintln(w, "  - suffix prints the REF_/USER_ pair suffix derived from the seed input")
	fmt.Fprintln(w, "  - tx files are JSON transaction requests; tx id prints what witnesses sign")
}

func cmdDatum(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: terrasacha datum <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: cid, validate, put, get")
		return 2
	}
	switch args[0] {
	case "cid":
		fs := flag.NewFlagSet("datum cid", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: terrasacha datum cid <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read datum: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, cidutil.CIDv1RawSHA256(b))
		return 0

	case "validate":
		fs := flag.NewFlagSet("datum validate", flag.ContinueOnError)
		fs.SetOutput(errOut)
		kind := fs.String("kind", "", "datum kind: protocol or project")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 || *kind == "" {
			fmt.Fprintln(errOut, "usage: terrasacha datum validate --kind protocol|project <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read datum: %v\n", err)
			return 1
		}
		switch *kind {
		case "protocol":
			d, err := datum.DecodeProtocol(b)
			if err == nil {
				err = d.Validate()
			}
			if err != nil {
				fmt.Fprintf(errOut, "invalid protocol datum: %v\n", err)
				return 1
			}
		case "project":
			d, err := datum.DecodeProject(b)
			if err == nil {
				err = datum.CheckInvariants(d)
			}
			if err != nil {
				fmt.Fprintf(errOut, "invalid project datum: %v\n", err)
				return 1
			}
		default:
			fmt.Fprintf(errOut, "unknown kind %q\n", *kind)
			return 2
		}
		_, _ = fmt.Fprintln(out, "ok")
		return 0

	case "put":
		fs := flag.NewFlagSet("datum put", flag.ContinueOnError)
		fs.SetOutput(errOut)
		backend := fs.String("backend", "localfs", "datum store backend name")
		registry.RegisterFlags(fs, registry.UsageCLI)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: terrasacha datum put --backend <name> [backend flags] <file>")
			return 2
		}
		b, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read datum: %v\n", err)
			return 1
		}
		store, closeFn, err := registry.Open(*backend, registry.UsageCLI)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		if closeFn != nil {
			defer closeFn()
		}
		id, err := store.Put(b)
		if err != nil {
			fmt.Fprintf(errOut, "put datum: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, id.String())
		return 0

	case "get":
		fs := flag.NewFlagSet("datum get", flag.ContinueOnError)
		fs.SetOutput(errOut)
		backend := fs.String("backend", "localfs", "datum store backend name")
		registry.RegisterFlags(fs, registry.UsageCLI)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: terrasacha datum get --backend <name> [backend flags] <cid>")
			return 2
		}
		id, err := cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 2
		}
		store, closeFn, err := registry.Open(*backend, registry.UsageCLI)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		if closeFn != nil {
			defer closeFn()
		}
		b, err := store.Get(id)
		if err != nil {
			fmt.Fprintf(errOut, "get datum: %v\n", err)
			return 1
		}
		_, _ = out.Write(b)
		return 0

	default:
		fmt.Fprintf(errOut, "unknown datum subcommand: %s\n", args[0])
		return 2
	}
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: terrasacha key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, derive, list, export")
		return 2
	}

	dir, err := keys.GetDefaultDirectory()
	if err != nil {
		fmt.Fprintf(errOut, "keystore: %v\n", err)
		return 1
	}
	ks, err := keys.CreateKeyStore(dir)
	if err != nil {
		fmt.Fprintf(errOut, "keystore: %v\n", err)
		return 1
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("key init", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key identifier")
		seedHex := fs.String("seed-hex", "", "32-byte ed25519 seed, hex encoded (random when omitted)")
		force := fs.Bool("force", false, "overwrite an existing key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "usage: terrasacha key init --name <name> [--seed-hex <64hex>] [--force]")
			return 2
		}
		var seed []byte
		if *seedHex != "" {
			seed, err = keys.ParseSeedHex(*seedHex)
			if err != nil {
				fmt.Fprintf(errOut, "invalid seed: %v\n", err)
				return 2
			}
		} else {
			seed = make([]byte, 32)
			if _, err := rand.Read(seed); err != nil {
				fmt.Fprintf(errOut, "generate seed: %v\n", err)
				return 1
			}
		}
		walletKey, path, err := ks.InitializeRootKey(*name, seed, *force)
		if err != nil {
			fmt.Fprintf(errOut, "init key: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "%s\n%s\n", walletKey, path)
		return 0

	case "derive":
		fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
		fs.SetOutput(errOut)
		from := fs.String("from", "", "root key identifier")
		role := fs.String("role", "", "role to derive")
		force := fs.Bool("force", false, "overwrite an existing role key")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *from == "" || *role == "" {
			fmt.Fprintln(errOut, "usage: terrasacha key derive --from <name> --role <role> [--force]")
			return 2
		}
		walletKey, path, err := ks.DeriveKeyForRole(*from, *role, *force)
		if err != nil {
			fmt.Fprintf(errOut, "derive key: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "%s\n%s\n", walletKey, path)
		return 0

	case "list":
		entries, err := ks.ListKeys()
		if err != nil {
			fmt.Fprintf(errOut, "list keys: %v\n", err)
			return 1
		}
		for _, e := range entries {
			if len(e.Roles) == 0 {
				_, _ = fmt.Fprintln(out, e.Identifier)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", e.Identifier, strings.Join(e.Roles, ","))
		}
		return 0

	case "export":
		fs := flag.NewFlagSet("key export", flag.ContinueOnError)
		fs.SetOutput(errOut)
		name := fs.String("name", "", "key identifier")
		role := fs.String("role", "", "optional role")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *name == "" {
			fmt.Fprintln(errOut, "usage: terrasacha key export --name <name> [--role <role>]")
			return 2
		}
		walletKey, err := ks.ExportKey(*name, *role)
		if err != nil {
			fmt.Fprintf(errOut, "export key: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, walletKey)
		return 0

	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdPolicy(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "check" {
		fmt.Fprintln(errOut, "usage: terrasacha policy check <file>")
		return 2
	}
	fs := flag.NewFlagSet("policy check", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: terrasacha policy check <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read policy: %v\n", err)
		return 1
	}
	doc, err := bufferpolicy.Parse(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid policy: %v\n", err)
		return 1
	}
	for _, s := range doc.Splits {
		_, _ = fmt.Fprintf(out, "%s\t%d\n", s.Role, s.Weight)
	}
	return 0
}

func cmdReceipt(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: terrasacha receipt <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: cid, verify")
		return 2
	}
	sub := args[0]
	fs := flag.NewFlagSet("receipt "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(errOut, "usage: terrasacha receipt %s <file>\n", sub)
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read receipt: %v\n", err)
		return 1
	}
	switch sub {
	case "cid":
		id, err := receipt.CID(b)
		if err != nil {
			fmt.Fprintf(errOut, "invalid receipt: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, id)
		return 0
	case "verify":
		signed, err := receipt.VerifySignature(b)
		if err != nil {
			fmt.Fprintf(errOut, "verify receipt: %v\n", err)
			return 1
		}
		if signed {
			_, _ = fmt.Fprintln(out, "signed: valid")
		} else {
			_, _ = fmt.Fprintln(out, "unsigned")
		}
		return 0
	default:
		fmt.Fprintf(errOut, "unknown receipt subcommand: %s\n", sub)
		return 2
	}
}

func cmdTx(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: terrasacha tx <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: id, check")
		return 2
	}
	sub := args[0]
	fs := flag.NewFlagSet("tx "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(errOut, "usage: terrasacha tx %s <file>\n", sub)
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read tx: %v\n", err)
		return 1
	}
	var req model.TxRequest
	if err := json.Unmarshal(b, &req); err != nil {
		fmt.Fprintf(errOut, "invalid tx json: %v\n", err)
		return 1
	}
	switch sub {
	case "id":
		id, err := model.TxID(&req)
		if err != nil {
			fmt.Fprintf(errOut, "invalid tx: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, id)
		return 0
	case "check":
		if _, err := model.BuildTx(&req); err != nil {
			fmt.Fprintf(errOut, "invalid tx: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, "ok")
		return 0
	default:
		fmt.Fprintf(errOut, "unknown tx subcommand: %s\n", sub)
		return 2
	}
}

func cmdSuffix(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("suffix", flag.ContinueOnError)
	fs.SetOutput(errOut)
	tx := fs.String("tx", "", "seed transaction id")
	index := fs.Uint("index", 0, "seed output index")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *tx == "" {
		fmt.Fprintln(errOut, "usage: terrasacha suffix --tx <txid> --index <n>")
		return 2
	}
	suffix := authtoken.PairSuffix(ledger.OutRef{TxID: *tx, Index: uint32(*index)})
	_, _ = fmt.Fprintf(out, "%s\n%s%s\n%s%s\n", suffix, authtoken.RefPrefix, suffix, authtoken.UserPrefix, suffix)
	return 0
}

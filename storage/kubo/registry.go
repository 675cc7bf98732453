package kubo

import (
	"flag"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/registry"
)

var flagKuboBin string

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "kubo",
		Description: "Local Kubo (ipfs CLI) datum store",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagKuboBin, "kubo-bin", "", "Path to the ipfs binary (for --backend=kubo; default \"ipfs\")")
		},
		Open: func() (storage.Store, func() error, error) {
			return New(Options{Bin: flagKuboBin}), nil, nil
		},
	})
}

package localfs

import (
	"flag"
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/registry"
)

var flagLocalDir string

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "localfs",
		Description: "Local filesystem datum store (directory)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "LocalFS datum directory (for --backend=localfs)")
		},
		Open: func() (storage.Store, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			st, err := Open(flagLocalDir)
			return st, nil, err
		},
	})
}

package grpcstore

import (
	"flag"
	"fmt"
	"time"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/registry"
)

var (
	flagTarget      string
	flagDialTimeout time.Duration
	flagRPCTimeout  time.Duration
	flagMaxMsgBytes int
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "grpc",
		Description: "Remote datum store over gRPC",
		Usage:       registry.UsageCLI,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagTarget, "grpc-target", "", "DatumStore gRPC target (for --backend=grpc)")
			fs.DurationVar(&flagDialTimeout, "grpc-dial-timeout", 5*time.Second, "gRPC dial timeout")
			fs.DurationVar(&flagRPCTimeout, "grpc-timeout", 30*time.Second, "per-RPC timeout")
			fs.IntVar(&flagMaxMsgBytes, "grpc-max-msg-bytes", 0, "max gRPC message size in bytes (0 = library default)")
		},
		Open: func() (storage.Store, func() error, error) {
			if flagTarget == "" {
				return nil, nil, fmt.Errorf("missing --grpc-target")
			}
			c, err := Dial(flagTarget, DialOptions{Timeout: flagDialTimeout, MaxMsgBytes: flagMaxMsgBytes})
			if err != nil {
				return nil, nil, err
			}
			c.Timeout = flagRPCTimeout
			return c, c.Close, nil
		},
	})
}

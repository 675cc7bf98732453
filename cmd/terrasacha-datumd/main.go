package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/grpcstore"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/registry"

	_ "github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/kubo"
	_ "github.com/SuanBlockchain/terrasacha-contracts-sub000/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("terrasacha-datumd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7421", "listen address")
	backend := fs.String("backend", "localfs", "datum store backend name")
	configPath := fs.String("config", "", "JSON multi-backend config (overrides --backend)")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	registry.RegisterFlags(fs, registry.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range registry.List(registry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	var (
		store   storage.Store
		closeFn func() error
		err     error
	)
	if *configPath != "" {
		cfg, cerr := registry.LoadFile(*configPath)
		if cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
			os.Exit(2)
		}
		store, closeFn, err = cfg.Open(registry.UsageDaemon, "")
	} else {
		store, closeFn, err = registry.Open(*backend, registry.UsageDaemon)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterDatumStoreServer(s, &grpcstore.Server{Store: store})

	fmt.Fprintf(os.Stderr, "terrasacha-datumd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

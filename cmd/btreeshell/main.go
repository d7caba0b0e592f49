// Command btreeshell is an interactive REPL over the B-tree index
// engine: insert, search, remove, update, and print, reporting I/O
// counters and tree height after every operation.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"btreeidx/internal/config"
	"btreeidx/internal/index/btree"
	"btreeidx/internal/storage/pagestore"
	"btreeidx/internal/telemetry"
)

func main() {
	cfg := config.Default()
	var seed int64

	root := &cobra.Command{
		Use:   "btreeshell",
		Short: "Interactive shell for the disk-resident B-tree index engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.DataBufferCapacity = cfg.IndexBufferCapacity
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg, seed)
		},
	}

	flags := root.Flags()
	flags.IntVar(&cfg.Order, "order", cfg.Order, "B-tree order d (every non-root page holds d..2d records)")
	flags.StringVar(&cfg.IndexPath, "index-path", cfg.IndexPath, "path to the binary index file")
	flags.StringVar(&cfg.DataPath, "data-path", cfg.DataPath, "path to the binary data file")
	flags.IntVar(&cfg.IndexBufferCapacity, "buffer-capacity", cfg.IndexBufferCapacity, "LRU capacity for both index and data buffers")
	flags.Int64Var(&seed, "seed", 1, "seed for the random record generator used by the gen command")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config, seed int64) error {
	log, err := telemetry.NewLogger()
	if err != nil {
		return fmt.Errorf("btreeshell: logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		return fmt.Errorf("btreeshell: create index dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DataPath), 0o755); err != nil {
		return fmt.Errorf("btreeshell: create data dir: %w", err)
	}

	store, err := pagestore.New(pagestore.Options{
		IndexPath:           cfg.IndexPath,
		DataPath:            cfg.DataPath,
		Order:               cfg.Order,
		IndexBufferCapacity: cfg.IndexBufferCapacity,
		DataBufferCapacity:  cfg.DataBufferCapacity,
		Logger:              log,
	})
	if err != nil {
		return fmt.Errorf("btreeshell: open page store: %w", err)
	}

	tree := btree.New(store, cfg.Order, log)
	rng := rand.New(rand.NewSource(seed))

	fmt.Printf("btreeshell: order=%d index=%s data=%s buffers=%d/%d\n",
		cfg.Order, cfg.IndexPath, cfg.DataPath, cfg.IndexBufferCapacity, cfg.DataBufferCapacity)
	fmt.Println("Type 'help' for commands.")

	runREPL(tree, cfg, rng)
	return nil
}

func printReport(r telemetry.Report) {
	fmt.Println(r.String())
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thesecretlab-dev/poevm/config"
	"github.com/thesecretlab-dev/poevm/genesis"
	"github.com/thesecretlab-dev/poevm/runtime"
)

type runOptions struct {
	genesisPath string
	blocksPath  string
	configPath  string
	logLevel    string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Executes blocks over a genesis and prints the resulting state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlocks(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.genesisPath, "genesis", "", "genesis json file (default genesis when empty)")
	cmd.Flags().StringVar(&opts.blocksPath, "blocks", "", "json file holding an array of blocks")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config json file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "overrides the configured log level")
	_ = cmd.MarkFlagRequired("blocks")
	return cmd
}

func loadGenesis(path string) (*genesis.Genesis, error) {
	if path == "" {
		return genesis.Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis: %w", err)
	}
	return genesis.Load(b)
}

func loadBlocks(path string) ([]runtime.Block, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}
	var blocks []runtime.Block
	if err := json.Unmarshal(b, &blocks); err != nil {
		return nil, fmt.Errorf("failed to parse blocks %s: %w", path, err)
	}
	return blocks, nil
}

// runBlocks stops at the first rejected block. The snapshot is printed either
// way so the partial state can be inspected.
func runBlocks(ctx context.Context, opts *runOptions, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}

	g, err := loadGenesis(opts.genesisPath)
	if err != nil {
		return err
	}
	blocks, err := loadBlocks(opts.blocksPath)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	rt, err := runtime.New(memdb.New(), runtime.Config{
		Log:        log,
		Registerer: registry,
	})
	if err != nil {
		return err
	}
	if err := g.InitializeState(rt.Balances()); err != nil {
		return err
	}

	var execErr error
	for i, blk := range blocks {
		if err := rt.ExecuteBlock(ctx, blk); err != nil {
			log.Error("block rejected",
				zap.Int("index", i),
				zap.Uint64("declared", blk.Header.BlockNumber),
				zap.Error(err),
			)
			execErr = fmt.Errorf("block %d: %w", i, err)
			break
		}
	}

	snap, err := rt.Snapshot()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return err
	}

	if cfg.Metrics {
		families, err := registry.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(stderr, mf); err != nil {
				return err
			}
		}
	}
	return execErr
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-sod/smote/internal/config"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/setup"
	"github.com/go-sod/smote/internal/shutdown"
	"github.com/go-sod/smote/internal/smote"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

type balanceOptions struct {
	input      string
	class      string
	configFile string
	output     string
	seed       int64
	seedSet    bool
}

func balanceCmd() *cobra.Command {
	var opts balanceOptions
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "balance a CSV dataset and train the configured estimator on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seedSet = cmd.Flags().Changed("seed")
			ctx, done := shutdown.New()
			defer done()
			return runBalance(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "CSV file with a header row")
	cmd.Flags().StringVar(&opts.class, "class", "", "class column name, the last column when empty")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "TOML file overriding the environment configuration")
	cmd.Flags().StringVar(&opts.output, "output", "", "write the balanced, encoded dataset to this CSV file")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed, overrides the configuration")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func loadConfig(path string) (*config.CLIConfig, error) {
	cfg := &config.CLIConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	if path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runBalance(ctx context.Context, opts balanceOptions, out io.Writer) error {
	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if opts.seedSet {
		cfg.Smote.Seed = opts.seed
	}
	ctx = logging.WithLogger(ctx, logging.NewLogger(cfg.Logging()))

	f, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	raw, err := encoder.ReadCSV(f, opts.class)
	if err != nil {
		return err
	}

	provideFn, err := setup.ProvidePredictorFor(&cfg.Predictor)
	if err != nil {
		return err
	}
	handle, err := provideFn()
	if err != nil {
		return err
	}
	clf, err := smote.NewClassifier(cfg.Smote, handle, encoder.NewNominalToBinary(cfg.Encoder.Options()...))
	if err != nil {
		return err
	}
	res, err := clf.Run(ctx, raw)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := writeDataset(opts.output, res); err != nil {
			return err
		}
	}
	return writeSummary(out, raw, res)
}

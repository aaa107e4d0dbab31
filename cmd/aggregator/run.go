package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MichalMitros/coral-price-aggregator/internal/aggregator"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/models"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage"
	"github.com/spf13/cobra"
)

type dryRunOutput struct {
	Report   *models.RunReport `json:"report"`
	Listings []models.Listing  `json:"listings"`
}

func newRunCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run single aggregation and print its report",
		Long: `Run clears stored listings and collects them again from every active source.
With --dry-run listings are kept in memory and printed instead of stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "keep listings in memory and print them")

	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer, dryRun bool) error {
	var pg *storage.Postgres
	if !dryRun || a.cfg.SourcesFile == "" {
		db, err := a.openPostgres()
		if err != nil {
			return err
		}
		defer db.Close()
		postgres := storage.NewPostgres(db)
		pg = &postgres
	}

	loader, err := a.sourceLoader(pg)
	if err != nil {
		return err
	}

	var (
		store  aggregator.Storage = pg
		memory *storage.Memory
	)
	if dryRun {
		memory = storage.NewMemory()
		store = memory
	}

	report, runErr := a.newAggregator(store, loader).Run(ctx)
	if report == nil {
		return runErr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	var output any = report
	if memory != nil {
		output = dryRunOutput{Report: report, Listings: memory.Listings()}
	}

	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("can't write report: %w", err)
	}

	return runErr
}

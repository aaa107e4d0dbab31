package main

import (
	"context"

	"github.com/MichalMitros/coral-price-aggregator/internal/platform/sources"
	"github.com/MichalMitros/coral-price-aggregator/internal/platform/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var sourcesFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create database schema and optionally sync source table from YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.migrate(cmd.Context(), sourcesFile)
		},
	}
	cmd.Flags().StringVar(&sourcesFile, "sources", "", "YAML sources file synced into source table")

	return cmd
}

func (a *app) migrate(ctx context.Context, sourcesFile string) error {
	db, err := a.openPostgres()
	if err != nil {
		return err
	}
	defer db.Close()

	pg := storage.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	a.logger.Info().Msg("schema applied")

	if sourcesFile == "" {
		return nil
	}

	all, err := sources.NewFile(sourcesFile).All()
	if err != nil {
		return err
	}

	if err := pg.SyncSources(ctx, all); err != nil {
		return err
	}

	a.logger.Info().
		Int("sources", len(all)).
		Str("file", sourcesFile).
		Msg("sources synced")

	return nil
}

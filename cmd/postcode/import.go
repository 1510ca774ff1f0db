package main

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/postcode-finder/internal/geometry"
	"github.com/postcode-finder/internal/infrastructure/geojson"
	"github.com/postcode-finder/internal/repository/postgres"
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("migrations", "migrations", "directory with .up.sql migrations applied before the import")
}

var importCmd = &cobra.Command{
	Use:   "import <GeoJSON file>",
	Short: "Store a boundary file in PostgreSQL as the newest dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := newLogger(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		migrations, err := cmd.Flags().GetString("migrations")
		if err != nil {
			return err
		}

		in, size, err := openWithProgress(args[0], true)
		if err != nil {
			return err
		}
		fc, err := geojson.Decode(in)
		if cerr := in.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := db.ApplyMigrations(ctx, migrations)
		if err != nil {
			return err
		}
		log.Debug("Migrations applied", zap.Strings("files", applied))

		postcodes := geojson.Postcodes(fc, geometry.ExtractPostcode)
		id, err := postgres.NewPostcodeDatasetRepository(db).Save(ctx, fc, postcodes)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Imported dataset %d: %s features, %s postcodes, %s\n",
			id,
			humanize.Comma(int64(len(fc.Features))),
			humanize.Comma(int64(len(postcodes))),
			humanize.Bytes(uint64(size)))
		return nil
	},
}

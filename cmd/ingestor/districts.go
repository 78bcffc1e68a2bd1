package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/ingest"
)

var districtsDryRun bool

func init() {
	districtsCmd.Flags().BoolVar(&districtsDryRun, "dry-run", false, "Parse the file and report counts without writing")
	rootCmd.AddCommand(districtsCmd)
}

var districtsCmd = &cobra.Command{
	Use:   "districts <file.csv>",
	Short: "Upsert administrative districts from a CSV export",
	Long: `Upsert administrative districts (행정동) keyed by sido, sigungu and dong.

The CSV needs the columns 시도명, 시군구명, 읍면동명, X (longitude) and Y (latitude).

Examples:
  ingestor districts data/서울시행정동.csv
  ingestor districts data/서울시행정동.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runDistricts,
}

func runDistricts(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	districts, skipped, err := ingest.ReadDistricts(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "parsed %d districts (%d rows skipped)\n", len(districts), skipped)
	if districtsDryRun {
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	_, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := postgres.NewImportRepo(db).UpsertDistricts(ctx, districts)
	if err != nil {
		return fmt.Errorf("upsert districts (%d written): %w", n, err)
	}
	slog.Info("districts stored", "file", args[0], "count", n, "skipped", skipped)
	fmt.Fprintf(cmd.OutOrStdout(), "stored %d districts\n", n)
	return nil
}

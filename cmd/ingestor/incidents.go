package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	natsadapter "github.com/dasiro/saferoute/internal/adapters/nats"
	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
	"github.com/dasiro/saferoute/internal/ingest"
)

var (
	incidentsSince   string
	incidentsStatus  string
	incidentsRadius  int
	incidentsMaxDist float64
	incidentsDryRun  bool
	incidentsPublish bool
)

func init() {
	incidentsCmd.Flags().StringVar(&incidentsSince, "since", ingest.DefaultIncidentCutoff.Format("2006-01-02"), "Skip incidents that occurred before this date")
	incidentsCmd.Flags().StringVar(&incidentsStatus, "status", string(domain.HazardRecovered), "Status assigned to every imported zone")
	incidentsCmd.Flags().IntVar(&incidentsRadius, "radius", domain.DefaultAvoidRadiusM, "Avoidance radius in metres of every imported zone")
	incidentsCmd.Flags().Float64Var(&incidentsMaxDist, "max-distance", usecases.DefaultMatchMaxDistanceM, "Maximum centroid distance in metres when matching a district by position")
	incidentsCmd.Flags().BoolVar(&incidentsDryRun, "dry-run", false, "Parse the file and report counts without writing")
	incidentsCmd.Flags().BoolVar(&incidentsPublish, "publish", false, "Announce stored zones on NATS for live map clients")
	rootCmd.AddCommand(incidentsCmd)
}

var incidentsCmd = &cobra.Command{
	Use:   "incidents <file.json>",
	Short: "Import hazard incidents from a JSON export",
	Long: `Import incidents as hazard zones. Each incident is assigned to a district by
the 동 named in its address, or failing that by the nearest district centroid.

Examples:
  ingestor incidents data/incidents.json
  ingestor incidents data/incidents.json --since 2024-01-01 --status UNDER_REPAIR`,
	Args: cobra.ExactArgs(1),
	RunE: runIncidents,
}

func runIncidents(cmd *cobra.Command, args []string) error {
	cutoff, err := time.ParseInLocation("2006-01-02", incidentsSince, ingest.KST)
	if err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	status, err := domain.ParseHazardStatus(incidentsStatus)
	if err != nil {
		return fmt.Errorf("--status: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	cfg, db, err := setup(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	districts, err := postgres.NewDistrictRepo(db).All(ctx)
	if err != nil {
		return fmt.Errorf("load districts: %w", err)
	}

	zones, skipped, err := ingest.ReadIncidents(data, ingest.IncidentOptions{
		Cutoff:       cutoff,
		Status:       status,
		RadiusM:      incidentsRadius,
		Districts:    districts,
		MaxDistanceM: incidentsMaxDist,
	})
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "parsed %d incidents (%d skipped)\n", len(zones), skipped)
	if incidentsDryRun {
		return nil
	}

	n, err := postgres.NewImportRepo(db).InsertHazards(ctx, zones)
	if err != nil {
		return fmt.Errorf("insert hazards (%d written): %w", n, err)
	}
	slog.Info("hazard zones stored", "file", args[0], "count", n, "skipped", skipped)
	fmt.Fprintf(cmd.OutOrStdout(), "stored %d hazard zones\n", n)

	if !incidentsPublish {
		return nil
	}
	nc, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer nc.Close()
	if err := natsadapter.NewHazardEvents(nc).Publish(ctx, zones); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d hazard events\n", len(zones))
	return nil
}

// Command ingestor seeds the district and hazard tables from the public
// Seoul datasets.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingestor",
	Short: "Load districts and hazard incidents into the saferoute database",
	Long: `ingestor reads the administrative-district CSV and the recovered-incident
JSON export and writes them to Postgres. Districts must be loaded first so
incidents can be assigned to them.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

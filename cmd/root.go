package cmd

import (
	"fmt"
	"os"

	"github.com/nexcrm/outreach-gateway/cmd/worker"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:   "outreach-gateway",
		Short: "Multi-tenant outbound messaging gateway",
		Long: `outreach-gateway delivers email, SMS and WhatsApp messages for CRM
tenants, serves the public tracking and unsubscribe endpoints, and ingests
call-state webhooks.

serve runs the HTTP surface, worker dispatch consumes queued envelopes.`,
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}

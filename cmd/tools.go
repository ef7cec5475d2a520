package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/tandengan-portal/internal/guestreport"
	"github.com/frahmantamala/tandengan-portal/internal/lookup"
	"github.com/frahmantamala/tandengan-portal/internal/villageapi"
	"github.com/frahmantamala/tandengan-portal/pkg/logger"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [tracking-code]",
	Short: "Check a guest registration by tracking code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newVillageClient()
		if err != nil {
			return err
		}
		svc := lookup.NewService(client, lookup.NewCooldown(time.Second, nil), logger.LoggerWrapper())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		outcome, err := svc.Check(ctx, "cli", args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

var (
	exportCookie string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export-guest-reports",
	Short: "Write every guest registration to a CSV file",
	Long:  `Fetch all guest registrations with an admin's upstream session cookie and write them in the same CSV format as the dashboard export.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportCookie == "" {
			return fmt.Errorf("--cookie is required")
		}
		client, err := newVillageClient()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		reports, err := client.ListGuestReports(villageapi.WithCredentials(ctx, exportCookie))
		if err != nil {
			return fmt.Errorf("list guest reports: %w", err)
		}

		out := exportOut
		if out == "" {
			out = guestreport.ExportFilename(time.Now())
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := guestreport.WriteCSV(f, reports); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		cmd.Printf("wrote %d registrations to %s\n", len(reports), out)
		return nil
	},
}

func newVillageClient() (*villageapi.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return villageapi.NewClient(villageapi.Config{
		BaseURL: cfg.VillageAPI.BaseURL,
		Timeout: cfg.VillageAPI.Timeout,
	}, logger.LoggerWrapper()), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportCookie, "cookie", "", "upstream session cookie of an admin")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to the dated export name)")

	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(exportCmd)
}

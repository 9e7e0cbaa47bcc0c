package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/communitydesk/sheetpress/internal/config"
	"github.com/communitydesk/sheetpress/internal/observability"
	"github.com/communitydesk/sheetpress/internal/pipeline"
	"github.com/communitydesk/sheetpress/internal/segment"
	"github.com/communitydesk/sheetpress/internal/sheets"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "Preview what a run would publish, without writing anything",
	Long: `Reads the worksheet and prints the segmented title and body for every
row with status "ready". Nothing is written to WordPress, Facebook or the
sheet, so this is safe to run against a live worksheet.`,
	RunE: checkCmd,
}

var (
	checkConfigPath string
	checkWorksheet  string
)

func init() {
	checkCommand.Flags().StringVar(&checkConfigPath, "config", "", "Path to config.json")
	checkCommand.Flags().StringVarP(&checkWorksheet, "worksheet", "w", "", "Worksheet name (defaults to WORKSHEET_NAME)")

	rootCmd.AddCommand(checkCommand)
}

func checkCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := &config.Config{}
	if checkConfigPath != "" {
		loaded, err := config.LoadFile(checkConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.FillFromEnv(); err != nil {
		return err
	}
	if cmd.Flags().Changed("worksheet") {
		cfg.WorksheetName = checkWorksheet
	}

	// Only sheet access is needed here; WordPress and Facebook credentials
	// may be absent.
	if cfg.SpreadsheetID == "" || cfg.WorksheetName == "" || cfg.ServiceAccountJSON == "" {
		return fmt.Errorf("config error: SPREADSHEET_ID, WORKSHEET_NAME and GOOGLE_SERVICE_ACCOUNT_JSON are required")
	}

	store, err := sheets.NewStore(ctx, cfg.SpreadsheetID, cfg.WorksheetName,
		option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	if err != nil {
		return err
	}

	rows, err := store.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("No data in sheet.")
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	ready := 0
	for _, row := range rows {
		if row.Status() != pipeline.StatusReady {
			continue
		}
		ready++
		title, body := segment.Segment(row.Get(sheets.ColRaw), row.Get(sheets.ColTitle), row.Get(sheets.ColContent))
		printer.PrintDraftPreview(row.Number, title, body)
	}
	fmt.Printf("%d of %d rows ready in %s\n", ready, len(rows), cfg.WorksheetName)
	return nil
}

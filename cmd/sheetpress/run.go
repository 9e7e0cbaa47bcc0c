package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/communitydesk/sheetpress/internal/caption"
	"github.com/communitydesk/sheetpress/internal/config"
	"github.com/communitydesk/sheetpress/internal/facebook"
	"github.com/communitydesk/sheetpress/internal/pipeline"
	"github.com/communitydesk/sheetpress/internal/rundb"
	"github.com/communitydesk/sheetpress/internal/sheets"
	"github.com/communitydesk/sheetpress/internal/wordpress"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Process every ready row: segment -> WordPress -> Facebook -> write back",
	Long: `Runs one batch pass over the worksheet: rows with status "ready" are
segmented into title/body, upserted as WordPress drafts, optionally watched
until manually published, posted to the Facebook Page feed, and stamped back
into the sheet.

Configuration comes from the environment (see .env support), optionally
overridden by a JSON config file and these flags.`,
	RunE: runBatchCmd,
}

var (
	runConfigPath    string
	runWorksheet     string
	runSkipFacebook  bool
	runPublishDirect bool
	runVerbose       bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json (values can be overridden by other flags)")
	runCommand.Flags().StringVarP(&runWorksheet, "worksheet", "w", "", "Worksheet name (defaults to WORKSHEET_NAME)")
	runCommand.Flags().BoolVar(&runSkipFacebook, "skip-facebook", false, "Publish to WordPress only; skip the Facebook stage")
	runCommand.Flags().BoolVar(&runPublishDirect, "publish-direct", false, "Publish posts immediately instead of creating drafts")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed per-row information")

	rootCmd.AddCommand(runCommand)
}

// loadRunConfig merges config file, environment and flags, in that order.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if runConfigPath != "" {
		loaded, err := config.LoadFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}
	if err := cfg.FillFromEnv(); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("worksheet") {
		cfg.WorksheetName = runWorksheet
	}
	if cmd.Flags().Changed("skip-facebook") {
		cfg.SkipFacebook = runSkipFacebook
	}
	if cmd.Flags().Changed("publish-direct") {
		cfg.PublishDirect = runPublishDirect
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	return cfg, nil
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := sheets.NewStore(ctx, cfg.SpreadsheetID, cfg.WorksheetName,
		option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	if err != nil {
		return err
	}

	wp := wordpress.NewClient(wordpress.Config{
		BaseURL:         cfg.WPBaseURL,
		Username:        cfg.WPUser,
		AppPassword:     cfg.WPAppPassword,
		AutoCreateTerms: cfg.AutoCreateTerms,
	})

	opts := pipeline.Options{
		Store:         store,
		CMS:           wp,
		Worksheet:     cfg.WorksheetName,
		PublishDirect: cfg.PublishDirect,
		PublishWait:   time.Duration(cfg.FBDelayMinutes) * time.Minute,
		FBPostDelay:   time.Duration(cfg.FBDelayMinutes) * time.Minute,
		WebhookURL:    cfg.WebhookURL,
		Verbose:       cfg.Verbose,
	}

	if !cfg.SkipFacebook {
		opts.Social = facebook.NewClient(facebook.Config{
			PageID:      cfg.FBPageID,
			AccessToken: cfg.FBAccessToken,
			APIVersion:  cfg.FBAPIVersion,
		})
	}

	if cfg.GeminiAPIKey != "" {
		source, err := caption.NewGeminiSource(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fmt.Printf("Warning: Gemini caption source unavailable, using default captions: %v\n", err)
		} else {
			defer func() { _ = source.Close() }()
			opts.CaptionSource = source
		}
	}

	if cfg.DatabaseURL != "" {
		db, err := rundb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: failed to connect to database: %v\n", err)
			fmt.Println("Continuing without run history...")
		} else {
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				fmt.Printf("Warning: %v\n", err)
			} else {
				opts.Recorder = db
			}
		}
	}

	_, err = pipeline.Run(ctx, opts)
	return err
}

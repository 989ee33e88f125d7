package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/arvidh/dynotes/awsconn"
	"github.com/arvidh/dynotes/config"
	"github.com/arvidh/dynotes/notes"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string

	flagTable    string
	flagKeyName  string
	flagSortKey  string
	flagUserID   string
	flagRegion   string
	flagEndpoint string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dynotes",
	Short: "Notes CRUD against a managed DynamoDB table",
	Long: `dynotes stores notes as items in a DynamoDB table.
Every subcommand is a single remote call: there is no local state,
no cache, and no retry policy beyond what the AWS SDK provides.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&flagTable, "table", "", fmt.Sprintf("DynamoDB table name (default from %s or %s)", config.TableEnvVar, config.DefaultTable))
	pf.StringVar(&flagKeyName, "key-name", "", "Partition key attribute name (default: detect, or 'id')")
	pf.StringVar(&flagSortKey, "sort-key", "", "Sort key (range) attribute name, if the table has one")
	pf.StringVar(&flagUserID, "user-id", "", "User id value for operations on tables with sort keys")
	pf.StringVar(&flagRegion, "region", "", "AWS region override")
	pf.StringVar(&flagEndpoint, "endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000 for a local table")
}

// loadConfig resolves layered configuration: defaults, config file,
// environment, then whichever flags were actually set.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flagTable != "" {
		cfg.Table = flagTable
	}
	if flagKeyName != "" {
		cfg.KeyName = flagKeyName
	}
	if flagSortKey != "" {
		cfg.SortKey = flagSortKey
	}
	if flagUserID != "" {
		cfg.UserID = flagUserID
	}
	if flagRegion != "" {
		cfg.Region = flagRegion
	}
	if flagEndpoint != "" {
		cfg.Endpoint = flagEndpoint
	}
	return cfg, nil
}

// openStore builds the notes store against the configured table.
func openStore(ctx context.Context) (*notes.Store, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	awsCfg, err := awsconn.Load(ctx, awsconn.Options{Region: cfg.Region, Endpoint: cfg.Endpoint})
	if err != nil {
		return nil, config.Config{}, err
	}
	client := awsconn.NewDynamo(awsCfg, awsconn.Options{Region: cfg.Region, Endpoint: cfg.Endpoint})
	store := notes.Open(ctx, client, notes.Options{
		Table:   cfg.Table,
		KeyName: cfg.KeyName,
		SortKey: cfg.SortKey,
	})
	return store, cfg, nil
}

// printJSON writes v to stdout as indented JSON, matching the tool's
// machine-readable output contract.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"

	"github.com/arvidh/dynotes/awsconn"
	"github.com/arvidh/dynotes/dynamo/ddb"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check credentials and table reachability",
	Long: `Doctor resolves the AWS credential chain, asks STS who the credentials
belong to, and describes the configured table. It makes no writes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		awsCfg, err := awsconn.Load(ctx, awsconn.Options{Region: cfg.Region, Endpoint: cfg.Endpoint})
		if err != nil {
			return err
		}

		identity, err := awsconn.CallerIdentity(ctx, awsCfg)
		if err != nil {
			return fmt.Errorf("credentials check failed: %w", err)
		}
		fmt.Printf("credentials ok: %s (account %s)\n", identity.ARN, identity.Account)

		client := awsconn.NewDynamo(awsCfg, awsconn.Options{Region: cfg.Region, Endpoint: cfg.Endpoint})
		ks, err := ddb.New(client).DescribeKeySchema(ctx, cfg.Table)
		if err != nil {
			return fmt.Errorf("table check failed: %w", err)
		}
		fmt.Printf("table ok: %s (partition key %q", cfg.Table, ks.PartitionKey.Name)
		if ks.SortKey.Name != "" {
			fmt.Printf(", sort key %q", ks.SortKey.Name)
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

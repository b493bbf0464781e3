// Package cli wires up the emulsion command tree.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FSXAC/Emulsion/lib/config"
	"github.com/FSXAC/Emulsion/lib/emulsiondb"
	"github.com/FSXAC/Emulsion/lib/logging"
	"github.com/FSXAC/Emulsion/lib/server"
	"github.com/FSXAC/Emulsion/lib/version"
)

// openDB loads config and opens the database. The config value comes from
// --config or the EMULSION_CONFIG environment variable; either may be
// empty, in which case defaults apply.
func openDB(ctx context.Context, configValue string) (*config.Config, *emulsiondb.DB, error) {
	if configValue == "" {
		configValue = os.Getenv("EMULSION_CONFIG")
	}

	cfg, err := config.Load(ctx, configValue)
	if err != nil {
		return nil, nil, err
	}

	db, err := emulsiondb.Open(ctx, emulsiondb.Params{
		DatabasePath: cfg.DatabasePath,
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}

func mkServeCommand() *cobra.Command {
	var configValue string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctx = logging.NewContextWithLogger(ctx, zap.L())

			cfg, db, err := openDB(ctx, configValue)
			if err != nil {
				return err
			}
			defer db.Close()

			srv, err := server.New(cfg, db)
			if err != nil {
				return err
			}

			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configValue, "config", "", "config filename or inline YAML")

	return cmd
}

func mkVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			if info.CommitHash == "" {
				fmt.Println("Version: unknown (no build info)")
				return nil
			}

			dirtyFlag := ""
			if info.DirtyCommit {
				dirtyFlag = " (dirty)"
			}
			fmt.Printf("Commit:       %s%s\n", info.CommitHash, dirtyFlag)
			fmt.Printf("Commit time:  %s\n", info.CommitTime)

			return nil
		},
	}
}

func mkAdminCommandGroup() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands that access the database directly",
	}

	var configValue string
	adminCmd.PersistentFlags().StringVar(&configValue, "config", "", "config filename or inline YAML")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			_, db, err := openDB(ctx, configValue)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Println("Rolls:           ", stats.NumRolls)
			fmt.Println("Chemistry batches:", stats.NumChemistryBatches)
			fmt.Println("Dev chart entries:", stats.NumDevChartEntries)
			fmt.Println()
			for status, count := range stats.RollsByStatus {
				fmt.Printf("  %-10s %d\n", status, count)
			}

			return nil
		},
	}
	adminCmd.AddCommand(statsCmd)

	return adminCmd
}

func Main() {
	zapconfig := zap.NewDevelopmentConfig()
	zapconfig.Level.SetLevel(zap.InfoLevel)
	logger, err := zapconfig.Build()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	rootCmd := &cobra.Command{Use: "emulsion"}
	rootCmd.AddCommand(
		mkServeCommand(),
		mkVersionCommand(),
		mkAdminCommandGroup(),
		mkImportCommandGroup(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brunodantas/onion-tasks/internal/cli"
	"github.com/brunodantas/onion-tasks/internal/config"
	internal_http "github.com/brunodantas/onion-tasks/internal/http"
	"github.com/brunodantas/onion-tasks/internal/log"
	internal_storage "github.com/brunodantas/onion-tasks/internal/storage"
)

var rootCmd = &cobra.Command{Use: "onion-tasks"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	defaultConnStr, _ := cfg.ConnString()
	rootCmd.PersistentFlags().String("db", defaultConnStr, "Database connection string (defaults to DB_* env vars)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Run: func(cmd *cobra.Command, args []string) {
			dbConnStr, err := cmd.Flags().GetString("db")
			if err != nil || dbConnStr == "" {
				log.GetLogger().Error("Database connection string required (--db flag or DB_* env vars)")
				os.Exit(1)
			}
			store, err := internal_storage.InitStore(dbConnStr)
			if err != nil {
				log.GetLogger().Errorf("Failed to initialize store: %v", err)
				os.Exit(1)
			}
			defer store.Close()
			if err := internal_http.StartServer(cfg.Port, store); err != nil {
				log.GetLogger().Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

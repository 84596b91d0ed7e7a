package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/kalamitra/kalamitra-api/config"
	"github.com/kalamitra/kalamitra-api/services"
	"github.com/spf13/cobra"
)

// rootCmd serves the API when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "kalamitra",
	Short: "KalaMitra - marketplace API for artisans",
	Long: `KalaMitra connects buyers with artisans: artisan profiles and products,
star ratings, wishlists and buyer-artisan chats over a JSON HTTP API.

Configuration is read from the environment and from .env.<GO_ENV> or .env.

Examples:
  kalamitra              # Start the API server
  kalamitra serve        # Same as above
  kalamitra migrate      # Create or update the database schema and exit`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := bootstrap()
		if err != nil {
			return err
		}
		log.Println("Database migration completed successfully")
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// bootstrap loads configuration, connects to the database and migrates it
func bootstrap() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ConnectDatabase(cfg.DatabaseURL, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := config.Migrate(config.GetDB()); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cfg, nil
}

func runServe() error {
	log.Println("Starting KalaMitra API server...")

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	log.Println("Database migration completed successfully")

	if _, err := services.InitImageStore(context.Background(), cfg); err != nil {
		return fmt.Errorf("failed to initialize image storage: %w", err)
	}
	log.Printf("Image storage backend: %s", cfg.StorageBackend)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := SetupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

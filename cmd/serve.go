// cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viberx/viberx/internal/config"
	"github.com/viberx/viberx/internal/db"
	"github.com/viberx/viberx/internal/log"
	"github.com/viberx/viberx/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the viberx server",
	Long:  `Starts the HTTP server with the Spotify OAuth flow, session endpoints and API proxy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// CLI flags override environment variables
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}
		if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		if domain, _ := cmd.Flags().GetString("https-domain"); domain != "" {
			cfg.HTTPSDomain = domain
		}
		if logLevel, _ := cmd.Flags().GetString("log-level"); logLevel != "" {
			cfg.LogLevel = logLevel
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := log.Init(&log.Config{
			Mode:     cfg.LogMode,
			Level:    cfg.LogLevel,
			Format:   cfg.LogFormat,
			FilePath: cfg.LogFile,
		}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		if _, err := os.Stat(cfg.DatabasePath); os.IsNotExist(err) {
			return fmt.Errorf("database not found at %s. Run 'viberx init' first", cfg.DatabasePath)
		}

		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		// Run migrations in case schema is outdated
		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		srv := server.New(cfg, database)

		errCh := make(chan error, 1)
		go func() {
			if cfg.HTTPSDomain != "" {
				fmt.Printf("Starting viberx on https://%s\n", cfg.HTTPSDomain)
				errCh <- srv.ListenAndServeTLS(cfg.HTTPSDomain, cfg.CertDir)
				return
			}
			fmt.Printf("Starting viberx on %s\n", cfg.ListenAddr)
			fmt.Printf("  Login:     http://%s/api/auth/login\n", cfg.ListenAddr)
			fmt.Printf("  Dashboard: http://%s/dashboard\n", cfg.ListenAddr)
			errCh <- srv.ListenAndServe(cfg.ListenAddr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides VIBERX_ADDR)")
	serveCmd.Flags().String("db", "", "Path to database file (overrides VIBERX_DB)")
	serveCmd.Flags().String("https-domain", "", "Domain for Let's Encrypt HTTPS")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
}

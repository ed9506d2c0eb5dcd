package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-tailor/internal/config"
	"github.com/jonathan/cv-tailor/internal/logging"
	"github.com/jonathan/cv-tailor/internal/server"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts CV uploads and answers keyword and readiness requests.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig(serveConfig, servePort)
	if err != nil {
		return err
	}

	closer := logging.Setup(cfg.LogFile)
	defer closer.Close()

	srv, err := server.New(serverConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Printf("[serve] uploads in %q, max %dMB, CORS origin %q", cfg.UploadDir, cfg.MaxUploadMB, cfg.AllowOrigin)
	return srv.Start()
}

// loadServeConfig resolves the configuration; a non-zero port wins over
// everything else.
func loadServeConfig(path string, port int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func serverConfig(cfg config.Config) server.Config {
	return server.Config{
		Port:         cfg.Port,
		UploadDir:    cfg.UploadDir,
		MaxUploadMB:  cfg.MaxUploadMB,
		AllowOrigin:  cfg.AllowOrigin,
		KeywordLimit: cfg.KeywordLimit,
	}
}

package main

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/legout/skillctl/pkg/logger"
	"github.com/legout/skillctl/pkg/presenter"
	"github.com/legout/skillctl/pkg/server"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	Host string
	Port int
}

// NewServeConfig creates a new ServeConfig with default values
func NewServeConfig() *ServeConfig {
	return &ServeConfig{
		Host: "localhost",
		Port: 8080,
	}
}

// Validate validates the serve configuration
func (c *ServeConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}

	if c.Host != "localhost" && c.Host != "0.0.0.0" {
		if ip := net.ParseIP(c.Host); ip == nil {
			if strings.Contains(c.Host, " ") || strings.Contains(c.Host, ":") {
				return errors.Errorf("invalid host: %s", c.Host)
			}
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local preview server for the skill repository",
	Long: `Start a local web server that serves the discovered skills: an HTML
index, rendered skill pages, and a JSON API under /api/skills.

The server will be available at http://localhost:8080 by default.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getServeConfigFromFlags(cmd)

		if err := config.Validate(); err != nil {
			presenter.Error(err, "Invalid server configuration")
			os.Exit(1)
		}

		discovery, err := newDiscovery()
		if err != nil {
			presenter.Error(err, "Invalid configuration")
			os.Exit(1)
		}

		srv, err := server.NewServer(discovery, &server.Config{
			Host: config.Host,
			Port: config.Port,
		})
		if err != nil {
			presenter.Error(err, "Failed to create preview server")
			os.Exit(1)
		}

		presenter.Success(fmt.Sprintf("Preview server starting on http://%s:%d", config.Host, config.Port))
		presenter.Info("Press Ctrl+C to stop the server")

		if err := srv.Start(ctx); err != nil {
			logger.G(ctx).WithError(err).Error("preview server error")
			presenter.Error(err, "Preview server failed")
			os.Exit(1)
		}

		presenter.Info("Preview server stopped")
	},
}

func init() {
	defaults := NewServeConfig()
	serveCmd.Flags().String("host", defaults.Host, "Host to bind the preview server to")
	serveCmd.Flags().Int("port", defaults.Port, "Port to bind the preview server to")
}

// getServeConfigFromFlags extracts serve configuration from command flags
func getServeConfigFromFlags(cmd *cobra.Command) *ServeConfig {
	config := NewServeConfig()

	if host, err := cmd.Flags().GetString("host"); err == nil {
		config.Host = host
	}
	if port, err := cmd.Flags().GetInt("port"); err == nil {
		config.Port = port
	}

	return config
}

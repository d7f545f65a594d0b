package cmd

import (
	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal/api"
	"github.com/spf13/cobra"
)

var servePort int

// serveCmd starts the JSON API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversations over a JSON API",
	Long: `Start an HTTP server exposing the conversation pipeline.

Endpoints:
  GET  /health
  GET  /api/projects
  GET  /api/conversation/{project-id}?refresh=true&sanitize=true
  GET  /api/cache/stats
  POST /api/cache/clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		server := api.NewServer(cfg, servePort)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 5000, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

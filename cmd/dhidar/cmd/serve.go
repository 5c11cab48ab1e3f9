package cmd

import (
	"fmt"

	"github.com/dhidargpt/dhidar/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Démarre l'API HTTP locale",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = dhidarApp.Config.Serve.Addr
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "🚀 Serveur API DhidarGPT\n")
		fmt.Fprintf(out, "📡 Serveur : http://%s\n", addr)
		fmt.Fprintf(out, "🔗 Santé : http://%s/api/v1/health\n", addr)

		return api.NewServer(dhidarApp.Gateway).Start(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config serve.addr)")
}

package cmd

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/florelab/floradb/internal/config"
	"github.com/florelab/floradb/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch garden events live in the terminal",
	Long: `Open a live terminal view of the flowers on a server. Rows are seeded
from the current gardens and kept in sync from the event stream.`,
	RunE: runWatch,
}

var watchURL string

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchURL, "url", "", "server base URL (default derives from server.addr)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	baseURL := watchURL
	if baseURL == "" {
		baseURL = baseURLFromAddr(config.Get().Server.Addr)
	}
	return tui.Run(baseURL)
}

// baseURLFromAddr turns a listen address like ":8080" into a URL a local
// client can reach.
func baseURLFromAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

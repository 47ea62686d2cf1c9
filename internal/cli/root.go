package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "watershed",
	Short: "Basin-routed tiered memory for AI agents",
	Long:  "Watershed routes agent memories into attractor basins and moves them through hot, warm, and cold tiers. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.watershed/config.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(basinsCmd)
	rootCmd.AddCommand(proposalsCmd)
}

// resolveConfigPath returns the --config value, or the default location
// under the user's home dir.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".watershed", "config.toml")
}

// prettyJSON re-indents a JSON response body for terminal output.
func prettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

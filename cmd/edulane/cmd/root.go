package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	apiURL  string
	version = "dev" // Set by build
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edulane",
	Short: "EduLane - command-line client for the EduLane learning platform",
	Long: `EduLane is a command-line client for the EduLane learning platform.

It keeps an authenticated session across invocations: a successful login
persists the access credential locally, every later invocation restores
the session from it, and the credential is attached to all API calls
until it expires, is rejected by the server, or is cleared by logout.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides configuration)")
}

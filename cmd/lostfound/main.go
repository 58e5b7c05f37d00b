// Command lostfound is the reporting and claiming client for the lost-and-found API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shinyyama/reconnect/internal/client"
	"github.com/shinyyama/reconnect/internal/config"
	"github.com/shinyyama/reconnect/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.ClientConfig
	apiURL    string
	outputFmt string
	timeout   time.Duration
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "lostfound",
	Short:         "Report found items and claim lost ones",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logging.SetupWriter(cmd.ErrOrStderr(), level, true)
		if outputFmt != "json" && outputFmt != "yaml" {
			return fmt.Errorf("unsupported output %q (use json or yaml)", outputFmt)
		}
		return nil
	},
}

func init() {
	_ = godotenv.Load()
	var err error
	if cfg, err = config.LoadClient(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.APIBaseURL, "Lost-and-found API base URL (or set LOSTFOUND_API)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(claimCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func apiClient() *client.Client {
	return client.New(apiURL, nil)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

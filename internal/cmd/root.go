package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rezai-admin",
	Short: "Administration console for the Rezai recipe platform",
	Long: `rezai-admin manages the Rezai recipe platform: users, recipes, survey
questions and their answers.

Run 'rezai-admin console' for the interactive console, or use the resource
commands for scripted access. Every command except login, config and version
requires a session created with 'rezai-admin auth login'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, cancelled on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.rezai-admin/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "admin API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().String("format", "text", "output format: text, json, yaml")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("home", "", "state directory (default is $HOME/.rezai-admin)")
}

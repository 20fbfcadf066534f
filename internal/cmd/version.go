package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
	RunE: runVersion,
}

var (
	versionVerbose bool
	versionJSON    bool
)

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	if versionJSON {
		cc.Format = "json"
	}

	info := version.GetInfo()
	out := cmd.OutOrStdout()

	switch {
	case cc.Format != "text" && cc.Format != "":
		return printFormatted(out, cc, info)
	case versionVerbose:
		fmt.Fprintln(out, info.String())
	default:
		fmt.Fprintf(out, "rezai-admin %s\n", info.Short())
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rezai-admin/internal/config"
	"github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or edit rezai-admin configuration",
	Long: `Manage configuration stored at ~/.rezai-admin/config.yaml

Configuration includes:
  • Admin API base URL and request timeout
  • Image host used for option icon uploads
  • Logging settings

Values are resolved from defaults, a project .env (VITE_API_BASE_URL), the
config file, REZAI_* environment variables and flags, in that order.

Examples:
  # View the effective configuration
  rezai-admin config view

  # Edit configuration in $EDITOR
  rezai-admin config edit

  # Show configuration file path
  rezai-admin config path
`,
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Display the effective configuration",
	RunE:  runConfigView,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration in $EDITOR",
	Long:  `Open the configuration file in your default editor (from $EDITOR environment variable).`,
	RunE:  runConfigEdit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// configText prints the configuration as YAML in text mode.
type configText struct {
	*config.Config
}

func (c configText) String() string {
	data, err := yaml.Marshal(c.Config)
	if err != nil {
		return err.Error()
	}
	path := c.File
	if path == "" {
		path = c.DefaultConfigPath() + " (not found, using defaults)"
	}
	return fmt.Sprintf("Configuration file: %s\n\n%s", path, data)
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := cc.LoadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	if cc.Format == ux.FormatText || cc.Format == "" {
		return printFormatted(cmd.OutOrStdout(), cc, configText{cfg})
	}
	return printFormatted(cmd.OutOrStdout(), cc, cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := cc.LoadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	path := cfg.File
	if path == "" {
		path = cfg.DefaultConfigPath()
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := cc.LoadConfig()
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}

	path := cfg.File
	if path == "" {
		path = cfg.DefaultConfigPath()
		if err := saveConfig(cfg, path); err != nil {
			return err
		}
	}

	// Get editor from environment
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi" // Fallback to vi
	}

	editorCmd := exec.CommandContext(cmd.Context(), editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	// Validate the edited config
	edited, err := config.Load(config.Options{ConfigPath: path, Home: cfg.Home})
	if err == nil {
		err = edited.Validate()
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Configuration may contain errors: %v\n", err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration updated successfully")
	return nil
}

// saveConfig writes cfg as the starting config file.
func saveConfig(cfg *config.Config, path string) error {
	out := *cfg
	out.File = ""

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}

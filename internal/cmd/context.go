package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/config"
)

// CommandContext holds the persistent flags of one command invocation.
type CommandContext struct {
	// Output control
	Format  string
	NoColor bool

	// Configuration
	ConfigPath string
	APIURL     string
	Home       string
	LogLevel   string
}

// NewCommandContext extracts command context from cobra.Command flags.
// Commands should call this in their RunE function to get their configuration:
//
//	func runCommand(cmd *cobra.Command, args []string) error {
//		cc, err := NewCommandContext(cmd)
//		if err != nil {
//			return fmt.Errorf("failed to create command context: %w", err)
//		}
//		// Use cc.Format, cc.Home, etc.
//	}
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}

	home, err := cmd.Flags().GetString("home")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Format:     format,
		NoColor:    noColor,
		ConfigPath: configPath,
		APIURL:     apiURL,
		Home:       home,
		LogLevel:   logLevel,
	}, nil
}

// LoadConfig resolves the configuration with the flag overrides applied.
func (c *CommandContext) LoadConfig() (*config.Config, error) {
	overrides := make(map[string]any)
	if c.APIURL != "" {
		overrides["api.base_url"] = c.APIURL
	}
	if c.LogLevel != "" {
		overrides["log.level"] = c.LogLevel
	}

	return config.Load(config.Options{
		ConfigPath: c.ConfigPath,
		Home:       c.Home,
		DotEnvPath: ".env",
		Overrides:  overrides,
	})
}

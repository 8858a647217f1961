package cli

import (
	"github.com/spf13/cobra"

	"github.com/daichi-lab/cgtutor/internal/app"
	"github.com/daichi-lab/cgtutor/internal/app/config"
	infraConfig "github.com/daichi-lab/cgtutor/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cgtutor",
		Short: "3DCG tutorial progress tracker and research telemetry",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs.
			// Priority: CGTUTOR_* env > defaults
			cfg, err := infraConfig.LoadSettings()
			if err != nil {
				app.GetLogger().Warn("settings load failed, using defaults: %v", err)
				cfg = infraConfig.DefaultSettings()
			}
			globalConfig = cfg
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSummaryCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newCurriculumCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daichi-lab/cgtutor/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cgtutor %s\n", buildinfo.GetVersion())
			return nil
		},
	}
}

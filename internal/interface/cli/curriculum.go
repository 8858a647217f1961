package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daichi-lab/cgtutor/internal/app/curriculum"
)

func newCurriculumCmd() *cobra.Command {
	var chapter int
	var details bool

	cmd := &cobra.Command{
		Use:   "curriculum",
		Short: "Show the tutorial chapters and stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := curriculum.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ch := range cur.Chapters() {
				if chapter > 0 && ch.Chapter != chapter {
					continue
				}
				fmt.Fprintf(out, "Chapter %d: %s\n", ch.Chapter, ch.Title)
				for _, st := range ch.Stages {
					fmt.Fprintf(out, "  %d-%d %s: %s\n", ch.Chapter, st.Stage, st.Name, st.Description)
					if details && st.Details != "" {
						fmt.Fprintf(out, "      %s\n", st.Details)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&chapter, "chapter", 0, "show only this chapter")
	cmd.Flags().BoolVar(&details, "details", false, "include per-stage key guides")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"faultline/internal/ui"
)

var (
	incidentsDir   string
	incidentsWidth int
	incidentsClear bool
)

func init() {
	incidentsCmd.Flags().StringVar(&incidentsDir, "dir", "", "journal directory (default: [journal].dir, then the user cache)")
	incidentsCmd.Flags().IntVar(&incidentsWidth, "width", 0, "table width (0 = terminal width)")
	incidentsCmd.Flags().BoolVar(&incidentsClear, "clear", false, "delete every recorded incident")
}

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "List errors recorded in the incident journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := loadFileConfig(cmd)
		if err != nil {
			return err
		}
		dir := incidentsDir
		if dir == "" {
			dir = file.Journal.Dir
		}
		if dir == "" {
			dir = "auto"
		}
		j, err := openJournal(dir)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}

		if incidentsClear {
			if err := j.DropAll(); err != nil {
				return fmt.Errorf("failed to clear journal: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", j.Dir())
			return nil
		}

		incs, err := j.List()
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		width := incidentsWidth
		if width <= 0 {
			width = terminalWidth()
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.IncidentTable(incs, width))
		return nil
	},
}

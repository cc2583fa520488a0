package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/promo/internal/config"
	"github.com/mgpai22/promo/internal/timeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the storyboard timeline",
	Long: `Print every section with its schedule, overlay window and source image
without rendering anything. Missing images are flagged so they can be fixed
before a build.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), planTable(cfg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func planRows(c config.Config) [][]string {
	sections := timeline.Storyboard(c)

	rows := make([][]string, 0, len(sections)+1)
	for i, s := range sections {
		overlays := "-"
		if start, dur := timeline.OverlayWindow(s); dur > 0 {
			overlays = fmt.Sprintf("%.1f-%.1f", start, start+dur)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			s.Name,
			string(s.Kind),
			fmt.Sprintf("%.1f", s.Start),
			fmt.Sprintf("%.1f", s.End()),
			overlays,
			s.Title,
			imageStatus(s.Image),
		})
	}
	rows = append(rows, []string{
		"", "total", "", "", fmt.Sprintf("%.1f", timeline.TotalDuration(sections)), "", "", "",
	})
	return rows
}

func imageStatus(path string) string {
	if path == "" {
		return "-"
	}
	if _, err := os.Stat(path); err != nil {
		return "missing: " + path
	}
	return path
}

func planTable(c config.Config) string {
	return renderTable(
		"Storyboard",
		[]string{"#", "Section", "Kind", "Start", "End", "Overlays", "Title", "Image"},
		planRows(c),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	)
}

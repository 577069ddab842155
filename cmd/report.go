package cmd

import (
	"fmt"
	"os"

	"github.com/signalnine/puzzlebench/internal/report"
	"github.com/spf13/cobra"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Re-render a structured report",
		Long: `Read a report previously emitted with --json from a file (or stdin
when no file is given) and render it again at the requested format and
verbosity. The structured format is lossless, so statistics survive the
round trip unchanged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening report: %w", err)
				}
				defer f.Close()
				in = f
			}
			rep, err := report.Decode(in)
			if err != nil {
				return err
			}
			return report.Render(os.Stdout, rep, report.RenderOpts{
				Format:  flagFormat,
				Quiet:   flagQuiet,
				Verbose: flagVerbose,
			})
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", report.FormatTable, "output format (table, json)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "V", false, "show per-solution spread statistics")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "show only failures and totals")
	return cmd
}

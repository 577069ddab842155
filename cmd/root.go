package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "puzzlebench",
		Short: "Solution runner and adaptive micro-benchmark harness",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "puzzlebench.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	return root
}

package cmd

import (
	"fmt"

	"github.com/signalnine/puzzlebench/internal/config"
	"github.com/signalnine/puzzlebench/internal/registry"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered projects and solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			solutions, err := registry.Discover(cfg.Solutions.Dir)
			if err != nil {
				return err
			}
			project := ""
			for _, s := range solutions {
				if s.Project != project {
					project = s.Project
					fmt.Printf("%s:\n", project)
				}
				fmt.Printf("  - %s\n", s.Name)
			}
			if len(solutions) == 0 {
				fmt.Printf("no solutions under %s\n", cfg.Solutions.Dir)
			}
			return nil
		},
	}
}

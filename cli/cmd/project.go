package cmd

import (
	"fmt"

	"github.com/hookline/hookline/cli/pkg/output"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"group"},
	Short:   "Active project commands",
	Long:    "Show or switch the project every API call is scoped to",
}

var projectUseCmd = &cobra.Command{
	Use:   "use <project-id>",
	Short: "Switch the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := profileName(cmd)
		if err := cfg.UseGroup(name, args[0]); err != nil {
			return fmt.Errorf("failed to switch project: %w", err)
		}

		output.Success("Now using project %s (profile '%s')", args[0], name)
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cfg.GetProfile(profileName(cmd))
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}
		output.Info("%s", p.GroupID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectShowCmd)
}

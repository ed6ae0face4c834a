package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antoniolg/agent-kit/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow.yaml>",
	Short: "Run a release workflow",
	Long: `Run the steps of a YAML release workflow in order. A step parameter can
reference an earlier step's output as ${steps.<step>.<output>}.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := workflow.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		if _, err := wf.Run(cmd.Context(), registry); err != nil {
			return fmt.Errorf("workflow %s failed: %w", wf.Name, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

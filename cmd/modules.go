package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antoniolg/agent-kit/internal/mod"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List pipeline modules and their inputs and outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		printModules(cmd.OutOrStdout(), registry)
		return nil
	},
}

func printModules(w io.Writer, reg *mod.ModuleRegistry) {
	for _, m := range reg.ListModules() {
		desc := m.GetIO()
		fmt.Fprintf(w, "%s\n", m.Name())
		for _, in := range desc.RequiredInputs {
			fmt.Fprintf(w, "  * %-18s %s\n", in.Name, in.Description)
		}
		for _, in := range desc.OptionalInputs {
			fmt.Fprintf(w, "    %-18s %s\n", in.Name, in.Description)
		}
		outs := make([]string, 0, len(desc.ProducedOutputs))
		for _, out := range desc.ProducedOutputs {
			outs = append(outs, out.Name)
		}
		fmt.Fprintf(w, "  -> %s\n", strings.Join(outs, ", "))
	}
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}

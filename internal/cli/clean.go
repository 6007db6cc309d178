package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpmntools/morph/pkg/bpmn"
	"github.com/bpmntools/morph/pkg/transform"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <input> <output>",
		Short: "Remove artifacts generated by earlier transform runs",
		Long: `Remove fragment groups, their associations and annotations, and synthesized
bypass flows left behind by earlier transform runs. Running clean twice is
equivalent to running it once.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := bpmn.ParseFile(args[0])
			if err != nil {
				return err
			}
			n := transform.Cleanup(doc)
			if err := bpmn.WriteFile(args[1], doc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render(fmt.Sprintf("Removed %d stale artifact(s)", n)))
			fmt.Fprintln(cmd.OutOrStdout(), stylePath.Render(args[1]))
			return nil
		},
	}
}

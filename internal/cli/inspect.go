package cli

import (
	"github.com/spf13/cobra"

	"github.com/theapemachine/qsim/render"
	"github.com/theapemachine/qsim/snapshot"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Print a state saved with run --save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := snapshot.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load state", err)
			}

			rootOpts.logger.Debug("state loaded", "qubits", state.NumQubits(), "kets", state.Len())
			return render.Write(cmd.OutOrStdout(), rootOpts.settings.Format, state)
		},
	}

	return cmd
}

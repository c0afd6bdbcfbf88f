package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theapemachine/qsim/gate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <circuit.qasm>",
		Short: "Check a circuit without running it",
		Long: `Validate parses the circuit and checks every operand against the register,
without building any state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	program, err := loadProgram(path)
	if err != nil {
		return err
	}

	primitives := len(gate.Flatten(program.Gates...))

	opts.logger.Debug("circuit is valid",
		"file", path,
		"definitions", len(program.Definitions),
		"primitives", primitives,
	)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s: %d qubits, %d gates (%d primitive)\n",
		path, program.Width(), len(program.Gates), primitives,
	)
	return err
}

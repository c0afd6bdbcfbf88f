package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the state PersistentPreRunE prepares.
type RootOptions struct {
	ConfigFile string

	settings *Settings
	logger   *log.Logger
}

// NewRootCommand creates the root command for the qsim CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qsim",
		Short: "Sparse state-vector quantum circuit simulator",
		Long: `qsim runs OpenQASM 2.0 circuits built from h, x, t, tdg, cx, ccx and mcx
on a sparse state vector that only stores basis states with non-zero amplitude.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, opts.ConfigFile)
			if err != nil {
				return err
			}

			opts.settings = settings
			opts.logger = newLogger(cmd.ErrOrStderr(), settings.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "log progress and engine metrics to stderr")
	cmd.PersistentFlags().String("format", "text", "output format (text|json|dump)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

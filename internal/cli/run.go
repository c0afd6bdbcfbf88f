package cli

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/qasm"
	"github.com/theapemachine/qsim/render"
	"github.com/theapemachine/qsim/snapshot"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <circuit.qasm>",
		Short: "Run a circuit and print the final state",
		Long: `Run folds every gate of the circuit over the ground state, or over a saved
state when --from is given, and prints the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, args[0], cmd)
		},
	}

	defaults := qsim.NewConfig()

	cmd.Flags().Int("workers", defaults.Workers, "goroutines used to transform kets")
	cmd.Flags().Int("threshold", defaults.ParallelThreshold, "smallest state, in kets, worth splitting across workers")
	cmd.Flags().String("save", "", "write the final state to this snapshot file")
	cmd.Flags().String("from", "", "start from a saved state instead of the ground state")

	return cmd
}

func runRun(opts *RootOptions, path string, cmd *cobra.Command) error {
	settings, logger := opts.settings, opts.logger

	program, err := loadProgram(path)
	if err != nil {
		return err
	}

	state := qsim.GroundState(program.Width())

	if settings.From != "" {
		if state, err = snapshot.Load(settings.From); err != nil {
			return WrapExitError(ExitCommandError, "load state", err)
		}

		if state.NumQubits() != program.Width() {
			return WrapExitError(ExitFailure, "load state", fmt.Errorf(
				"%w: snapshot has %d qubits, circuit needs %d",
				qsim.ErrWidthMismatch, state.NumQubits(), program.Width(),
			))
		}
	}

	logger.Debug("running circuit",
		"file", path,
		"qubits", program.Width(),
		"gates", len(program.Gates),
		"workers", settings.Workers,
	)

	engine := qsim.NewEngine(settings.engineConfig())

	start := time.Now()
	final, err := engine.Run(state, program.Gates...)
	if err != nil {
		return WrapExitError(ExitFailure, "run "+path, err)
	}

	logger.Debug("circuit finished", "kets", final.Len(), "elapsed", time.Since(start))
	logMetrics(logger, engine.Metrics())

	if settings.Save != "" {
		if err := snapshot.Save(settings.Save, final); err != nil {
			return WrapExitError(ExitCommandError, "save state", err)
		}
		logger.Debug("state saved", "file", settings.Save)
	}

	return render.Write(cmd.OutOrStdout(), settings.Format, final)
}

// loadProgram separates circuits that are wrong from files that are missing.
func loadProgram(path string) (*qasm.Program, error) {
	program, err := qasm.ParseFile(path)
	if err == nil {
		return program, nil
	}

	var syntax *qasm.SyntaxError
	if errors.As(err, &syntax) {
		return nil, WrapExitError(ExitFailure, path, err)
	}

	return nil, WrapExitError(ExitCommandError, "read circuit", err)
}

func logMetrics(logger *log.Logger, metrics *qsim.Metrics) {
	exported := metrics.ExportMetrics()

	keys := make([]string, 0, len(exported))
	for key := range exported {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	keyvals := make([]interface{}, 0, 2*len(keys))
	for _, key := range keys {
		keyvals = append(keyvals, key, exported[key])
	}

	logger.Debug("engine metrics", keyvals...)
}

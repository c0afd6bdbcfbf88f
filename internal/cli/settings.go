package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/render"
)

/*
Settings is what a command runs with after flags, QSIM_* environment
variables and the optional config file have been merged. A flag that was set
on the command line wins, then the environment, then the file, then the
flag's default.
*/
type Settings struct {
	Format    render.Format
	Verbose   bool
	Workers   int
	Threshold int
	Save      string
	From      string
}

func loadSettings(cmd *cobra.Command, configFile string) (*Settings, error) {
	defaults := qsim.NewConfig()

	v := viper.New()
	v.SetEnvPrefix("qsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("format", string(render.Text))
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("threshold", defaults.ParallelThreshold)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, WrapExitError(ExitCommandError, "bind flags", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, WrapExitError(ExitCommandError, "read config "+configFile, err)
		}
	}

	format, err := render.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid format", err)
	}

	return &Settings{
		Format:    format,
		Verbose:   v.GetBool("verbose"),
		Workers:   v.GetInt("workers"),
		Threshold: v.GetInt("threshold"),
		Save:      v.GetString("save"),
		From:      v.GetString("from"),
	}, nil
}

// engineConfig maps the settings onto the engine's own Config.
func (s *Settings) engineConfig() *qsim.Config {
	return &qsim.Config{
		Workers:           s.Workers,
		ParallelThreshold: s.Threshold,
	}
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "qsim",
		Level:  log.WarnLevel,
	})

	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const bell = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
h q[0];
cx q[0], q[1];
`

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		cmd := NewRootCommand()

		Convey("It should carry every subcommand", func() {
			for _, name := range []string{"run", "validate", "inspect"} {
				sub, _, err := cmd.Find([]string{name})
				So(err, ShouldBeNil)
				So(sub.Name(), ShouldEqual, name)
			}
		})

		Convey("It should expose the global flags", func() {
			So(cmd.PersistentFlags().Lookup("format").DefValue, ShouldEqual, "text")
			So(cmd.PersistentFlags().Lookup("verbose").Shorthand, ShouldEqual, "v")
			So(cmd.PersistentFlags().Lookup("config"), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given the bell circuit", t, func() {
		circuit := writeFile(t, "bell.qasm", bell)

		Convey("Text output should list both terms", func() {
			out, _, err := execute("run", circuit)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "(0.707+0i)|00⟩ + (0.707+0i)|11⟩\n")
		})

		Convey("JSON output should be machine readable", func() {
			out, _, err := execute("run", circuit, "--format", "json", "--workers", "2")
			So(err, ShouldBeNil)

			var doc struct {
				Qubits int `json:"qubits"`
				Terms  []struct {
					Bits string `json:"bits"`
				} `json:"terms"`
			}
			So(json.Unmarshal([]byte(out), &doc), ShouldBeNil)
			So(doc.Qubits, ShouldEqual, 2)
			So(doc.Terms, ShouldHaveLength, 2)
		})

		Convey("Verbose mode should log the engine metrics", func() {
			_, stderr, err := execute("run", circuit, "--verbose")
			So(err, ShouldBeNil)
			So(stderr, ShouldContainSubstring, "engine metrics")
			So(stderr, ShouldContainSubstring, "gates_applied=2")
		})

		Convey("A saved state should be readable with inspect", func() {
			saved := filepath.Join(t.TempDir(), "bell.msgpack")

			out, _, err := execute("run", circuit, "--save", saved)
			So(err, ShouldBeNil)

			inspected, _, err := execute("inspect", saved)
			So(err, ShouldBeNil)
			So(inspected, ShouldEqual, out)
		})

		Convey("An unknown format should be a command error", func() {
			_, _, err := execute("run", circuit, "--format", "yaml")
			So(GetExitCode(err), ShouldEqual, ExitCommandError)
		})
	})

	Convey("Given a saved state to continue from", t, func() {
		flip := writeFile(t, "flip.qasm", "OPENQASM 2.0;\nqreg q[1];\nx q[0];\n")
		saved := filepath.Join(t.TempDir(), "one.msgpack")

		_, _, err := execute("run", flip, "--save", saved)
		So(err, ShouldBeNil)

		Convey("Running again should start from it", func() {
			out, _, err := execute("run", flip, "--from", saved)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "(1+0i)|0⟩\n")
		})

		Convey("A circuit of another width should be refused", func() {
			wide := writeFile(t, "wide.qasm", bell)
			_, _, err := execute("run", wide, "--from", saved)
			So(GetExitCode(err), ShouldEqual, ExitFailure)
		})
	})

	Convey("Given settings from outside the command line", t, func() {
		circuit := writeFile(t, "bell.qasm", bell)

		Convey("A config file should pick the format", func() {
			config := writeFile(t, "qsim.yaml", "format: json\nworkers: 2\n")

			out, _, err := execute("run", circuit, "--config", config)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"terms"`)
		})

		Convey("The environment should pick the format", func() {
			t.Setenv("QSIM_FORMAT", "dump")

			out, _, err := execute("run", circuit)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Qubits: (int) 2")
		})

		Convey("A flag should beat the config file", func() {
			config := writeFile(t, "qsim.yaml", "format: json\n")

			out, _, err := execute("run", circuit, "--config", config, "--format", "text")
			So(err, ShouldBeNil)
			So(out, ShouldStartWith, "(0.707+0i)|00⟩")
		})

		Convey("A missing config file should be a command error", func() {
			_, _, err := execute("run", circuit, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
			So(GetExitCode(err), ShouldEqual, ExitCommandError)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given circuits to validate", t, func() {
		Convey("A good circuit should be summarized", func() {
			circuit := writeFile(t, "bell.qasm", bell)

			out, _, err := execute("validate", circuit)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "ok: "+circuit+": 2 qubits, 2 gates (2 primitive)\n")
		})

		Convey("A broken circuit should fail with the line number", func() {
			circuit := writeFile(t, "broken.qasm", "OPENQASM 2.0;\nqreg q[1];\ncx q[0], q[1];\n")

			_, _, err := execute("validate", circuit)
			So(GetExitCode(err), ShouldEqual, ExitFailure)
			So(err.Error(), ShouldContainSubstring, "line 3")
		})

		Convey("A missing file should be a command error", func() {
			_, _, err := execute("validate", filepath.Join(t.TempDir(), "missing.qasm"))
			So(GetExitCode(err), ShouldEqual, ExitCommandError)
		})
	})
}

func TestGetExitCode(t *testing.T) {
	Convey("Given errors of different kinds", t, func() {
		So(GetExitCode(nil), ShouldEqual, ExitSuccess)
		So(GetExitCode(os.ErrNotExist), ShouldEqual, ExitFailure)
		So(GetExitCode(WrapExitError(ExitCommandError, "x", os.ErrNotExist)), ShouldEqual, ExitCommandError)
	})
}

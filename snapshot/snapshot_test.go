package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/gate"
)

func TestSnapshot(t *testing.T) {
	Convey("Given a state with complex amplitudes", t, func() {
		state, err := qsim.Run(qsim.GroundState(3),
			gate.H{Target: 0},
			gate.T{Target: 0},
			gate.H{Target: 2},
			gate.Toffoli{Controls: []int{0, 2}, Target: 1},
		)
		So(err, ShouldBeNil)

		Convey("Encode then Decode should give back the same state", func() {
			var buf bytes.Buffer
			So(Encode(&buf, state), ShouldBeNil)

			decoded, err := Decode(&buf)
			So(err, ShouldBeNil)
			So(decoded.NumQubits(), ShouldEqual, 3)
			So(decoded.Equal(state), ShouldBeTrue)
		})

		Convey("Save then Load should go through the file system", func() {
			path := filepath.Join(t.TempDir(), "state.msgpack")
			So(Save(path, state), ShouldBeNil)

			loaded, err := Load(path)
			So(err, ShouldBeNil)
			So(loaded.Equal(state), ShouldBeTrue)
		})
	})

	Convey("Given an empty state", t, func() {
		var buf bytes.Buffer
		So(Encode(&buf, qsim.NewState(4)), ShouldBeNil)

		decoded, err := Decode(&buf)
		So(err, ShouldBeNil)

		Convey("Its width should survive", func() {
			So(decoded.NumQubits(), ShouldEqual, 4)
			So(decoded.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given snapshots that cannot be used", t, func() {
		Convey("A newer version should be refused", func() {
			var buf bytes.Buffer
			So(msgpack.NewEncoder(&buf).Encode(&record{Version: 99, Qubits: 1}), ShouldBeNil)

			_, err := Decode(&buf)
			So(errors.Is(err, ErrVersion), ShouldBeTrue)
		})

		Convey("A term wider than the state should be refused", func() {
			var buf bytes.Buffer
			So(msgpack.NewEncoder(&buf).Encode(&record{
				Version: version,
				Qubits:  1,
				Terms:   []term{{Bits: "10", Re: 1}},
			}), ShouldBeNil)

			_, err := Decode(&buf)
			So(errors.Is(err, qsim.ErrWidthMismatch), ShouldBeTrue)
		})

		Convey("A negative width should be refused", func() {
			var buf bytes.Buffer
			So(msgpack.NewEncoder(&buf).Encode(&record{Version: version, Qubits: -3}), ShouldBeNil)

			state, err := Decode(&buf)
			So(state, ShouldBeNil)
			So(errors.Is(err, qsim.ErrWidthMismatch), ShouldBeTrue)
		})

		Convey("A missing file should be reported", func() {
			_, err := Load(filepath.Join(t.TempDir(), "missing"))
			So(err, ShouldNotBeNil)
		})
	})
}

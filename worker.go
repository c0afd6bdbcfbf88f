package qsim

import (
	"golang.org/x/sync/errgroup"

	"github.com/theapemachine/qsim/gate"
)

// worker transforms one contiguous chunk of kets under a single gate.
type worker struct {
	gate gate.Gate
	kets []Ket
	out  []Ket
}

func (w *worker) run() error {
	w.out = make([]Ket, 0, len(w.kets)*2)

	for _, ket := range w.kets {
		branches, err := applyToKet(w.gate, ket)
		if err != nil {
			return err
		}

		w.out = append(w.out, branches...)
	}

	return nil
}

/*
transform runs the per-ket transform over kets and returns the outputs in
input order, one batch per worker. The caller merges the batches serially in
that order, so the amplitudes are summed in exactly the order a single worker
would use and the parallel result is identical to the serial one.
*/
func (e *Engine) transform(g gate.Gate, kets []Ket, parallel bool) ([][]Ket, error) {
	if !parallel {
		w := &worker{gate: g, kets: kets}
		if err := w.run(); err != nil {
			return nil, err
		}

		return [][]Ket{w.out}, nil
	}

	workers := partition(g, kets, e.config.Workers)

	var group errgroup.Group
	group.SetLimit(e.config.Workers)

	for _, w := range workers {
		group.Go(w.run)
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	batches := make([][]Ket, len(workers))
	for i, w := range workers {
		batches[i] = w.out
	}

	return batches, nil
}

// partition splits kets into at most n contiguous, near-equal chunks.
func partition(g gate.Gate, kets []Ket, n int) []*worker {
	if n > len(kets) {
		n = len(kets)
	}
	if n < 1 {
		n = 1
	}

	size := (len(kets) + n - 1) / n
	workers := make([]*worker, 0, n)

	for start := 0; start < len(kets); start += size {
		end := min(start+size, len(kets))
		workers = append(workers, &worker{gate: g, kets: kets[start:end]})
	}

	return workers
}

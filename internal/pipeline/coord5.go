package pipeline

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

// coord5 is the terminal-bookkeeping coordinator: it
// emits a completion event for every wagon parking delivers and performs no
// further movement.
func (s *Simulation) coord5(proc *engine.Process) {
	for {
		w := engine.Get(proc, s.qTerminal)
		s.Metrics.Record(domain.CategoryWagon, "completed", string(w.ID), map[string]any{
			"terminal_time": w.TerminalTime,
			"track_id":      string(w.CurrentTrackID),
		})
	}
}

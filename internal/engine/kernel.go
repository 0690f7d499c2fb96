package engine

import "fmt"

// Kernel is the single-threaded cooperative scheduler: a monotonic virtual
// clock plus a deterministic wake-up queue. Exactly one Process runs at any
// instant; the kernel hands control to the next runnable process and waits
// for it to suspend (at Timeout/Get/Put) or finish before proceeding.
type Kernel struct {
	now      float64
	wakeups  *wakeupHeap
	ready    []*Process // FIFO queue of processes due to run at the current instant
	seq      uint64
	turnDone chan struct{}
	live     int
}

// NewKernel creates an idle kernel with the clock at 0.
func NewKernel() *Kernel {
	return &Kernel{
		wakeups:  newWakeupHeap(),
		turnDone: make(chan struct{}),
	}
}

// Now returns the current virtual clock value.
func (k *Kernel) Now() float64 { return k.now }

func (k *Kernel) nextSeq() uint64 {
	k.seq++
	return k.seq
}

// Spawn registers a new process. fn runs in its own goroutine but only ever
// executes between a resume and the next suspension point. It is queued
// behind every process already ready and gets its first turn when the run
// loop reaches it — within the current Run if one is in progress, otherwise
// on the next call to Run.
func (k *Kernel) Spawn(name string, fn func(p *Process)) *Process {
	p := &Process{name: name, kernel: k, resume: make(chan struct{})}
	k.live++
	go func() {
		<-p.resume
		fn(p)
		k.turnDone <- struct{}{}
	}()
	k.makeReady(p)
	return p
}

// makeReady appends p to the ready queue; p will receive its next turn once
// every process currently ahead of it in the queue has run and re-suspended.
func (k *Kernel) makeReady(p *Process) {
	k.ready = append(k.ready, p)
}

// yield is the low-level suspension primitive: it hands control back to the
// kernel loop and blocks the calling process's goroutine until the kernel
// resumes it. Callers must have already arranged how they will be woken
// (a wakeup heap entry or a waiter record on a Store).
func (k *Kernel) yield(p *Process) {
	k.turnDone <- struct{}{}
	<-p.resume
}

// runTurn gives p control and blocks until it suspends or finishes.
func (k *Kernel) runTurn(p *Process) {
	p.resume <- struct{}{}
	<-k.turnDone
}

// Run advances the simulation. If until is non-negative, the clock stops
// advancing past it: wakeups scheduled beyond until simply do not run in
// this call (they remain queued) — an abrupt stop leaves domain state
// observable but not necessarily completed.
func (k *Kernel) Run(until float64) {
	for {
		if len(k.ready) > 0 {
			p := k.ready[0]
			k.ready = k.ready[1:]
			k.runTurn(p)
			continue
		}
		w, ok := k.wakeups.peek()
		if !ok {
			return
		}
		if until >= 0 && w.time > until {
			return
		}
		if w.time < k.now {
			panic(fmt.Sprintf("engine: clock went backwards: %g < %g", w.time, k.now))
		}
		k.wakeups.popNext()
		k.now = w.time
		k.makeReady(w.process)
	}
}

// RunToCompletion advances the simulation until no process can make further
// progress (the ready queue and wake-up queue are both empty).
func (k *Kernel) RunToCompletion() {
	k.Run(-1)
}

// Idle reports whether the kernel has no runnable processes and no pending
// wakeups — i.e. Run would return immediately regardless of `until`.
func (k *Kernel) Idle() bool {
	return len(k.ready) == 0 && k.wakeups.Len() == 0
}

// PendingWakeups returns the number of scheduled-but-not-yet-run wakeups.
func (k *Kernel) PendingWakeups() int {
	return k.wakeups.Len()
}

package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	// ErrBusy is returned when a command arrives while a run is in progress.
	ErrBusy = errors.New("game: simulator is busy")
	// ErrStopped is returned once the controller has stopped serving.
	ErrStopped = errors.New("game: controller stopped")
)

// Status reports whether the controller accepts simulation commands.
type Status int32

const (
	Available Status = iota
	Busy
)

func (s Status) String() string {
	if s == Busy {
		return "busy"
	}
	return "available"
}

type commandKind int

const (
	cmdStep commandKind = iota
	cmdRun
	cmdReset
	cmdStopRun
)

type request struct {
	kind     commandKind
	maxSteps int
	reply    chan response
}

type response struct {
	res Result
	err error
}

// Result is the outcome of a controller command.
type Result struct {
	Snapshot Snapshot
	Steps    int  // steps advanced by the command
	Stopped  bool // run ended by StopRun
}

// Controller serializes access to a Simulator through a command channel.
// A multi-step run executes in the background; while it is in progress
// Step, Run and Reset are rejected with ErrBusy and StopRun ends the run
// at the next step boundary.
type Controller struct {
	sim      *Simulator
	requests chan request
	done     chan struct{}
	status   atomic.Int32

	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// NewController wraps sim. Call Serve to start processing commands.
func NewController(sim *Simulator) *Controller {
	return &Controller{
		sim:      sim,
		requests: make(chan request),
		done:     make(chan struct{}),
	}
}

// Status returns whether a run is in progress.
func (c *Controller) Status() Status {
	return Status(c.status.Load())
}

// Serve processes commands until ctx is cancelled. It waits for an active
// run to finish its current step before returning.
func (c *Controller) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer func() {
		c.stopActiveRun()
		wg.Wait()
		close(c.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-c.requests:
			c.handle(ctx, req, &wg)
		}
	}
}

func (c *Controller) handle(ctx context.Context, req request, wg *sync.WaitGroup) {
	if req.kind == cmdStopRun {
		c.stopActiveRun()
		req.reply <- response{}
		return
	}

	if !c.status.CompareAndSwap(int32(Available), int32(Busy)) {
		req.reply <- response{err: ErrBusy}
		return
	}

	switch req.kind {
	case cmdStep:
		c.sim.Step()
		c.status.Store(int32(Available))
		req.reply <- response{res: Result{Snapshot: c.sim.Snapshot(), Steps: 1}}
	case cmdReset:
		c.sim.Reset()
		c.status.Store(int32(Available))
		req.reply <- response{res: Result{Snapshot: c.sim.Snapshot()}}
	case cmdRun:
		runCtx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.cancelRun = cancel
		c.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			steps, err := c.sim.Run(runCtx, req.maxSteps)

			c.mu.Lock()
			c.cancelRun = nil
			c.mu.Unlock()
			cancel()

			res := Result{Snapshot: c.sim.Snapshot(), Steps: steps, Stopped: err != nil}
			c.status.Store(int32(Available))
			slog.Info("run_finished", "run_id", c.sim.RunID(), "steps", steps, "stopped", res.Stopped, "viable", res.Snapshot.Viable)
			req.reply <- response{res: res}
		}()
	}
}

func (c *Controller) stopActiveRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelRun != nil {
		c.cancelRun()
	}
}

func (c *Controller) send(ctx context.Context, kind commandKind, maxSteps int) (Result, error) {
	req := request{kind: kind, maxSteps: maxSteps, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.done:
		return Result{}, ErrStopped
	}

	r := <-req.reply
	return r.res, r.err
}

// Step advances one step and returns the resulting snapshot.
func (c *Controller) Step(ctx context.Context) (Result, error) {
	return c.send(ctx, cmdStep, 0)
}

// Run advances up to maxSteps steps, stopping early when the population is
// no longer viable or StopRun is called. It blocks until the run ends.
func (c *Controller) Run(ctx context.Context, maxSteps int) (Result, error) {
	return c.send(ctx, cmdRun, maxSteps)
}

// Reset repopulates the field.
func (c *Controller) Reset(ctx context.Context) (Result, error) {
	return c.send(ctx, cmdReset, 0)
}

// StopRun ends an in-progress run at the next step boundary. It is a
// no-op when no run is active.
func (c *Controller) StopRun(ctx context.Context) error {
	_, err := c.send(ctx, cmdStopRun, 0)
	return err
}

// Package signal cancels a remediation run cleanly on SIGINT or SIGTERM.
//
// An interrupted run must still finalize its session record, so the
// handler cancels the run context rather than exiting the process. This
// package imports only the standard library.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels a derived context when the process is interrupted.
// Callers run the remediation loop on Context() and can distinguish an
// operator interrupt from other cancellations via Interrupted().
type Handler struct {
	ctx           context.Context //nolint:containedctx // the handler owns this context's lifecycle
	cancel        context.CancelFunc
	interrupted   chan struct{}
	stopped       chan struct{}
	notify        chan os.Signal
	interruptOnce sync.Once
	stopOnce      sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. The first signal
// cancels the returned handler's context and closes Interrupted(); the
// listener keeps draining so repeated Ctrl+C never blocks delivery.
// Call Stop when the run is finished.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
		// Buffered so signal.Notify never drops a signal while the
		// listener is between receives.
		notify: make(chan os.Signal, 1),
	}

	signal.Notify(h.notify, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context canceled on interrupt or Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel closed once a signal has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Stop unregisters the signal listener and cancels the context. Safe to
// call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.notify)
		close(h.stopped)
		h.cancel()
	})
}

// interrupt records the first signal. Later signals are drained by the
// listener but have no further effect.
func (h *Handler) interrupt() {
	h.interruptOnce.Do(func() {
		h.cancel()
		close(h.interrupted)
	})
}

// listen drains the notify channel until Stop is called or the context
// ends for another reason.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stopped:
			return
		case <-h.notify:
			h.interrupt()
		}
	}
}

// Package shutdown runs prioritized cleanup hooks once, on signal or on demand.
package shutdown

import (
	"container/heap"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flanksource/commons/logger"
)

// Lower priorities run first: stop accepting traffic, then drain, then release state.
const (
	PriorityServer  = 0
	PriorityDefault = 100
	PriorityCaches  = 300
)

type hook struct {
	label    string
	priority int
	seq      int
	fn       func()
}

type hookHeap []*hook

func (h hookHeap) Len() int { return len(h) }
func (h hookHeap) Less(i, j int) bool {
	if h[i].priority == h[j].priority {
		return h[i].seq < h[j].seq
	}
	return h[i].priority < h[j].priority
}
func (h hookHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *hookHeap) Push(x any) { *h = append(*h, x.(*hook)) }

func (h *hookHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Hooks is an ordered set of cleanup functions. Hooks with equal priority run
// in registration order.
type Hooks struct {
	mu    sync.Mutex
	heap  hookHeap
	seq   int
	ran   bool
	force func()
}

func New() *Hooks {
	return &Hooks{force: func() { os.Exit(1) }}
}

func (h *Hooks) Add(label string, fn func()) {
	h.AddWithPriority(label, PriorityDefault, fn)
}

func (h *Hooks) AddWithPriority(label string, priority int, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	heap.Push(&h.heap, &hook{label: label, priority: priority, seq: h.seq, fn: fn})
}

// Run executes every registered hook once. A panicking hook is logged and
// does not stop the rest.
func (h *Hooks) Run() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ran {
		return
	}
	h.ran = true
	if h.heap.Len() == 0 {
		return
	}

	logger.Infof("running %d shutdown hooks", h.heap.Len())
	for h.heap.Len() > 0 {
		next := heap.Pop(&h.heap).(*hook)
		logger.Debugf("shutdown hook: %s (priority=%d)", next.label, next.priority)
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("panic in shutdown hook %s: %v", next.label, r)
				}
			}()
			next.fn()
		}()
	}
}

// Wait blocks until SIGINT/SIGTERM or ctx is done, then runs the hooks.
// A second signal while hooks run exits the process.
func (h *Hooks) Wait(ctx context.Context) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	h.wait(ctx, sigChan)
}

func (h *Hooks) wait(ctx context.Context, sigChan <-chan os.Signal) {
	done := make(chan struct{})
	defer close(done)

	select {
	case sig := <-sigChan:
		_, _ = fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down (press Ctrl+C again to force)\n", sig)
		go func() {
			select {
			case <-sigChan:
				select {
				case <-done:
					return
				default:
				}
				_, _ = fmt.Fprintf(os.Stderr, "\nForce exit\n")
				h.force()
			case <-done:
			}
		}()
	case <-ctx.Done():
	}
	h.Run()
}

var global = New()

func AddHook(label string, fn func()) {
	global.Add(label, fn)
}

func AddHookWithPriority(label string, priority int, fn func()) {
	global.AddWithPriority(label, priority, fn)
}

func Shutdown() {
	global.Run()
}

func WaitForSignal(ctx context.Context) {
	global.Wait(ctx)
}

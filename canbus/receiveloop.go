package canbus

import (
	"runtime"
	"sync"

	"vehiclecore/logging"
)

// QueueCapacity is the bounded frame queue capacity.
const QueueCapacity = 20

// Poller is the subset of the OBD-II poller's receive side the loop needs.
// Implemented by *obd.Poller.
type Poller interface {
	// Configured reports whether the poller is awaiting responses and,
	// if so, the bus and id range it listens on.
	Configured() (bus BusID, idLow, idHigh uint32, ok bool)
	Receive(bus BusID, f Frame) bool
}

// FrameHandler receives every frame arriving on its subscribed bus,
// independent of whatever the poller does with the same frame: both
// dispatches occur, they're not mutually exclusive.
type FrameHandler interface {
	IncomingFrame(bus BusID, f Frame)
}

// ReceiveLoop is the single consumer: one goroutine blocking on a
// bounded queue, routing each frame to the poller and to the per-bus
// handler. Grounded on the teacher's
// bus.Subscribe(handler) + bus.ConnectAndPublish() goroutine pair in
// engine_app.go, generalized from one bus to up to three.
type ReceiveLoop struct {
	queue   chan Frame
	poller  Poller
	handler FrameHandler

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewReceiveLoop(poller Poller, handler FrameHandler) *ReceiveLoop {
	return &ReceiveLoop{
		queue:   make(chan Frame, QueueCapacity),
		poller:  poller,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Enqueue is called by the CAN-hardware interrupt-to-queue bridge
// (external); it never blocks the caller for long since the queue is
// bounded and the consumer is the only reader.
func (r *ReceiveLoop) Enqueue(f Frame) {
	r.queue <- f
}

// Start launches the consumer goroutine. Safe to call once per instance.
func (r *ReceiveLoop) Start(logger logging.Logger) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.run(logger)
}

func (r *ReceiveLoop) run(logger logging.Logger) {
	// Pinning a goroutine to an OS thread is the closest portable
	// equivalent to a dedicated, priority-elevated receive thread;
	// Go has no portable CPU-affinity API.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)

	for f := range r.queue {
		logger.DebugCAN("rx", f.ID, f.Data[:], f.DLC)

		if r.poller != nil {
			if bus, low, high, ok := r.poller.Configured(); ok && f.Origin == bus && f.ID >= low && f.ID <= high {
				r.poller.Receive(f.Origin, f)
			}
		}

		if r.handler != nil {
			r.handler.IncomingFrame(f.Origin, f)
		}
	}
}

// Stop closes the queue and waits for the consumer goroutine to exit.
// Driver destruction must power off buses, deregister listeners,
// delete the queue, and kill the task in that order; Stop implements
// the "delete queue then the task naturally exits" half of that
// sequence.
func (r *ReceiveLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.queue)
	<-r.done
}

package canbus

import (
	"sync"
	"testing"
	"time"

	"vehiclecore/logging"
)

type fakePoller struct {
	mu       sync.Mutex
	bus      BusID
	low, hi  uint32
	ok       bool
	received []Frame
}

func (p *fakePoller) Configured() (BusID, uint32, uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bus, p.low, p.hi, p.ok
}

func (p *fakePoller) Receive(bus BusID, f Frame) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.received = append(p.received, f)
	return true
}

type fakeHandler struct {
	mu       sync.Mutex
	received []Frame
}

func (h *fakeHandler) IncomingFrame(bus BusID, f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, f)
}

func TestReceiveLoop_DispatchesToBothPollerAndHandler(t *testing.T) {
	poller := &fakePoller{bus: Bus1, low: 0x7E0, hi: 0x7EF, ok: true}
	handler := &fakeHandler{}

	loop := NewReceiveLoop(poller, handler)
	loop.Start(logging.Nop{})

	loop.Enqueue(NewFrame(Bus1, 0x7E8, []byte{1, 2, 3}))
	loop.Enqueue(NewFrame(Bus1, 0x123, []byte{4, 5, 6})) // out of poller range

	// Give the consumer goroutine a moment to drain.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		handler.mu.Lock()
		n := len(handler.received)
		handler.mu.Unlock()
		if n == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	loop.Stop()

	poller.mu.Lock()
	if len(poller.received) != 1 || poller.received[0].ID != 0x7E8 {
		t.Errorf("expected poller to receive exactly the in-range frame, got %+v", poller.received)
	}
	poller.mu.Unlock()

	handler.mu.Lock()
	if len(handler.received) != 2 {
		t.Errorf("expected handler to receive both frames, got %d", len(handler.received))
	}
	handler.mu.Unlock()
}

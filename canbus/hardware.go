package canbus

import (
	"github.com/brutella/can"
	"github.com/pkg/errors"

	"vehiclecore/logging"
)

// HardwareBus binds one BusID to a real SocketCAN interface via
// brutella/can, grounded on the teacher's can.NewBusForInterfaceWithName
// + bus.Subscribe(handler) + bus.ConnectAndPublish() sequence in
// engine_app.go.
type HardwareBus struct {
	bus    *can.Bus
	origin BusID
	log    logging.Logger
}

// OpenHardwareBus opens device (e.g. "can0") as origin.
func OpenHardwareBus(device string, origin BusID, logger logging.Logger) (*HardwareBus, error) {
	bus, err := can.NewBusForInterfaceWithName(device)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open CAN device %s", device)
	}
	return &HardwareBus{bus: bus, origin: origin, log: logger}, nil
}

// Send implements obd.Sender.
func (h *HardwareBus) Send(f Frame) error {
	return h.bus.Publish(can.Frame{
		ID:     f.ID,
		Length: f.DLC,
		Flags:  uint8(f.Flags),
		Data:   f.Data,
	})
}

type frameBridge struct {
	loop   *ReceiveLoop
	origin BusID
}

func (b *frameBridge) Handle(frame can.Frame) {
	b.loop.Enqueue(Frame{
		Origin: b.origin,
		ID:     frame.ID,
		DLC:    frame.Length,
		Data:   frame.Data,
		Flags:  uint32(frame.Flags),
	})
}

// Run subscribes loop to this bus's frames and blocks reading them,
// matching the teacher's `go bus.ConnectAndPublish()` pattern; callers
// run it in its own goroutine.
func (h *HardwareBus) Run(loop *ReceiveLoop) error {
	h.bus.Subscribe(&frameBridge{loop: loop, origin: h.origin})
	return h.bus.ConnectAndPublish()
}

// Close disconnects the underlying bus.
func (h *HardwareBus) Close() error {
	return h.bus.Disconnect()
}

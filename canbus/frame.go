// Package canbus defines the CAN frame value type and the single-consumer
// receive loop that demultiplexes incoming frames to the OBD-II poller and
// per-bus driver handlers.
package canbus

// BusID identifies one of up to three CAN buses a driver instance owns.
type BusID int

const (
	Bus1 BusID = iota
	Bus2
	Bus3
)

func (b BusID) String() string {
	switch b {
	case Bus1:
		return "can1"
	case Bus2:
		return "can2"
	case Bus3:
		return "can3"
	default:
		return "can?"
	}
}

// Frame is a value-type CAN frame, copied into the receive queue.
// Grounded on the teacher's packFrame/can.Frame shape (8-byte payload,
// 11- or 29-bit id, origin bus, flags).
type Frame struct {
	Origin BusID
	ID     uint32
	DLC    uint8
	Data   [8]byte
	Flags  uint32
}

// NewFrame builds a Frame from a byte slice, truncating/zero-padding to 8
// bytes the way the teacher's packFrame helper does for outbound frames.
func NewFrame(origin BusID, id uint32, data []byte) Frame {
	var buf [8]byte
	n := copy(buf[:], data)
	return Frame{Origin: origin, ID: id, DLC: uint8(n), Data: buf}
}

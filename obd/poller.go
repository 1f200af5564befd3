// Package obd implements the OBD-II / UDS diagnostic poller: a
// state-driven scheduler that sends requests on a 1 Hz cadence and
// reassembles ISO-TP 15765-2 single- and multi-frame responses.
package obd

import (
	"vehiclecore/canbus"
	"vehiclecore/logging"
)

// NStates is the number of driver-selectable poll states (e.g. off,
// park, drive, charge in a typical vehicle driver), matching the
// teacher corpus's fixed small state count rather than an open-ended one.
const NStates = 4

// Kind selects the request/response frame shape for a poll entry.
type Kind int

const (
	// KindCurrent covers current/freeze/session data: single-frame,
	// 8-bit PID requests.
	KindCurrent Kind = iota
	// KindVehicleInfo covers vehicle-info/group data: same request
	// shape as KindCurrent, but the response is expected to span
	// multiple ISO-TP frames.
	KindVehicleInfo
	// KindExtended is a 16-bit-PID request under service 0x22.
	KindExtended
)

// Entry describes one polled PID: which module to address, which PID,
// and how often to poll it in each poll state.
type Entry struct {
	Kind       Kind
	Type       byte // service/mode id, e.g. 0x01, 0x22
	TxModuleID uint32
	RxModuleID uint32 // 0 means broadcast addressing
	PID        uint16
	PollTime   [NStates]int
}

func (e Entry) isSentinel() bool { return e.TxModuleID == 0 }

// pidMatchByte returns the byte a response header must echo back to be
// accepted: for a 16-bit-PID request only the high PID byte appears in
// the fixed header position.
func (e Entry) pidMatchByte() byte {
	if e.Kind == KindExtended {
		return byte(e.PID >> 8)
	}
	return byte(e.PID)
}

// Sender transmits a single CAN frame, fire-and-forget: the poller
// never blocks waiting on the transport.
type Sender interface {
	Send(frame canbus.Frame) error
}

// ReplyReceiver is invoked once per accepted response frame.
type ReplyReceiver interface {
	IncomingPollReply(bus canbus.BusID, pollType byte, pid uint16, payload []byte, length int, mlRemain int)
}

const (
	broadcastTxID  uint32 = 0x7DF
	broadcastLow   uint32 = 0x7E8
	broadcastHigh  uint32 = 0x7EF
	flowControlSTm        = 0x19 // 25ms
)

// Poller is the send/receive state machine. It implements canbus.Poller
// so a canbus.ReceiveLoop can dispatch matching frames to it directly.
type Poller struct {
	log    logging.Logger
	bus    canbus.BusID
	sender Sender
	driver ReplyReceiver

	entries []Entry
	state   int
	tick    int
	cursor  int

	// last-sent transaction context
	active    bool
	lastKind  Kind
	lastType  byte
	lastPID   uint16
	lastTxID  uint32
	rxLow     uint32
	rxHigh    uint32
	broadcast bool

	// multi-frame reassembly context
	remaining int
	offset    int
	frameNum  int
}

func NewPoller(logger logging.Logger, bus canbus.BusID, sender Sender, driver ReplyReceiver) *Poller {
	return &Poller{
		log:    logger,
		bus:    bus,
		sender: sender,
		driver: driver,
	}
}

// Install replaces the poll list and resets the cursor/tick counter, as
// a fresh list has no established sweep position.
func (p *Poller) Install(entries []Entry) {
	p.entries = append([]Entry{}, entries...)
	p.entries = append(p.entries, Entry{}) // sentinel: TxModuleID == 0
	p.cursor = 0
	p.tick = 0
}

// SetState transitions to poll state s, resetting the cursor to the
// list head and zeroing the tick counter.
func (p *Poller) SetState(s int) {
	p.state = s
	p.cursor = 0
	p.tick = 0
}

func eligible(entry Entry, state, tick int) bool {
	period := entry.PollTime[state]
	return period > 0 && tick%period == 0
}

// Tick runs the send side once per 1 Hz heartbeat. It transmits at most
// one PID request, resuming from the saved cursor and wrapping to the
// list head (incrementing the tick counter mod 3600) when the sentinel
// is reached.
func (p *Poller) Tick() {
	if len(p.entries) == 0 {
		return
	}

	for sweeps := 0; sweeps <= len(p.entries); sweeps++ {
		entry := p.entries[p.cursor]
		if entry.isSentinel() {
			p.cursor = 0
			p.tick = (p.tick + 1) % 3600
			continue
		}
		if eligible(entry, p.state, p.tick) {
			p.send(entry)
			p.cursor++
			return
		}
		p.cursor++
	}
}

func (p *Poller) send(entry Entry) {
	var data [8]byte
	switch entry.Kind {
	case KindCurrent, KindVehicleInfo:
		data = [8]byte{0x02, entry.Type, byte(entry.PID), 0, 0, 0, 0, 0}
	case KindExtended:
		data = [8]byte{0x03, 0x22, byte(entry.PID >> 8), byte(entry.PID), 0, 0, 0, 0}
	}

	var txID uint32
	broadcast := entry.RxModuleID == 0
	if broadcast {
		txID = broadcastTxID
		p.rxLow, p.rxHigh = broadcastLow, broadcastHigh
	} else {
		txID = entry.TxModuleID
		p.rxLow, p.rxHigh = entry.RxModuleID, entry.RxModuleID
	}

	p.active = true
	p.lastKind = entry.Kind
	p.lastType = entry.Type
	p.lastPID = entry.PID
	p.lastTxID = entry.TxModuleID
	p.broadcast = broadcast
	p.remaining = 0
	p.offset = 0
	p.frameNum = 0

	frame := canbus.NewFrame(p.bus, txID, data[:])
	if err := p.sender.Send(frame); err != nil {
		p.log.Error("obd: failed to send poll request: %v", err)
	}
}

// Configured implements canbus.Poller: the receive loop consults this
// to decide whether a frame should be routed here at all. ok is true
// once a request has been sent, and the id range is that of the last
// request.
func (p *Poller) Configured() (bus canbus.BusID, idLow, idHigh uint32, ok bool) {
	return p.bus, p.rxLow, p.rxHigh, p.active
}

// Receive implements canbus.Poller, the receive side of the state
// machine. It returns true iff the frame was accepted and delivered to
// the driver.
func (p *Poller) Receive(bus canbus.BusID, f canbus.Frame) bool {
	data := f.Data

	if p.remaining > 0 {
		return p.receiveConsecutive(bus, data)
	}

	switch {
	case p.lastKind == KindExtended && data[1] == 0x62 && (uint16(data[2])<<8|uint16(data[3])) == p.lastPID:
		// extended single-frame response, entirely within one frame
		payload := append([]byte{}, data[4:8]...)
		p.driver.IncomingPollReply(bus, p.lastType, p.lastPID, payload, len(payload), 0)
		return true

	case p.lastKind != KindExtended && data[1] == 0x40+p.lastType && data[2] == p.lastPID8(): // single-frame
		payload := append([]byte{}, data[3:8]...)
		p.driver.IncomingPollReply(bus, p.lastType, p.lastPID, payload, len(payload), 0)
		return true

	case data[0]>>4 == 1: // ISO-TP first frame
		if data[2] != 0x40+p.lastType || data[3] != p.entryPidMatchByte() {
			return false
		}
		length := (int(data[0]&0x0F) << 8) | int(data[1])
		p.remaining = length - 2 - 4
		p.offset = 0
		p.frameNum = 0

		var fcTxID uint32
		if p.broadcast {
			fcTxID = f.ID - 8
		} else {
			fcTxID = p.lastTxID
		}
		fc := canbus.NewFrame(bus, fcTxID, []byte{0x30, 0x00, flowControlSTm, 0, 0, 0, 0, 0})
		if err := p.sender.Send(fc); err != nil {
			p.log.Error("obd: failed to send flow-control frame: %v", err)
		}

		payload := append([]byte{}, data[4:8]...)
		p.driver.IncomingPollReply(bus, p.lastType, p.lastPID, payload, len(payload), p.remaining)
		return true

	default:
		return false
	}
}

// lastPID8 is the single-frame PID match byte: the low 8 bits for any
// entry kind, since single-frame responses only ever carry an 8-bit PID.
func (p *Poller) lastPID8() byte { return byte(p.lastPID) }

func (p *Poller) entryPidMatchByte() byte {
	if p.lastKind == KindExtended {
		return byte(p.lastPID >> 8)
	}
	return byte(p.lastPID)
}

func (p *Poller) receiveConsecutive(bus canbus.BusID, data [8]byte) bool {
	if data[0]>>4 != 2 {
		return false
	}
	n := 7
	if p.remaining < n {
		n = p.remaining
	}
	payload := append([]byte{}, data[1:1+n]...)
	p.remaining -= n
	p.offset += n
	p.frameNum++
	p.driver.IncomingPollReply(bus, p.lastType, p.lastPID, payload, n, p.remaining)
	return true
}

var _ canbus.Poller = (*Poller)(nil)

package command

import (
	"io"

	"vehiclecore/canbus"
)

// Driver is the polymorphic contract every vehicle model implements:
// per-bus CAN reception, OBD-II poll replies, the generic command
// surface, and the notification hooks the metric reactor invokes.
type Driver interface {
	// IncomingFrameCan1/2/3 receive every frame arriving on the
	// correspondingly numbered bus, independent of the OBD-II poller.
	IncomingFrameCan1(f canbus.Frame)
	IncomingFrameCan2(f canbus.Frame)
	IncomingFrameCan3(f canbus.Frame)

	// IncomingPollReply delivers one accepted OBD-II poll response.
	IncomingPollReply(bus canbus.BusID, pollType byte, pid uint16, payload []byte, length int, mlRemain int)

	// CommandWakeup requests the vehicle wake from sleep.
	CommandWakeup() Result
	// CommandHomelink activates homelink button idx (zero-based) for
	// durationMs milliseconds.
	CommandHomelink(idx int, durationMs int) Result
	CommandLock(pin string) Result
	CommandUnlock(pin string) Result
	CommandValet(pin string) Result
	CommandUnvalet(pin string) Result
	CommandChargeMode(mode ChargeMode) Result
	CommandChargeStart() Result
	CommandChargeStop() Result
	CommandChargeCurrent(amps int) Result
	CommandChargeCooldown() Result
	// CommandStat writes the status summary to w.
	CommandStat(verbosity int, w io.Writer) Result

	// NotifiedVehicleOn/Off etc. are invoked by the metric reactor so
	// the driver can react to its own state changes.
	NotifiedVehicleOn()
	NotifiedVehicleOff()
	NotifiedVehicleAwake()
	NotifiedVehicleAsleep()
	NotifiedVehicleChargeStart()
	NotifiedVehicleChargeStop()
	NotifiedVehicleChargePrepare()
	NotifiedVehicleChargeFinish()
	NotifiedVehicleChargePilotOn()
	NotifiedVehicleChargePilotOff()
	NotifiedVehicleCharge12vStart()
	NotifiedVehicleCharge12vStop()
	NotifiedVehicleLocked()
	NotifiedVehicleUnlocked()
	NotifiedVehicleValetOn()
	NotifiedVehicleValetOff()
	NotifiedVehicleHeadlightsOn()
	NotifiedVehicleHeadlightsOff()
	NotifiedVehicleAlarmOn()
	NotifiedVehicleAlarmOff()
	NotifiedVehicleChargeMode(mode string)
	NotifiedVehicleChargeState(state string)

	// NotifyConfigChanges propagates a config reload into the driver.
	NotifyConfigChanges()
}

// DefaultDriver implements Driver with NotImplemented/no-op bodies,
// embedded by concrete drivers so they only override what they support
// (mirrors the teacher's ECUInterface + concrete-override pattern).
type DefaultDriver struct{}

func (DefaultDriver) IncomingFrameCan1(f canbus.Frame) {}
func (DefaultDriver) IncomingFrameCan2(f canbus.Frame) {}
func (DefaultDriver) IncomingFrameCan3(f canbus.Frame) {}

func (DefaultDriver) IncomingPollReply(bus canbus.BusID, pollType byte, pid uint16, payload []byte, length int, mlRemain int) {
}

func (DefaultDriver) CommandWakeup() Result                  { return NotImplemented }
func (DefaultDriver) CommandHomelink(int, int) Result        { return NotImplemented }
func (DefaultDriver) CommandLock(string) Result              { return NotImplemented }
func (DefaultDriver) CommandUnlock(string) Result            { return NotImplemented }
func (DefaultDriver) CommandValet(string) Result             { return NotImplemented }
func (DefaultDriver) CommandUnvalet(string) Result           { return NotImplemented }
func (DefaultDriver) CommandChargeMode(ChargeMode) Result    { return NotImplemented }
func (DefaultDriver) CommandChargeStart() Result             { return NotImplemented }
func (DefaultDriver) CommandChargeStop() Result              { return NotImplemented }
func (DefaultDriver) CommandChargeCurrent(int) Result        { return NotImplemented }
func (DefaultDriver) CommandChargeCooldown() Result          { return NotImplemented }
func (DefaultDriver) CommandStat(int, io.Writer) Result      { return NotImplemented }

func (DefaultDriver) NotifiedVehicleOn()               {}
func (DefaultDriver) NotifiedVehicleOff()              {}
func (DefaultDriver) NotifiedVehicleAwake()            {}
func (DefaultDriver) NotifiedVehicleAsleep()           {}
func (DefaultDriver) NotifiedVehicleChargeStart()      {}
func (DefaultDriver) NotifiedVehicleChargeStop()       {}
func (DefaultDriver) NotifiedVehicleChargePrepare()    {}
func (DefaultDriver) NotifiedVehicleChargeFinish()     {}
func (DefaultDriver) NotifiedVehicleChargePilotOn()    {}
func (DefaultDriver) NotifiedVehicleChargePilotOff()   {}
func (DefaultDriver) NotifiedVehicleCharge12vStart()   {}
func (DefaultDriver) NotifiedVehicleCharge12vStop()    {}
func (DefaultDriver) NotifiedVehicleLocked()           {}
func (DefaultDriver) NotifiedVehicleUnlocked()         {}
func (DefaultDriver) NotifiedVehicleValetOn()          {}
func (DefaultDriver) NotifiedVehicleValetOff()         {}
func (DefaultDriver) NotifiedVehicleHeadlightsOn()     {}
func (DefaultDriver) NotifiedVehicleHeadlightsOff()    {}
func (DefaultDriver) NotifiedVehicleAlarmOn()          {}
func (DefaultDriver) NotifiedVehicleAlarmOff()         {}
func (DefaultDriver) NotifiedVehicleChargeMode(string)  {}
func (DefaultDriver) NotifiedVehicleChargeState(string) {}

func (DefaultDriver) NotifyConfigChanges() {}

var _ Driver = DefaultDriver{}

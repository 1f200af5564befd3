// Package metrics defines the "standard metrics" collaborator and the
// set of metric keys the vehicle core reads and writes.
package metrics

// Key names a single standard metric. Sections mirror the dotted
// namespace OVMS-style metric stores use.
type Key string

const (
	KeyVehicleType Key = "v.type"

	KeyEnvOn          Key = "v.env.on"
	KeyEnvAwake       Key = "v.env.awake"
	KeyEnvLocked      Key = "v.env.locked"
	KeyEnvValet       Key = "v.env.valet"
	KeyEnvHeadlights  Key = "v.env.headlights"
	KeyEnvAlarm       Key = "v.env.alarm"
	KeyEnvCharging12v Key = "v.env.charging12v"

	KeyDoorChargePort Key = "v.door.chargeport"
	KeyDoorHood       Key = "v.door.hood"
	KeyDoorTrunk      Key = "v.door.trunk"

	KeyChargeInProgress Key = "v.charge.inprogress"
	KeyChargePilot      Key = "v.charge.pilot"
	KeyChargeMode       Key = "v.charge.mode"
	KeyChargeState      Key = "v.charge.state"
	KeyChargeSubstate   Key = "v.charge.substate"
	KeyChargeTime       Key = "v.charge.time"
	KeyChargeVoltage    Key = "v.charge.voltage"
	KeyChargeCurrent    Key = "v.charge.current"
	KeyChargeDurationFull  Key = "v.charge.duration.full"
	KeyChargeDurationRange Key = "v.charge.duration.range"
	KeyChargeDurationSOC   Key = "v.charge.duration.soc"

	KeyBat12vVoltage    Key = "v.bat.12v.voltage"
	KeyBat12vVoltageRef Key = "v.bat.12v.voltage_ref"
	KeyBat12vAlert      Key = "v.bat.12v.alert"

	KeyBatSOC  Key = "v.bat.soc"
	KeyBatSOH  Key = "v.bat.soh"
	KeyBatCAC  Key = "v.bat.cac"
	KeyBatPower       Key = "v.bat.power"
	KeyBatConsumption Key = "v.bat.consumption"

	KeyPosSpeed Key = "v.pos.speed"
	KeyPosOdometer Key = "v.pos.odometer"

	KeyRangeIdeal Key = "v.bat.range.ideal"
	KeyRangeEst   Key = "v.bat.range.est"

	KeyDriveTime Key = "v.env.drivetime"
	KeyParkTime  Key = "v.env.parktime"
)

// Package reactor implements the metric-change reactor: a table-driven
// dispatcher turning individual metric transitions into semantic
// events, driver notification hooks, and human-readable notifications.
package reactor

import (
	"bytes"

	"vehiclecore/command"
	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/metrics"
	"vehiclecore/stat"
)

// DriverProvider returns the currently active driver, or nil if none.
// The reactor looks this up on every reaction rather than caching it,
// since the active driver can change between subscription setup and a
// later metric transition.
type DriverProvider interface {
	Active() (command.Driver, string)
}

// Debouncer is the subset of ticker.Engine the reactor drives for the
// charge-state notification debounce.
type Debouncer interface {
	ArmChargeStateDebounce(state string, delaySeconds int)
	OnChargingTwelveVStart()
}

// Reactor wires a metrics.Store to events, driver notification hooks,
// and the notify.Service via a table of metric transitions.
type Reactor struct {
	store     metrics.Store
	bus       events.Bus
	cfg       config.Store
	notifier  notifier
	drivers   DriverProvider
	debouncer Debouncer
}

type notifier interface {
	Notify(channel, subtype, body string)
}

func New(store metrics.Store, bus events.Bus, cfg config.Store, n notifier, drivers DriverProvider, debouncer Debouncer) *Reactor {
	r := &Reactor{store: store, bus: bus, cfg: cfg, notifier: n, drivers: drivers, debouncer: debouncer}
	r.subscribeAll()
	return r
}

func (r *Reactor) driver() command.Driver {
	if r.drivers == nil {
		return nil
	}
	d, _ := r.drivers.Active()
	return d
}

func (r *Reactor) renderStat() string {
	var buf bytes.Buffer
	_ = stat.Format(&buf, r.store, stat.UnitsFromConfig(r.cfg))
	return buf.String()
}

func (r *Reactor) subscribeAll() {
	r.store.Subscribe(metrics.KeyEnvOn, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.on", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleOn()
			}
		} else {
			r.bus.Publish("vehicle.off", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleOff()
			}
		}
	})

	r.store.Subscribe(metrics.KeyEnvAwake, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.awake", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleAwake()
			}
		} else {
			r.bus.Publish("vehicle.asleep", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleAsleep()
			}
		}
	})

	r.store.Subscribe(metrics.KeyChargeInProgress, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.charge.start", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargeStart()
			}
		} else {
			r.bus.Publish("vehicle.charge.stop", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargeStop()
			}
		}
	})

	r.store.Subscribe(metrics.KeyDoorChargePort, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.charge.prepare", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargePrepare()
			}
		} else {
			r.bus.Publish("vehicle.charge.finish", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargeFinish()
			}
		}
	})

	r.store.Subscribe(metrics.KeyChargePilot, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.charge.pilot.on", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargePilotOn()
			}
		} else {
			r.bus.Publish("vehicle.charge.pilot.off", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleChargePilotOff()
			}
		}
	})

	r.store.Subscribe(metrics.KeyEnvCharging12v, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.charge.12v.start", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleCharge12vStart()
			}
			if r.debouncer != nil {
				r.debouncer.OnChargingTwelveVStart()
			}
		} else {
			r.bus.Publish("vehicle.charge.12v.stop", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleCharge12vStop()
			}
		}
	})

	r.store.Subscribe(metrics.KeyEnvLocked, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.locked", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleLocked()
			}
		} else {
			r.bus.Publish("vehicle.unlocked", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleUnlocked()
			}
		}
	})

	r.store.Subscribe(metrics.KeyEnvValet, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.valet.on", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleValetOn()
			}
			r.notifier.Notify("info", "valet.enabled", "Valet mode enabled")
		} else {
			r.bus.Publish("vehicle.valet.off", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleValetOff()
			}
			r.notifier.Notify("info", "valet.disabled", "Valet mode disabled")
		}
	})

	r.store.Subscribe(metrics.KeyEnvHeadlights, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.headlights.on", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleHeadlightsOn()
			}
		} else {
			r.bus.Publish("vehicle.headlights.off", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleHeadlightsOff()
			}
		}
	})

	r.store.Subscribe(metrics.KeyDoorHood, func(v metrics.Value) {
		if v.Bool {
			r.alertIfValet("valet.hood", "Hood opened while in valet mode")
		}
	})

	r.store.Subscribe(metrics.KeyDoorTrunk, func(v metrics.Value) {
		if v.Bool {
			r.alertIfValet("valet.trunk", "Trunk opened while in valet mode")
		}
	})

	r.store.Subscribe(metrics.KeyEnvAlarm, func(v metrics.Value) {
		if v.Bool {
			r.bus.Publish("vehicle.alarm.on", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleAlarmOn()
			}
			r.notifier.Notify("alert", "alarm.sounding", "Vehicle alarm is sounding")
		} else {
			r.bus.Publish("vehicle.alarm.off", "")
			if d := r.driver(); d != nil {
				d.NotifiedVehicleAlarmOff()
			}
			r.notifier.Notify("info", "alarm.stopped", "Vehicle alarm has stopped")
		}
	})

	r.store.Subscribe(metrics.KeyChargeMode, func(v metrics.Value) {
		r.bus.Publish("vehicle.charge.mode", v.String)
		if d := r.driver(); d != nil {
			d.NotifiedVehicleChargeMode(v.String)
		}
	})

	r.store.Subscribe(metrics.KeyChargeState, func(v metrics.Value) {
		r.bus.Publish("vehicle.charge.state", v.String)
		if d := r.driver(); d != nil {
			d.NotifiedVehicleChargeState(v.String)
		}
		delay := r.notifyChargeStateDelay(v.String)
		if r.debouncer != nil {
			r.debouncer.ArmChargeStateDebounce(v.String, delay)
		} else {
			r.NotifyChargeState(v.String)
		}
	})
}

func (r *Reactor) alertIfValet(subtype, body string) {
	valet, _ := r.store.Get(metrics.KeyEnvValet)
	if valet.Bool {
		r.notifier.Notify("alert", subtype, body)
	}
}

// notifyChargeStateDelay reads the per-state debounce delay from
// config, defaulting to 0 (immediate).
func (r *Reactor) notifyChargeStateDelay(state string) int {
	if r.cfg == nil {
		return 0
	}
	raw := r.cfg.GetDefault("vehicle", "charge.notify_delay."+state, "0")
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// NotifyChargeState implements ticker.ChargeStateNotifier: the
// charge-state notifier fired by the debouncer or immediately.
func (r *Reactor) NotifyChargeState(state string) {
	body := r.renderStat()
	switch state {
	case "done":
		r.notifier.Notify("info", "charge.done", body)
		r.resetChargeDurations()
	case "stopped":
		channel := "alert"
		substate, _ := r.store.Get(metrics.KeyChargeSubstate)
		if substate.String == "scheduledstop" {
			channel = "info"
		}
		r.notifier.Notify(channel, "charge.stopped", body)
		r.resetChargeDurations()
	case "charging", "topoff":
		r.notifier.Notify("info", "charge.started", body)
	case "heating":
		r.notifier.Notify("info", "charge.heating.started", body)
	}
}

func (r *Reactor) resetChargeDurations() {
	r.store.SetInt(metrics.KeyChargeDurationFull, 0)
	r.store.SetInt(metrics.KeyChargeDurationRange, 0)
	r.store.SetInt(metrics.KeyChargeDurationSOC, 0)
}

var _ tickerChargeStateNotifier = (*Reactor)(nil)

// tickerChargeStateNotifier mirrors ticker.ChargeStateNotifier so this
// package does not import ticker (vehicle.Core wires the two together
// directly).
type tickerChargeStateNotifier interface {
	NotifyChargeState(state string)
}

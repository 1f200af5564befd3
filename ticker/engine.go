// Package ticker implements the multi-rate tick engine and derived-state
// machine: drive/park/charge time accumulators, efficiency smoothing,
// and the 12 V battery monitor.
package ticker

import (
	"strconv"

	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/metrics"
)

// defaultAlertThreshold is the 12V alert threshold in volts, tunable via
// config key (vehicle, 12v.alert).
const defaultAlertThreshold = 1.6

// hysteresisFraction is applied to the alert threshold to compute the
// clear threshold.
const hysteresisFraction = 0.6

// twelveVSeedOnChargeStart is the minimum m_12v_ticker value set when
// 12V charging starts.
const twelveVSeedOnChargeStart = 30

// twelveVTickerMax is the saturation point of the 12V ticker counter:
// 15 minutes of countdown at 1 per tick once 12V charging stops.
const twelveVTickerMax = 900

// Poller is the subset of obd.Poller the engine drives each tick.
type Poller interface {
	Tick()
}

// Notifier is the out-of-scope notification collaborator used for the
// 12V critical alert.
type Notifier interface {
	Notify(channel, subtype, body string)
}

// ChargeStateNotifier is invoked by the debouncer when it expires.
type ChargeStateNotifier interface {
	NotifyChargeState(state string)
}

// Engine is the tick engine: a 1 Hz heartbeat fanning out to decadal
// tickers, accumulators, the efficiency smoother, and the 12V monitor.
type Engine struct {
	store    metrics.Store
	cfg      config.Store
	bus      events.Bus
	poller   Poller // nil if no poll list installed
	notifier Notifier
	chargeStateNotifier ChargeStateNotifier

	tick uint64 // master tick T

	hooks1    []func(uint64)
	hooks10   []func(uint64)
	hooks60   []func(uint64)
	hooks300  []func(uint64)
	hooks600  []func(uint64)
	hooks3600 []func(uint64)

	drivetime uint64
	parktime  uint64
	chargetime uint64

	smoothedConsumption float64

	// EfficiencyClamp bounds the per-tick power/speed delta applied to
	// the smoother, a supplement from the original C++ source's
	// odometer-delta sanity clamp.
	EfficiencyClamp float64

	twelveVTicker   int
	twelveVRef      float64
	twelveVAlert    bool

	chargeStateDebounce int
	chargeStateArmed    bool
	lastChargeState     string
}

func NewEngine(store metrics.Store, cfg config.Store, bus events.Bus, notifier Notifier, chargeStateNotifier ChargeStateNotifier) *Engine {
	return &Engine{
		store:               store,
		cfg:                 cfg,
		bus:                 bus,
		notifier:            notifier,
		chargeStateNotifier: chargeStateNotifier,
		EfficiencyClamp:     2000,
	}
}

// SetChargeStateNotifier wires the charge-state notifier after
// construction, breaking the construction cycle between Engine (which
// the reactor needs as a Debouncer) and the reactor (which Engine needs
// as a ChargeStateNotifier).
func (e *Engine) SetChargeStateNotifier(n ChargeStateNotifier) { e.chargeStateNotifier = n }

// InstallPoller attaches the OBD-II poller driven by this engine's 1 Hz
// heartbeat. A nil poller means no poll list is installed.
func (e *Engine) InstallPoller(p Poller) { e.poller = p }

// OnTick1/10/60/300/600/3600 register additional hooks for the
// corresponding decadal rate. Hooks run in registration order.
func (e *Engine) OnTick1(fn func(uint64))    { e.hooks1 = append(e.hooks1, fn) }
func (e *Engine) OnTick10(fn func(uint64))   { e.hooks10 = append(e.hooks10, fn) }
func (e *Engine) OnTick60(fn func(uint64))   { e.hooks60 = append(e.hooks60, fn) }
func (e *Engine) OnTick300(fn func(uint64))  { e.hooks300 = append(e.hooks300, fn) }
func (e *Engine) OnTick600(fn func(uint64))  { e.hooks600 = append(e.hooks600, fn) }
func (e *Engine) OnTick3600(fn func(uint64)) { e.hooks3600 = append(e.hooks3600, fn) }

// ArmChargeStateDebounce arms the charge-state notification debouncer
// with the given delay; a delay of 0 fires immediately.
func (e *Engine) ArmChargeStateDebounce(state string, delaySeconds int) {
	e.lastChargeState = state
	if delaySeconds <= 0 {
		e.fireChargeStateNotifier(state)
		return
	}
	e.chargeStateDebounce = delaySeconds
	e.chargeStateArmed = true
}

func (e *Engine) fireChargeStateNotifier(state string) {
	if e.chargeStateNotifier != nil {
		e.chargeStateNotifier.NotifyChargeState(state)
	}
}

// Tick runs one 1 Hz heartbeat: advance the master counter, drive the
// poller and decadal hooks, then update the accumulators, efficiency
// smoother, and 12V monitor.
func (e *Engine) Tick() {
	e.tick++
	T := e.tick

	if e.poller != nil {
		e.poller.Tick()
	}

	for _, fn := range e.hooks1 {
		fn(T)
	}
	if T%10 == 0 {
		for _, fn := range e.hooks10 {
			fn(T)
		}
	}
	if T%60 == 0 {
		for _, fn := range e.hooks60 {
			fn(T)
		}
	}
	if T%300 == 0 {
		for _, fn := range e.hooks300 {
			fn(T)
		}
	}
	if T%600 == 0 {
		for _, fn := range e.hooks600 {
			fn(T)
		}
	}
	if T%3600 == 0 {
		for _, fn := range e.hooks3600 {
			fn(T)
		}
	}

	e.tickDriveParkAccumulators()
	e.tickChargeTimeAccumulator()
	e.tickChargeStateDebouncer()
	e.tickEfficiency()
	e.advanceTwelveVTicker()
	if T%60 == 0 {
		e.checkTwelveVAlert()
	}
}

func (e *Engine) tickDriveParkAccumulators() {
	on, _ := e.store.Get(metrics.KeyEnvOn)
	if on.Bool {
		e.parktime = 0
		e.drivetime++
	} else {
		e.drivetime = 0
		e.parktime++
	}
	e.store.SetInt(metrics.KeyDriveTime, int64(e.drivetime))
	e.store.SetInt(metrics.KeyParkTime, int64(e.parktime))
}

func (e *Engine) tickChargeTimeAccumulator() {
	inProgress, _ := e.store.Get(metrics.KeyChargeInProgress)
	if inProgress.Bool {
		e.chargetime++
	} else {
		e.chargetime = 0
	}
	e.store.SetInt(metrics.KeyChargeTime, int64(e.chargetime))
}

func (e *Engine) tickChargeStateDebouncer() {
	if !e.chargeStateArmed {
		return
	}
	e.chargeStateDebounce--
	if e.chargeStateDebounce <= 0 {
		e.chargeStateArmed = false
		e.fireChargeStateNotifier(e.lastChargeState)
	}
}

func (e *Engine) tickEfficiency() {
	speed, _ := e.store.Get(metrics.KeyPosSpeed)
	power, _ := e.store.Get(metrics.KeyBatPower)

	c := 0.0
	if speed.Float >= 5 {
		c = power.Float / speed.Float
		if e.EfficiencyClamp > 0 {
			if c > e.EfficiencyClamp {
				c = e.EfficiencyClamp
			} else if c < -e.EfficiencyClamp {
				c = -e.EfficiencyClamp
			}
		}
	}

	e.smoothedConsumption = (4*e.smoothedConsumption + c) / 5
	e.store.SetFloat(metrics.KeyBatConsumption, e.smoothedConsumption)
}

// alertThreshold reads the tunable 12V alert threshold from config,
// falling back to the hardcoded default.
func (e *Engine) alertThreshold() float64 {
	raw := e.cfg.GetDefault("vehicle", "12v.alert", "")
	if raw == "" {
		return defaultAlertThreshold
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultAlertThreshold
	}
	return v
}

// advanceTwelveVTicker runs every 1 Hz tick: the counter moves
// regardless of the (60s-gated) alert check below.
func (e *Engine) advanceTwelveVTicker() {
	charging, _ := e.store.Get(metrics.KeyEnvCharging12v)
	if charging.Bool {
		e.twelveVTicker += 2
		if e.twelveVTicker > twelveVTickerMax {
			e.twelveVTicker = twelveVTickerMax
		}
	} else if e.twelveVTicker > 0 {
		e.twelveVTicker--
		if e.twelveVTicker == 0 {
			v, _ := e.store.Get(metrics.KeyBat12vVoltage)
			e.twelveVRef = v.Float
			e.store.SetFloat(metrics.KeyBat12vVoltageRef, e.twelveVRef)
		}
	}
}

// checkTwelveVAlert runs only at T%60==0 and only while the ticker is
// at zero.
func (e *Engine) checkTwelveVAlert() {
	if e.twelveVTicker != 0 {
		return
	}

	v, _ := e.store.Get(metrics.KeyBat12vVoltage)
	ref, _ := e.store.Get(metrics.KeyBat12vVoltageRef)
	threshold := e.alertThreshold()
	diff := ref.Float - v.Float

	if !e.twelveVAlert && diff >= threshold {
		e.twelveVAlert = true
		e.store.SetBool(metrics.KeyBat12vAlert, true)
		if e.bus != nil {
			e.bus.Publish("vehicle.alert.12v.on", "")
		}
		if e.notifier != nil {
			e.notifier.Notify("alert", "battery.12v", "12V battery voltage low")
		}
	} else if e.twelveVAlert && diff <= threshold*hysteresisFraction {
		e.twelveVAlert = false
		e.store.SetBool(metrics.KeyBat12vAlert, false)
		if e.bus != nil {
			e.bus.Publish("vehicle.alert.12v.off", "")
		}
	}
}

// OnChargingTwelveVStart seeds the 12V ticker when 12V charging starts.
func (e *Engine) OnChargingTwelveVStart() {
	if e.twelveVTicker < twelveVSeedOnChargeStart {
		e.twelveVTicker = twelveVSeedOnChargeStart
	}
}

// DriveTime, ParkTime, ChargeTime expose the accumulators for tests.
func (e *Engine) DriveTime() uint64  { return e.drivetime }
func (e *Engine) ParkTime() uint64   { return e.parktime }
func (e *Engine) ChargeTime() uint64 { return e.chargetime }

// TwelveVAlert reports the current latched alert state, for tests.
func (e *Engine) TwelveVAlert() bool { return e.twelveVAlert }

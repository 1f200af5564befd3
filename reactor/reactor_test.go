package reactor

import (
	"testing"

	"vehiclecore/command"
	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/metrics"
)

type fakeDriverProvider struct {
	driver command.Driver
}

func (p *fakeDriverProvider) Active() (command.Driver, string) { return p.driver, "" }

type recordingDriver struct {
	command.DefaultDriver
	onCalls int
}

func (d *recordingDriver) NotifiedVehicleOn() { d.onCalls++ }

type recordingNotifier struct {
	notes []string
}

func (n *recordingNotifier) Notify(channel, subtype, body string) {
	n.notes = append(n.notes, channel+"/"+subtype)
}

type fakeDebouncer struct {
	armedState string
	armedDelay int
	twelveVStartCalls int
}

func (d *fakeDebouncer) ArmChargeStateDebounce(state string, delaySeconds int) {
	d.armedState = state
	d.armedDelay = delaySeconds
}
func (d *fakeDebouncer) OnChargingTwelveVStart() { d.twelveVStartCalls++ }

func TestReactor_EnvOnPublishesEventAndCallsDriver(t *testing.T) {
	store := metrics.NewMemStore()
	bus := events.NewMemBus()
	cfg := config.NewFileStore()
	driver := &recordingDriver{}
	provider := &fakeDriverProvider{driver: driver}
	notifier := &recordingNotifier{}

	var gotEvent bool
	bus.Subscribe("vehicle.on", func(string) { gotEvent = true })

	New(store, bus, cfg, notifier, provider, nil)
	store.SetBool(metrics.KeyEnvOn, true)

	if !gotEvent {
		t.Errorf("expected vehicle.on event to be published")
	}
	if driver.onCalls != 1 {
		t.Errorf("expected NotifiedVehicleOn to be called once, got %d", driver.onCalls)
	}
}

func TestReactor_ValetHoodAlertOnlyWhenValetOn(t *testing.T) {
	store := metrics.NewMemStore()
	bus := events.NewMemBus()
	cfg := config.NewFileStore()
	notifier := &recordingNotifier{}

	New(store, bus, cfg, notifier, nil, nil)

	store.SetBool(metrics.KeyDoorHood, true)
	if len(notifier.notes) != 0 {
		t.Errorf("expected no alert with valet off, got %v", notifier.notes)
	}

	store.SetBool(metrics.KeyEnvValet, true)
	store.SetBool(metrics.KeyDoorHood, false)
	store.SetBool(metrics.KeyDoorHood, true)

	found := false
	for _, n := range notifier.notes {
		if n == "alert/valet.hood" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected valet.hood alert once valet is on, got %v", notifier.notes)
	}
}

func TestReactor_ChargeStateArmsDebouncer(t *testing.T) {
	store := metrics.NewMemStore()
	bus := events.NewMemBus()
	cfg := config.NewFileStore()
	notifier := &recordingNotifier{}
	debouncer := &fakeDebouncer{}

	New(store, bus, cfg, notifier, nil, debouncer)
	store.SetString(metrics.KeyChargeState, "charging")

	if debouncer.armedState != "charging" {
		t.Errorf("expected debouncer armed with 'charging', got %q", debouncer.armedState)
	}
}

func TestReactor_NotifyChargeStateDone(t *testing.T) {
	store := metrics.NewMemStore()
	bus := events.NewMemBus()
	cfg := config.NewFileStore()
	notifier := &recordingNotifier{}
	store.SetInt(metrics.KeyChargeDurationFull, 42)

	r := New(store, bus, cfg, notifier, nil, nil)
	r.NotifyChargeState("done")

	found := false
	for _, n := range notifier.notes {
		if n == "info/charge.done" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected info/charge.done notification, got %v", notifier.notes)
	}
	v, _ := store.Get(metrics.KeyChargeDurationFull)
	if v.Int != 0 {
		t.Errorf("expected charge duration reset to 0, got %d", v.Int)
	}
}

func TestReactor_NotifyChargeStateStoppedDowngradedWhenScheduled(t *testing.T) {
	store := metrics.NewMemStore()
	bus := events.NewMemBus()
	cfg := config.NewFileStore()
	notifier := &recordingNotifier{}
	store.SetString(metrics.KeyChargeSubstate, "scheduledstop")

	r := New(store, bus, cfg, notifier, nil, nil)
	r.NotifyChargeState("stopped")

	found := false
	for _, n := range notifier.notes {
		if n == "info/charge.stopped" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected downgraded info/charge.stopped notification, got %v", notifier.notes)
	}
}

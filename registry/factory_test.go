package registry

import (
	"testing"

	"vehiclecore/command"
	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/metrics"
)

type fakeDriver struct {
	command.DefaultDriver
	destroyed bool
}

func (d *fakeDriver) Destroy() { d.destroyed = true }

func newTestServices() (Services, *metrics.MemStore, *events.MemBus) {
	m := metrics.NewMemStore()
	b := events.NewMemBus()
	return Services{Metrics: m, Events: b, Config: config.NewFileStore()}, m, b
}

// TestAutoInit checks that a configured (auto, vehicle.type) value
// selects a driver at startup.
func TestAutoInit(t *testing.T) {
	svc, m, b := newTestServices()
	reg := NewRegistry()
	reg.Register(Descriptor{
		Code: "TSLA",
		Name: "Tesla",
		New:  func(Services) command.Driver { return &fakeDriver{} },
	})
	svc.Config.Set("auto", "vehicle.type", "TSLA")

	var gotPayload string
	b.Subscribe("vehicle.type.set", func(payload string) { gotPayload = payload })

	f := NewFactory(reg, svc)
	f.AutoInit()

	driver, code := f.Active()
	if driver == nil || code != "TSLA" {
		t.Fatalf("expected active driver with code TSLA, got code=%q driver=%v", code, driver)
	}
	v, _ := m.Get(metrics.KeyVehicleType)
	if v.String != "TSLA" {
		t.Errorf("expected v.type=TSLA, got %q", v.String)
	}
	if gotPayload != "TSLA" {
		t.Errorf("expected vehicle.type.set payload TSLA, got %q", gotPayload)
	}
}

func TestFactory_SetReleasesPriorDriver(t *testing.T) {
	svc, _, _ := newTestServices()
	reg := NewRegistry()
	var first *fakeDriver
	reg.Register(Descriptor{Code: "AAAA", New: func(Services) command.Driver {
		first = &fakeDriver{}
		return first
	}})
	reg.Register(Descriptor{Code: "BBBB", New: func(Services) command.Driver { return &fakeDriver{} }})

	f := NewFactory(reg, svc)
	f.Set("AAAA")
	f.Set("BBBB")

	if !first.destroyed {
		t.Errorf("expected prior driver to be destroyed on Set")
	}
	_, code := f.Active()
	if code != "BBBB" {
		t.Errorf("expected active code BBBB, got %q", code)
	}
}

func TestFactory_SetUnknownCodeClearsMetricButKeepsRequestedCode(t *testing.T) {
	svc, m, _ := newTestServices()
	reg := NewRegistry()
	f := NewFactory(reg, svc)

	result := f.Set("ZZZZ")
	if result != command.Fail {
		t.Errorf("expected Fail for unknown code, got %v", result)
	}

	driver, code := f.Active()
	if driver != nil || code != "" {
		t.Errorf("expected no active driver, got driver=%v code=%q", driver, code)
	}
	v, _ := m.Get(metrics.KeyVehicleType)
	if v.String != "" {
		t.Errorf("expected v.type cleared, got %q", v.String)
	}
	if f.LastRequestedCode() != "ZZZZ" {
		t.Errorf("expected LastRequestedCode to retain ZZZZ, got %q", f.LastRequestedCode())
	}
}

func TestFactory_SetSameCodeTwiceReleasesAndRecreatesExactlyOnce(t *testing.T) {
	svc, _, _ := newTestServices()
	reg := NewRegistry()
	var created int
	var lastDriver *fakeDriver
	reg.Register(Descriptor{Code: "AAAA", New: func(Services) command.Driver {
		created++
		lastDriver = &fakeDriver{}
		return lastDriver
	}})

	f := NewFactory(reg, svc)
	f.Set("AAAA")
	firstDriver := lastDriver
	f.Set("AAAA")

	if created != 2 {
		t.Errorf("expected driver to be constructed twice, got %d", created)
	}
	if !firstDriver.destroyed {
		t.Errorf("expected first instance to be destroyed")
	}
}

func TestFactory_Clear(t *testing.T) {
	svc, m, b := newTestServices()
	reg := NewRegistry()
	reg.Register(Descriptor{Code: "AAAA", New: func(Services) command.Driver { return &fakeDriver{} }})

	var gotEvent string
	b.Subscribe("vehicle.type.cleared", func(payload string) { gotEvent = payload })

	f := NewFactory(reg, svc)
	f.Set("AAAA")
	f.Clear()

	driver, code := f.Active()
	if driver != nil || code != "" {
		t.Errorf("expected cleared driver, got driver=%v code=%q", driver, code)
	}
	v, _ := m.Get(metrics.KeyVehicleType)
	if v.String != "" {
		t.Errorf("expected v.type cleared, got %q", v.String)
	}
	if gotEvent != "" {
		t.Errorf("expected empty payload on clear, got %q", gotEvent)
	}
}

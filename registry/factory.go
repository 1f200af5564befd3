package registry

import (
	"sync"

	"vehiclecore/command"
	"vehiclecore/metrics"
)

// Destroyer is implemented by drivers that hold resources needing
// explicit teardown (CAN handles, receive threads). Factory calls
// Destroy before releasing a driver, mirroring the teacher's
// EngineApp.Destroy() ordering: power off, deregister, delete queue,
// kill task.
type Destroyer interface {
	Destroy()
}

// Factory owns the single active driver instance: at most one owned
// driver instance at a time, replaced atomically by Set/Clear/AutoInit.
type Factory struct {
	mu       sync.Mutex
	registry *Registry
	services Services

	active      command.Driver
	activeCode  string
	lastRequest string
}

func NewFactory(registry *Registry, services Services) *Factory {
	return &Factory{registry: registry, services: services}
}

// Active returns the current driver and its 4-char type code. Returns
// (nil, "") if no driver is active.
func (f *Factory) Active() (command.Driver, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.activeCode
}

// LastRequestedCode returns the most recently requested code passed to
// Set, even if it was unknown and produced no active driver: the type
// string, as opposed to the v.type metric, reflects the requested code.
func (f *Factory) LastRequestedCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest
}

// Set releases any active driver, then instantiates the driver for
// code. If code is unknown, the active driver is cleared and the
// v.type metric is set to empty, but LastRequestedCode still returns
// the requested code.
func (f *Factory) Set(code string) command.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releaseLocked()
	f.lastRequest = code

	driver, ok := f.registry.New(code, f.services)
	if !ok {
		f.services.Metrics.SetString(metrics.KeyVehicleType, "")
		f.services.Events.Publish("vehicle.type.cleared", "")
		return command.Fail
	}

	f.active = driver
	f.activeCode = code
	f.services.Metrics.SetString(metrics.KeyVehicleType, code)
	f.services.Events.Publish("vehicle.type.set", code)
	return command.Success
}

// Clear releases the active driver and signals vehicle.type.cleared.
func (f *Factory) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseLocked()
	f.lastRequest = ""
	f.services.Metrics.SetString(metrics.KeyVehicleType, "")
	f.services.Events.Publish("vehicle.type.cleared", "")
}

func (f *Factory) releaseLocked() {
	if f.active == nil {
		return
	}
	if d, ok := f.active.(Destroyer); ok {
		d.Destroy()
	}
	f.active = nil
	f.activeCode = ""
}

// AutoInit reads (auto, vehicle.type) from the configured config.Store
// and, if non-empty, performs Set.
func (f *Factory) AutoInit() command.Result {
	code := f.services.Config.GetDefault("auto", "vehicle.type", "")
	if code == "" {
		return command.Success
	}
	return f.Set(code)
}

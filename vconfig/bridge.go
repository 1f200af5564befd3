// Package vconfig implements the config-change and V2 feature bridge:
// propagating config reloads into the active driver, and mapping
// legacy integer feature keys to named config values.
package vconfig

import (
	"vehiclecore/command"
	"vehiclecore/config"
)

// DriverProvider returns the currently active driver, or nil.
type DriverProvider interface {
	Active() (command.Driver, string)
}

// Bridge fans out config-change notifications to the active driver.
type Bridge struct {
	drivers DriverProvider
}

func NewBridge(drivers DriverProvider) *Bridge {
	return &Bridge{drivers: drivers}
}

// OnConfigChanged invokes the active driver's NotifyConfigChanges hook.
// section is accepted for symmetry with config.Store.OnChange but is
// not otherwise inspected: any config reload propagates, there's no
// per-section filter.
func (b *Bridge) OnConfigChanged(section string) {
	d, _ := b.drivers.Active()
	if d != nil {
		d.NotifyConfigChanges()
	}
}

// featureKeys maps the legacy V2 integer feature keys to named config
// values under section "vehicle".
var featureKeys = map[int]string{
	8:  "stream",
	9:  "minsoc",
	14: "carbits",
	15: "canwrite",
}

// FeatureBridge maps legacy integer feature keys onto the named
// "vehicle" config section.
type FeatureBridge struct {
	store config.Store
}

func NewFeatureBridge(store config.Store) *FeatureBridge {
	return &FeatureBridge{store: store}
}

// Get returns the string value for feature key, or "0" if key is
// unknown.
func (f *FeatureBridge) Get(key int) string {
	name, ok := featureKeys[key]
	if !ok {
		return "0"
	}
	return f.store.GetDefault("vehicle", name, "0")
}

// Set stores value under feature key's named config entry, returning
// false if key is unknown.
func (f *FeatureBridge) Set(key int, value string) bool {
	name, ok := featureKeys[key]
	if !ok {
		return false
	}
	f.store.Set("vehicle", name, value)
	return true
}

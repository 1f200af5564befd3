package vehicle

import (
	"testing"

	"vehiclecore/command"
	"vehiclecore/registry"
)

type notifyCountDriver struct {
	command.DefaultDriver
	configNotifications int
}

func (d *notifyCountDriver) NotifyConfigChanges() { d.configNotifications++ }

// TestConfigBridgePropagatesToActiveDriver checks that a config write
// under a watched key re-notifies whichever driver is currently active.
func TestConfigBridgePropagatesToActiveDriver(t *testing.T) {
	core, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	driver := &notifyCountDriver{}
	core.Registry.Register(registry.Descriptor{
		Code: "TEST",
		Name: "Test",
		New:  func(registry.Services) command.Driver { return driver },
	})
	core.Factory.Set("TEST")

	core.Config.Set("vehicle", "minsoc", "40")

	if driver.configNotifications != 1 {
		t.Errorf("expected 1 config notification, got %d", driver.configNotifications)
	}
}

// TestFeatureBridgeRoundTrip exercises the V2 legacy feature mapping
// wired into Core.
func TestFeatureBridgeRoundTrip(t *testing.T) {
	core, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !core.FeatureBridge.Set(9, "55") {
		t.Fatalf("expected Set(9, ...) to succeed")
	}
	if got := core.FeatureBridge.Get(9); got != "55" {
		t.Errorf("expected Get(9)==55, got %q", got)
	}
	if got := core.FeatureBridge.Get(99); got != "0" {
		t.Errorf("expected unknown key to read '0', got %q", got)
	}
}

// TestStartDestroyLifecycle exercises the construct/Start/Destroy
// ordering without any hardware CAN devices or Redis backend wired.
func TestStartDestroyLifecycle(t *testing.T) {
	core, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	core.Start()
	core.Destroy()
}

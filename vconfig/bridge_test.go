package vconfig

import (
	"testing"

	"vehiclecore/config"
)

func TestFeatureBridge_RoundTrip(t *testing.T) {
	store := config.NewFileStore()
	f := NewFeatureBridge(store)

	for _, k := range []int{8, 9, 14, 15} {
		if !f.Set(k, "1") {
			t.Fatalf("expected Set(%d) to succeed", k)
		}
		if got := f.Get(k); got != "1" {
			t.Errorf("expected Get(%d)==1, got %q", k, got)
		}
	}
}

func TestFeatureBridge_UnknownKey(t *testing.T) {
	store := config.NewFileStore()
	f := NewFeatureBridge(store)

	if got := f.Get(99); got != "0" {
		t.Errorf("expected unknown key to read '0', got %q", got)
	}
	if f.Set(99, "1") {
		t.Errorf("expected Set on unknown key to return false")
	}
}

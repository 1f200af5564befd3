package stat

import (
	"bytes"
	"testing"

	"vehiclecore/config"
	"vehiclecore/metrics"
)

// TestFormat_StatWhileCharging checks the charging-specific summary
// layout renders correctly.
func TestFormat_StatWhileCharging(t *testing.T) {
	store := metrics.NewMemStore()
	store.SetBool(metrics.KeyDoorChargePort, true)
	store.SetString(metrics.KeyChargeMode, "range")
	store.SetString(metrics.KeyChargeState, "charging")
	store.SetFloat(metrics.KeyChargeVoltage, 230)
	store.SetFloat(metrics.KeyChargeCurrent, 16)
	store.SetInt(metrics.KeyChargeDurationFull, 120)
	store.SetFloat(metrics.KeyBatSOC, 42)

	var buf bytes.Buffer
	if err := Format(&buf, store, UnitsKM); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	want := "Range - Charging\n230.0V/16.0A\nFull: 120 mins\nSOC: 42.0%\n"
	if buf.String() != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, buf.String())
	}
}

func TestFormat_NotCharging(t *testing.T) {
	store := metrics.NewMemStore()
	store.SetBool(metrics.KeyDoorChargePort, false)
	store.SetFloat(metrics.KeyBatSOC, 77)

	var buf bytes.Buffer
	if err := Format(&buf, store, UnitsKM); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	want := "Not charging\nSOC: 77.0%\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormat_DoneOmitsVoltageAndCurrent(t *testing.T) {
	store := metrics.NewMemStore()
	store.SetBool(metrics.KeyDoorChargePort, true)
	store.SetString(metrics.KeyChargeMode, "standard")
	store.SetString(metrics.KeyChargeState, "done")
	store.SetFloat(metrics.KeyBatSOC, 100)

	var buf bytes.Buffer
	if err := Format(&buf, store, UnitsKM); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	want := "Standard - Done\nSOC: 100.0%\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormat_OptionalMetricsSkippedWhenZero(t *testing.T) {
	store := metrics.NewMemStore()
	store.SetBool(metrics.KeyDoorChargePort, false)
	store.SetFloat(metrics.KeyBatSOC, 50)
	store.SetFloat(metrics.KeyRangeIdeal, 120)
	store.SetFloat(metrics.KeyRangeEst, 0)
	store.SetFloat(metrics.KeyBatSOH, 0)

	var buf bytes.Buffer
	if err := Format(&buf, store, UnitsMiles); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	want := "Not charging\nSOC: 50.0%\nIdeal range: 74.6M\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestUnitsFromConfig(t *testing.T) {
	cfg := config.NewFileStore()
	if got := UnitsFromConfig(cfg); got != UnitsKM {
		t.Errorf("expected UnitsKM by default, got %v", got)
	}

	cfg.Set("vehicle", "units.distance", "M")
	if got := UnitsFromConfig(cfg); got != UnitsMiles {
		t.Errorf("expected UnitsMiles when units.distance=M, got %v", got)
	}

	if got := UnitsFromConfig(nil); got != UnitsKM {
		t.Errorf("expected UnitsKM for nil config, got %v", got)
	}
}

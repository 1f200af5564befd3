// Package stat implements the "stat" status formatter: a textual
// summary of charge mode/state, SOC, ranges, and odometer.
package stat

import (
	"fmt"
	"io"
	"strings"

	"vehiclecore/config"
	"vehiclecore/metrics"
)

// Units selects the distance unit system, resolved from config key
// (vehicle, units.distance) == "M" -> miles, else kilometres.
type Units int

const (
	UnitsKM Units = iota
	UnitsMiles
)

// UnitsFromConfig resolves the Units the formatter should use from the
// config key (vehicle, units.distance).
func UnitsFromConfig(cfg config.Store) Units {
	if cfg == nil {
		return UnitsKM
	}
	if cfg.GetDefault("vehicle", "units.distance", "") == "M" {
		return UnitsMiles
	}
	return UnitsKM
}

func distanceUnit(u Units) string {
	if u == UnitsMiles {
		return "M"
	}
	return "km"
}

func toDisplayDistance(km float64, u Units) float64 {
	if u == UnitsMiles {
		return km * 0.621371
	}
	return km
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Format writes the stat summary for the current metric snapshot in
// store to w.
func Format(w io.Writer, store metrics.Store, units Units) error {
	chargePort, _ := store.Get(metrics.KeyDoorChargePort)

	if chargePort.Bool {
		if err := formatCharging(w, store); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "Not charging"); err != nil {
			return err
		}
	}

	soc, _ := store.Get(metrics.KeyBatSOC)
	if _, err := fmt.Fprintf(w, "SOC: %.1f%%\n", soc.Float); err != nil {
		return err
	}

	if err := formatOptional(w, store, metrics.KeyRangeIdeal, "Ideal range", units, true); err != nil {
		return err
	}
	if err := formatOptional(w, store, metrics.KeyRangeEst, "Est. range", units, true); err != nil {
		return err
	}
	if err := formatOptional(w, store, metrics.KeyPosOdometer, "ODO", units, true); err != nil {
		return err
	}
	if err := formatOptional(w, store, metrics.KeyBatCAC, "CAC", units, false); err != nil {
		return err
	}
	if err := formatOptional(w, store, metrics.KeyBatSOH, "SOH", units, false); err != nil {
		return err
	}

	return nil
}

func formatCharging(w io.Writer, store metrics.Store) error {
	mode, _ := store.Get(metrics.KeyChargeMode)
	state, _ := store.Get(metrics.KeyChargeState)

	if _, err := fmt.Fprintf(w, "%s - %s\n", capitalize(mode.String), capitalize(state.String)); err != nil {
		return err
	}

	if state.String == "done" || state.String == "stopped" {
		return nil
	}

	voltage, _ := store.Get(metrics.KeyChargeVoltage)
	current, _ := store.Get(metrics.KeyChargeCurrent)
	if _, err := fmt.Fprintf(w, "%.1fV/%.1fA\n", voltage.Float, current.Float); err != nil {
		return err
	}

	durFull, _ := store.Get(metrics.KeyChargeDurationFull)
	if durFull.Int != 0 {
		if _, err := fmt.Fprintf(w, "Full: %d mins\n", durFull.Int); err != nil {
			return err
		}
	}
	durRange, _ := store.Get(metrics.KeyChargeDurationRange)
	if durRange.Int != 0 {
		if _, err := fmt.Fprintf(w, "Range: %d mins\n", durRange.Int); err != nil {
			return err
		}
	}
	durSOC, _ := store.Get(metrics.KeyChargeDurationSOC)
	if durSOC.Int != 0 {
		if _, err := fmt.Fprintf(w, "SOC: %d mins\n", durSOC.Int); err != nil {
			return err
		}
	}
	return nil
}

// formatOptional prints a labelled metric only if it is set and its
// Float field is non-zero; values of other kinds are not printed.
func formatOptional(w io.Writer, store metrics.Store, key metrics.Key, label string, units Units, isDistance bool) error {
	v, ok := store.Get(key)
	if !ok {
		return nil
	}

	if isDistance {
		if v.Float == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s: %.1f%s\n", label, toDisplayDistance(v.Float, units), distanceUnit(units))
		return err
	}

	if v.Float == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %.1f\n", label, v.Float)
	return err
}

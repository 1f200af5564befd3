package command

import "vehiclecore/config"

// PinCheck compares pin against the configured (password, pin) value,
// returning false if no pin is configured.
func PinCheck(store config.Store, pin string) bool {
	configured, ok := store.Get("password", "pin")
	if !ok || configured == "" {
		return false
	}
	return pin == configured
}

// ValidateHomelink converts a 1-based button number to a zero-based
// index and applies the default duration: button outside [1,3] or
// duration <100ms is an error.
func ValidateHomelink(button int, durationMs int) (idx int, resolvedDurationMs int, ok bool) {
	if button < 1 || button > 3 {
		return 0, 0, false
	}
	if durationMs == 0 {
		durationMs = 1000
	}
	if durationMs < 100 {
		return 0, 0, false
	}
	return button - 1, durationMs, true
}

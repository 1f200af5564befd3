package vehicle

import "vehiclecore/logging"

// Options configures a Core instance, mirroring the teacher's
// Options/main.go flag surface.
type Options struct {
	LogLevel logging.Level

	// RedisServerAddr/Port select a Redis-backed metrics.Store and
	// events.Bus when set; an empty addr uses the in-memory reference
	// implementations instead.
	RedisServerAddr string
	RedisServerPort uint16

	// CANDevices names the interface for each bus this instance owns
	// (index 0 -> Bus1, 1 -> Bus2, 2 -> Bus3); an empty entry leaves
	// that bus unopened.
	CANDevices [3]string

	// ConfigPath is the YAML config file loaded into config.FileStore.
	ConfigPath string
}

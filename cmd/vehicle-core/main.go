// Command vehicle-core is the demo binary wiring a vehicle.Core together,
// mirroring the teacher's flag surface and signal-driven main loop
// (main.go) but generalized to the in-memory/Redis dual-backend facade
// built in the vehicle package.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vehiclecore/logging"
	"vehiclecore/vehicle"
)

var version = "dev"

var (
	versionFlag = flag.Bool("version", false, "Print version info")
	help        = flag.Bool("help", false, "Print help")
	logLevel    = flag.Int("log", 3, "Log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	redisServer = flag.String("redis_server", "", "Redis server address (empty uses in-memory metrics/events)")
	redisPort   = flag.Int("redis_port", 6379, "Redis server port")
	can1Device  = flag.String("can1_device", "", "CAN bus 1 device name (e.g. can0)")
	can2Device  = flag.String("can2_device", "", "CAN bus 2 device name")
	can3Device  = flag.String("can3_device", "", "CAN bus 3 device name")
	configPath  = flag.String("config", "", "YAML config file path (empty starts with an in-memory config)")
	cmdLine     = flag.String("cmd", "", "Run one CLI command (e.g. \"wakeup\", \"charge start\") against the running core and exit")
)

func printVersion() {
	fmt.Printf("vehicle-core %s\n", version)
}

func printHelp() {
	printVersion()
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	if *logLevel < 0 || *logLevel > 4 {
		fmt.Fprintf(os.Stderr, "invalid log level %d\n", *logLevel)
		os.Exit(1)
	}

	opts := vehicle.Options{
		LogLevel:        logging.Level(*logLevel),
		RedisServerAddr: *redisServer,
		RedisServerPort: uint16(*redisPort),
		CANDevices:      [3]string{*can1Device, *can2Device, *can3Device},
		ConfigPath:      *configPath,
	}

	core, err := vehicle.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create vehicle core: %v\n", err)
		os.Exit(1)
	}
	defer core.Destroy()

	core.Log.Info("vehicle-core %s starting", version)
	core.Start()

	if *cmdLine != "" {
		runCommand(core, os.Stdout, strings.Fields(*cmdLine))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}

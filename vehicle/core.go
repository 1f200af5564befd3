// Package vehicle wires the whole core together: the driver registry,
// CAN receive loop, OBD-II poller, tick engine, and metric reactor,
// behind one facade mirroring the teacher's EngineApp construct/destroy
// lifecycle (engine_app.go).
package vehicle

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"vehiclecore/canbus"
	"vehiclecore/config"
	"vehiclecore/events"
	"vehiclecore/logging"
	"vehiclecore/metrics"
	"vehiclecore/notify"
	"vehiclecore/obd"
	"vehiclecore/reactor"
	"vehiclecore/registry"
	"vehiclecore/ticker"
	"vehiclecore/vconfig"
)

// Core is the top-level facade a demo binary or test constructs.
type Core struct {
	Log      logging.Logger
	Config   config.Store
	Metrics  metrics.Store
	Events   events.Bus
	Notifier notify.Service

	Registry      *registry.Registry
	Factory       *registry.Factory
	Engine        *ticker.Engine
	Poller        *obd.Poller
	Reactor       *reactor.Reactor
	ConfigBridge  *vconfig.Bridge
	FeatureBridge *vconfig.FeatureBridge

	redisClient *redis.Client
	buses       [3]*canbus.HardwareBus
	loop        *canbus.ReceiveLoop

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// replyForwarder bridges obd.Poller replies and per-bus frames to
// whichever driver is currently active, since the poller and receive
// loop are constructed once but the active driver can be swapped.
type replyForwarder struct {
	factory *registry.Factory
}

func (f *replyForwarder) IncomingPollReply(bus canbus.BusID, pollType byte, pid uint16, payload []byte, length int, mlRemain int) {
	d, _ := f.factory.Active()
	if d != nil {
		d.IncomingPollReply(bus, pollType, pid, payload, length, mlRemain)
	}
}

func (f *replyForwarder) IncomingFrame(bus canbus.BusID, fr canbus.Frame) {
	d, _ := f.factory.Active()
	if d == nil {
		return
	}
	switch bus {
	case canbus.Bus1:
		d.IncomingFrameCan1(fr)
	case canbus.Bus2:
		d.IncomingFrameCan2(fr)
	case canbus.Bus3:
		d.IncomingFrameCan3(fr)
	}
}

// New constructs a Core from opts. Redis-backed metrics/events are used
// when RedisServerAddr is set; otherwise in-memory reference
// implementations are used, matching the teacher's single-backend
// NewEngineApp but generalized to both.
func New(opts Options) (*Core, error) {
	var baseLogger logging.Logger = logging.New(standardLogger(), opts.LogLevel)

	c := &Core{
		Log:  baseLogger,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	if opts.ConfigPath != "" {
		store, err := config.LoadFileStore(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		c.Config = store
	} else {
		c.Config = config.NewFileStore()
	}

	if opts.RedisServerAddr != "" {
		c.redisClient = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", opts.RedisServerAddr, opts.RedisServerPort),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		if err := metrics.Ping(context.Background(), c.redisClient); err != nil {
			return nil, err
		}
		c.Metrics = metrics.NewRedisStore(c.Log, c.redisClient)
		c.Events = events.NewRedisBus(c.Log, c.redisClient)
	} else {
		c.Metrics = metrics.NewMemStore()
		c.Events = events.NewMemBus()
	}

	c.Notifier = notify.NewLogService(c.Log)

	c.Registry = registry.NewRegistry()
	c.Factory = registry.NewFactory(c.Registry, registry.Services{
		Metrics: c.Metrics,
		Events:  c.Events,
		Config:  c.Config,
	})

	for i, device := range opts.CANDevices {
		if device == "" {
			continue
		}
		bus, err := canbus.OpenHardwareBus(device, canbus.BusID(i), c.Log)
		if err != nil {
			return nil, err
		}
		c.buses[i] = bus
	}

	var sender obd.Sender = noopSender{}
	if c.buses[canbus.Bus1] != nil {
		sender = c.buses[canbus.Bus1]
	}
	forwarder := &replyForwarder{factory: c.Factory}
	c.Poller = obd.NewPoller(c.Log, canbus.Bus1, sender, forwarder)
	c.loop = canbus.NewReceiveLoop(c.Poller, forwarder)

	c.Engine = ticker.NewEngine(c.Metrics, c.Config, c.Events, c.Notifier, nil)
	c.Engine.InstallPoller(c.Poller)
	c.Reactor = reactor.New(c.Metrics, c.Events, c.Config, c.Notifier, c.Factory, c.Engine)
	c.Engine.SetChargeStateNotifier(c.Reactor)

	c.ConfigBridge = vconfig.NewBridge(c.Factory)
	c.FeatureBridge = vconfig.NewFeatureBridge(c.Config)
	c.watchConfigBridge()

	return c, nil
}

// configWatchKeys are the config namespace entries a running driver
// cares about being re-notified of. password.pin deliberately isn't
// included here since a PIN change doesn't need to reach
// NotifyConfigChanges, only PinCheck's next read.
var configWatchKeys = []struct{ section, key string }{
	{"vehicle", "units.distance"},
	{"vehicle", "12v.alert"},
	{"vehicle", "stream"},
	{"vehicle", "minsoc"},
	{"vehicle", "carbits"},
	{"vehicle", "canwrite"},
}

// watchConfigBridge registers the config-change fan-out: any write to
// a watched key re-notifies the active driver.
func (c *Core) watchConfigBridge() {
	for _, k := range configWatchKeys {
		section := k.section
		c.Config.OnChange(section, k.key, func(string) {
			c.ConfigBridge.OnConfigChanged(section)
		})
	}
}

// noopSender discards frames when no hardware bus is wired, so the
// poller can still run (e.g. in tests or a metrics-only deployment).
type noopSender struct{}

func (noopSender) Send(canbus.Frame) error { return nil }

// Start launches the receive loop, any wired hardware buses, and the
// 1 Hz tick engine goroutine.
func (c *Core) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.loop.Start(c.Log)

	for _, bus := range c.buses {
		if bus == nil {
			continue
		}
		b := bus
		go func() {
			if err := b.Run(c.loop); err != nil {
				c.Log.Error("CAN bus run error: %v", err)
			}
		}()
	}

	c.Factory.AutoInit()

	go c.tickLoop()
}

func (c *Core) tickLoop() {
	defer close(c.done)
	hb := time.NewTicker(1 * time.Second)
	defer hb.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-hb.C:
			c.Engine.Tick()
		}
	}
}

// Destroy tears down the core: power off buses, deregister (stop the
// receive loop), delete the queue, then stop the tick engine
// goroutine. Mirrors the teacher's EngineApp.Destroy.
func (c *Core) Destroy() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	for _, bus := range c.buses {
		if bus == nil {
			continue
		}
		if err := bus.Close(); err != nil {
			c.Log.Error("error closing CAN bus: %v", err)
		}
	}

	c.Factory.Clear()
	c.loop.Stop()

	close(c.stop)
	<-c.done

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			c.Log.Error("error closing redis connection: %v", err)
		}
	}

	c.Log.Info("vehicle core shutdown complete")
}

func standardLogger() *log.Logger {
	// Remove timestamp/prefix when running under systemd, matching the
	// teacher's main.go.
	if os.Getenv("INVOCATION_ID") != "" {
		return log.New(os.Stdout, "", 0)
	}
	return log.New(os.Stdout, "", log.LstdFlags)
}

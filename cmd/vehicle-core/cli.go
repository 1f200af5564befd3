package main

import (
	"fmt"
	"io"
	"strconv"

	"vehiclecore/command"
	"vehiclecore/stat"
	"vehiclecore/vehicle"
)

// runCommand dispatches one CLI-style command line against core,
// writing the literal output strings to w. This is the one place in
// the module allowed to hold those strings: everything below
// vehicle.Core deals in command.Result, never formatted text, keeping
// CLI shell plumbing out of the rest of the module.
func runCommand(core *vehicle.Core, w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Error: no command given")
		return
	}

	switch args[0] {
	case "module":
		cmdModule(core, w, args[1:])
	case "list":
		cmdList(core, w)
	case "status":
		cmdStat(core, w)
	case "wakeup":
		cmdWakeup(core, w)
	case "homelink":
		cmdHomelink(core, w, args[1:])
	case "lock":
		cmdPin(core, w, args[1:], "lock", "locked", func(d command.Driver, pin string) command.Result { return d.CommandLock(pin) })
	case "unlock":
		cmdPin(core, w, args[1:], "unlock", "unlocked", func(d command.Driver, pin string) command.Result { return d.CommandUnlock(pin) })
	case "valet":
		cmdPin(core, w, args[1:], "valet", "valeted", func(d command.Driver, pin string) command.Result { return d.CommandValet(pin) })
	case "unvalet":
		cmdPin(core, w, args[1:], "unvalet", "unvaleted", func(d command.Driver, pin string) command.Result { return d.CommandUnvalet(pin) })
	case "charge":
		cmdCharge(core, w, args[1:])
	case "stat":
		cmdStat(core, w)
	default:
		fmt.Fprintf(w, "Error: unknown command %q\n", args[0])
	}
}

// cmdModule sets the active vehicle type; it gives no output on
// success or failure.
func cmdModule(core *vehicle.Core, w io.Writer, args []string) {
	if len(args) == 0 {
		return
	}
	core.Factory.Set(args[0])
}

func cmdList(core *vehicle.Core, w io.Writer) {
	fmt.Fprintln(w, "TYPE NAME")
	for _, d := range core.Registry.List() {
		fmt.Fprintf(w, "%s %s\n", d.Code, d.Name)
	}
}

// cmdWakeup special-cases "no active driver" so its message reads "No
// vehicle module selected" rather than the generic wake-failure text,
// which only applies once a driver exists.
func cmdWakeup(core *vehicle.Core, w io.Writer) {
	d, _ := core.Factory.Active()
	if d == nil {
		fmt.Fprintln(w, "Error: No vehicle module selected")
		return
	}
	switch d.CommandWakeup() {
	case command.Success:
		fmt.Fprintln(w, "Vehicle has been woken")
	case command.NotImplemented:
		fmt.Fprintln(w, "Error: Vehicle wake functionality not available")
	default:
		fmt.Fprintln(w, "Error: vehicle could not be woken")
	}
}

func cmdHomelink(core *vehicle.Core, w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Error: button number required")
		return
	}
	button, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(w, "Error: invalid button number")
		return
	}
	durationMs := 0
	if len(args) > 1 {
		durationMs, err = strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(w, "Error: invalid duration")
			return
		}
	}

	idx, resolvedDuration, ok := command.ValidateHomelink(button, durationMs)
	if !ok {
		fmt.Fprintln(w, "Error: invalid homelink button or duration")
		return
	}

	d, _ := core.Factory.Active()
	if d == nil {
		fmt.Fprintln(w, "Error: No vehicle module selected")
		return
	}
	switch d.CommandHomelink(idx, resolvedDuration) {
	case command.Success:
		fmt.Fprintf(w, "Homelink #%d activated\n", button)
	case command.NotImplemented:
		fmt.Fprintln(w, "Error: Homelink functionality not available")
	default:
		fmt.Fprintln(w, "Error: could not activate homelink")
	}
}

func cmdPin(core *vehicle.Core, w io.Writer, args []string, verb, pastTense string, fn func(command.Driver, string) command.Result) {
	var pin string
	if len(args) > 0 {
		pin = args[0]
	}
	d, _ := core.Factory.Active()
	if d == nil {
		fmt.Fprintln(w, "Error: No vehicle module selected")
		return
	}
	switch fn(d, pin) {
	case command.Success:
		fmt.Fprintf(w, "Vehicle %s\n", pastTense)
	case command.NotImplemented:
		fmt.Fprintf(w, "Error: %s functionality not available\n", verb)
	default:
		fmt.Fprintf(w, "Error: could not %s vehicle\n", verb)
	}
}

func cmdCharge(core *vehicle.Core, w io.Writer, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Error: charge subcommand required")
		return
	}
	d, _ := core.Factory.Active()
	if d == nil {
		fmt.Fprintln(w, "Error: No vehicle module selected")
		return
	}

	switch args[0] {
	case "mode":
		if len(args) < 2 {
			fmt.Fprintln(w, "Error: charge mode requires an argument")
			return
		}
		mode := command.ChargeMode(args[1])
		switch d.CommandChargeMode(mode) {
		case command.Success:
			fmt.Fprintf(w, "Charge mode '%s' set\n", args[1])
		case command.NotImplemented:
			fmt.Fprintln(w, "Error: charge mode functionality not available")
		default:
			fmt.Fprintln(w, "Error: could not set charge mode")
		}
	case "current":
		if len(args) < 2 {
			fmt.Fprintln(w, "Error: charge current requires an amps argument")
			return
		}
		amps, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(w, "Error: invalid amps")
			return
		}
		switch d.CommandChargeCurrent(amps) {
		case command.Success:
			fmt.Fprintln(w, "Charge current limit set to NA")
		case command.NotImplemented:
			fmt.Fprintln(w, "Error: charge current functionality not available")
		default:
			fmt.Fprintln(w, "Error: could not set charge current")
		}
	case "start":
		switch d.CommandChargeStart() {
		case command.Success:
			fmt.Fprintln(w, "Charge has been started")
		case command.NotImplemented:
			fmt.Fprintln(w, "Error: charge start functionality not available")
		default:
			fmt.Fprintln(w, "Error: could not start charge")
		}
	case "stop":
		switch d.CommandChargeStop() {
		case command.Success:
			fmt.Fprintln(w, "Charge has been stopped")
		case command.NotImplemented:
			fmt.Fprintln(w, "Error: charge stop functionality not available")
		default:
			fmt.Fprintln(w, "Error: could not stop charge")
		}
	case "cooldown":
		switch d.CommandChargeCooldown() {
		case command.Success:
			fmt.Fprintln(w, "Cooldown has been started")
		case command.NotImplemented:
			fmt.Fprintln(w, "Error: charge cooldown functionality not available")
		default:
			fmt.Fprintln(w, "Error: could not start cooldown")
		}
	default:
		fmt.Fprintf(w, "Error: unknown charge subcommand %q\n", args[0])
	}
}

// cmdStat prints the status summary. "stat" is the one command with a
// default implementation rather than NotImplemented, so a driver that
// doesn't override CommandStat still gets the formatter output here.
func cmdStat(core *vehicle.Core, w io.Writer) {
	d, _ := core.Factory.Active()
	if d == nil {
		fmt.Fprintln(w, "No vehicle module selected")
		return
	}
	if d.CommandStat(0, w) == command.NotImplemented {
		stat.Format(w, core.Metrics, stat.UnitsFromConfig(core.Config))
	}
}

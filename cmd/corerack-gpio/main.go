package main

/*------------------------------------------------------------------
 *
 * Purpose:	Bridge a GPIO line into an external_input module: enumerate
 *		gpiochip devices with udev, watch one line with go-gpiocdev,
 *		and publish Gate voltage transitions into the module's
 *		atomic slot. The hardware-CV-input twin of the teacher's
 *		PTT-over-GPIO keying.
 *
 *------------------------------------------------------------------*/

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
	"github.com/warthog618/go-gpiocdev"
	"github.com/jochenvg/go-udev"

	"github.com/corerack/corerack/corerack"
)

func main() {
	var (
		chip    = flag.StringP("chip", "c", "", "gpiochip device, auto-detected via udev if empty")
		line    = flag.IntP("line", "n", 0, "GPIO line offset to watch")
		nodeID  = flag.StringP("node", "e", "gpio_in", "external_input node name in the demo patch")
		verbose = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	device := *chip
	if device == "" {
		found, err := firstGPIOChip()
		if err != nil {
			logger.Fatal("enumerating gpiochip devices", "err", err)
		}
		device = found
	}

	engine := corerack.NewEngine(44100)
	if err := engine.AddModule("external_input", *nodeID); err != nil {
		logger.Fatal("adding external_input", "err", err)
	}
	module, _ := engine.Patch().Node(*nodeID)
	writer, ok := module.(corerack.ExternalInputWriter)
	if !ok {
		logger.Fatal("external_input does not implement ExternalInputWriter")
	}

	onChange := func(evt gpiocdev.LineEvent) {
		switch evt.Type {
		case gpiocdev.LineEventRisingEdge:
			writer.Write(5.0) // Gate high
		case gpiocdev.LineEventFallingEdge:
			writer.Write(0.0) // Gate low
		}
	}

	l, err := gpiocdev.RequestLine(device, *line,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(onChange))
	if err != nil {
		logger.Fatal("requesting GPIO line", "chip", device, "line", *line, "err", err)
	}
	defer l.Close()

	logger.Info("watching GPIO line", "chip", device, "line", *line, "node", *nodeID)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

// firstGPIOChip enumerates devices on the "gpio" subsystem and returns the
// device node of the first gpiochip found.
func firstGPIOChip() (string, error) {
	u := udev.Udev{}
	enum := u.NewEnumerate()
	if err := enum.AddMatchSubsystem("gpio"); err != nil {
		return "", err
	}
	devices, err := enum.Devices()
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if node := d.Devnode(); node != "" {
			return node, nil
		}
	}
	return "", &corerack.ErrUnknownPort{Ref: "no gpiochip device found"}
}

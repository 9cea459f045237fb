package main

/*------------------------------------------------------------------
 *
 * Purpose:	Turn the controlling terminal into a one-octave QWERTY "CV
 *		keyboard": each mapped key writes a V/Oct value into one
 *		external_input module and sets a Gate external_input to 5V.
 *		Nothing in this tool lowers the Gate again. Raw-mode
 *		terminal reading is the same role pkg/term plays for the
 *		teacher's serial port handling.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"
	flag "github.com/spf13/pflag"

	"github.com/corerack/corerack/corerack"
)

// keyRow maps QWERTY keys to semitone offsets from middle C, piano-style:
// white keys on the home row (a s d f g h j k), black keys on the row
// above (w e t y u).
var keyRow = map[rune]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

func main() {
	var (
		voctNode = flag.StringP("voct-node", "p", "keys_voct", "external_input node for V/Oct")
		gateNode = flag.StringP("gate-node", "g", "keys_gate", "external_input node for Gate")
		verbose  = flag.BoolP("verbose", "v", false, "enable debug logging")
	)
	flag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	engine := corerack.NewEngine(44100)
	if err := engine.AddModule("external_input", *voctNode); err != nil {
		logger.Fatal("adding V/Oct node", "err", err)
	}
	if err := engine.AddModule("external_input", *gateNode); err != nil {
		logger.Fatal("adding Gate node", "err", err)
	}
	voctModule, _ := engine.Patch().Node(*voctNode)
	gateModule, _ := engine.Patch().Node(*gateNode)
	voct := voctModule.(corerack.ExternalInputWriter)
	gate := gateModule.(corerack.ExternalInputWriter)

	t, err := term.Open("/dev/tty")
	if err != nil {
		logger.Fatal("opening controlling terminal", "err", err)
	}
	defer t.Restore()
	defer t.Close()

	if err := term.RawMode(t); err != nil {
		logger.Fatal("entering raw mode", "err", err)
	}

	logger.Info("keyboard CV bridge active, q to quit")
	fmt.Fprintln(os.Stderr, "keys a,w,s,e,d,f,t,g,y,h,u,j,k play one octave from middle C; q quits")

	buf := make([]byte, 1)
	for {
		n, err := t.Read(buf)
		if err != nil || n == 0 {
			if err != nil {
				logger.Error("reading key", "err", err)
			}
			return
		}
		r := rune(buf[0])
		if r == 'q' {
			return
		}
		semitone, ok := keyRow[r]
		if !ok {
			continue
		}
		voct.Write(corerack.FrequencyToVolts(corerack.MiddleCFrequency * semitoneRatio(semitone)))
		gate.Write(5.0)
	}
}

// semitoneRatio is the equal-tempered frequency ratio for n semitones
// above the reference pitch.
func semitoneRatio(n int) float64 {
	const twelfthRootOfTwo = 1.0594630943592953
	ratio := 1.0
	for i := 0; i < n; i++ {
		ratio *= twelfthRootOfTwo
	}
	return ratio
}

package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Optional telemetry sink that writes drained Scope/Spectrum
 *		updates to timestamped files on disk, named with a strftime
 *		pattern the same way the teacher names its daily log files.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"
	"time"

	"github.com/lestrrat-go/strftime"
)

// DumpSink writes Scope and Spectrum telemetry updates to disk, one file
// per update, named by expanding a strftime pattern against the update's
// capture time. Param, Level, and Gate updates are ignored: they are
// naturally small enough to stream over the control-plane connection
// instead of dumped to disk.
type DumpSink struct {
	dir     string
	pattern *strftime.Strftime
}

// NewDumpSink builds a sink that writes into dir using the given strftime
// naming pattern, e.g. "scope-%Y%m%d-%H%M%S.raw".
func NewDumpSink(dir, pattern string) (*DumpSink, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, fmt.Errorf("corerack: parsing dump pattern %q: %w", pattern, err)
	}
	return &DumpSink{dir: dir, pattern: f}, nil
}

// Write persists one update's raw samples or spectrum bins if it is a
// Scope or Spectrum update; other kinds are silently ignored.
func (d *DumpSink) Write(v ObservableValue, at time.Time) error {
	var data []float32
	switch v.Type {
	case TargetScope:
		data = v.Samples
	case TargetSpectrum:
		data = v.Bins
	default:
		return nil
	}

	name := d.pattern.FormatString(at)
	path := d.dir + string(os.PathSeparator) + name

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("corerack: creating dump file %s: %w", path, err)
	}
	defer f.Close()

	for _, sample := range data {
		if _, err := fmt.Fprintf(f, "%g\n", sample); err != nil {
			return fmt.Errorf("corerack: writing dump file %s: %w", path, err)
		}
	}
	return nil
}

// Drain polls obs for updates and writes each Scope/Spectrum one to disk,
// returning the number of files written.
func (d *DumpSink) Drain(obs *Observer, at time.Time) (int, error) {
	updates := obs.PollUpdates()
	written := 0
	for _, v := range updates {
		if v.Type != TargetScope && v.Type != TargetSpectrum {
			continue
		}
		if err := d.Write(v, at); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

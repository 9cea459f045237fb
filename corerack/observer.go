package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	State observer / telemetry bridge: a subscription
 *		registry that accumulates Param/Level/Gate/Scope/Spectrum
 *		telemetry from the render thread and drains deduplicated
 *		updates to a control-plane consumer.
 *
 * Description:	The render thread never takes a lock to observe or
 *		accumulate a value: each subscription owns a single-slot
 *		atomic.Pointer it writes into directly, an Arc<AtomicF64>-
 *		style handle the control thread can read without blocking
 *		the render thread. Subscribe/Unsubscribe mutate the
 *		subscription set under a control-side mutex and then
 *		publish a fresh read-only snapshot via atomic.Pointer swap,
 *		so the render thread's per-sample scan of live
 *		subscriptions never blocks on that mutex either. The only
 *		place a mutex is taken on the render side is when a rate-
 *		capped (<=60 Hz per key) emission newly marks a
 *		subscription dirty - an administrative path gated by
 *		allowEmit, not the per-sample hot loop - to maintain the
 *		FIFO of undrained updates that bounds the pending queue at
 *		1000, dropping the oldest undrained update (never the
 *		subscription itself) on overflow.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// TargetKind is the tagged-union discriminant for SubscriptionTarget and
// ObservableValue.
type TargetKind int

const (
	TargetParam TargetKind = iota
	TargetLevel
	TargetGate
	TargetScope
	TargetSpectrum
)

// defaultRateHz is the observer's default and maximum emission rate.
const defaultRateHz = 60.0

// defaultLevelWindow is about 3ms at 44.1kHz.
const defaultLevelWindow = 128

// SubscriptionTarget names one piece of telemetry to observe.
type SubscriptionTarget struct {
	Kind   TargetKind
	NodeID string

	// PortID names the output port for Level/Gate/Scope/Spectrum, or the
	// param id for Param.
	PortID string

	BufferSize int     // Scope: ring buffer length
	FFTSize    int     // Spectrum: DFT size (bins = FFTSize/2)
	WindowSize int     // Level: RMS/peak window length, default 128
	RateHz     float64 // requested emission rate, capped at 60Hz
}

// Key returns the canonical subscription key, e.g. "level:lfo1:out".
func (t SubscriptionTarget) Key() string {
	switch t.Kind {
	case TargetParam:
		return fmt.Sprintf("param:%s:%s", t.NodeID, t.PortID)
	case TargetLevel:
		return fmt.Sprintf("level:%s:%s", t.NodeID, t.PortID)
	case TargetGate:
		return fmt.Sprintf("gate:%s:%s", t.NodeID, t.PortID)
	case TargetScope:
		return fmt.Sprintf("scope:%s:%s", t.NodeID, t.PortID)
	case TargetSpectrum:
		return fmt.Sprintf("spectrum:%s:%s", t.NodeID, t.PortID)
	default:
		return fmt.Sprintf("unknown:%s:%s", t.NodeID, t.PortID)
	}
}

// ObservableValue is one drained telemetry update.
type ObservableValue struct {
	Type   TargetKind
	NodeID string
	PortID string // also holds ParamID for Type == TargetParam

	Value float64 // Param

	RMSDb  float64 // Level
	PeakDb float64 // Level

	Active bool // Gate

	Samples []float32 // Scope

	Bins      []float32  // Spectrum
	FreqRange [2]float64 // Spectrum: [lo, hi] in Hz
}

// subscription is one live observer registration plus its accumulator and
// lock-free latest-value slot.
type subscription struct {
	key    string
	target SubscriptionTarget

	value atomic.Pointer[ObservableValue]
	dirty atomic.Bool

	lastEmitNanos atomic.Int64
	intervalNanos int64

	levelAcc    *levelAccumulator
	gateAcc     *gateAccumulator
	scopeAcc    *scopeAccumulator
	spectrumAcc *spectrumAccumulator
}

// Observer is the subscription registry and telemetry drain. Zero value
// is not usable; use NewObserver.
type Observer struct {
	mu         sync.Mutex
	snapshot   atomic.Pointer[[]*subscription] // published for the render thread
	byKey      map[string]*subscription
	order      []*subscription // admission order, oldest first
	dirtyOrder []*subscription // FIFO of subscriptions with an undrained update

	maxPending int
}

// NewObserver returns an empty observer whose pending (undrained) update
// queue is bounded at 1000.
func NewObserver() *Observer {
	o := &Observer{
		byKey:      make(map[string]*subscription),
		maxPending: 1000,
	}
	empty := []*subscription{}
	o.snapshot.Store(&empty)
	return o
}

func rateInterval(hz float64) int64 {
	if hz <= 0 || hz > defaultRateHz {
		hz = defaultRateHz
	}
	return int64(float64(time.Second) / hz)
}

// Subscribe registers a new telemetry target and returns its canonical
// key. Re-subscribing the same key replaces the prior subscription. The
// number of live subscriptions is unbounded; it is each subscription's
// undrained, pending update that is capped (see publish).
func (o *Observer) Subscribe(target SubscriptionTarget) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := target.Key()
	if _, exists := o.byKey[key]; exists {
		o.removeLocked(key)
	}

	sub := &subscription{
		key:           key,
		target:        target,
		intervalNanos: rateInterval(target.RateHz),
	}
	switch target.Kind {
	case TargetLevel:
		window := target.WindowSize
		if window <= 0 {
			window = defaultLevelWindow
		}
		sub.levelAcc = newLevelAccumulator(window)
	case TargetGate:
		sub.gateAcc = &gateAccumulator{}
	case TargetScope:
		size := target.BufferSize
		if size <= 0 {
			size = defaultLevelWindow
		}
		sub.scopeAcc = newScopeAccumulator(size)
	case TargetSpectrum:
		size := target.FFTSize
		if size <= 0 {
			size = 512
		}
		sub.spectrumAcc = newSpectrumAccumulator(size)
	}

	o.byKey[key] = sub
	o.order = append(o.order, sub)
	o.publishLocked()
	return key
}

// Unsubscribe removes one or more subscriptions by key.
func (o *Observer) Unsubscribe(keys ...string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, k := range keys {
		o.removeLocked(k)
	}
	o.publishLocked()
}

// Clear removes every subscription.
func (o *Observer) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byKey = make(map[string]*subscription)
	o.order = nil
	o.dirtyOrder = nil
	o.publishLocked()
}

func (o *Observer) removeLocked(key string) {
	sub, ok := o.byKey[key]
	if !ok {
		return
	}
	delete(o.byKey, key)
	for i, s := range o.order {
		if s.key == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	sub.dirty.Store(false) // drop from dirtyOrder's perspective too; publish prunes lazily
}

func (o *Observer) publishLocked() {
	snap := make([]*subscription, len(o.order))
	copy(snap, o.order)
	o.snapshot.Store(&snap)
}

// PollUpdates drains every subscription with an undrained update,
// deduplicated to the latest value per key.
func (o *Observer) PollUpdates() []ObservableValue {
	subs := *o.snapshot.Load()
	var out []ObservableValue
	for _, s := range subs {
		if !s.dirty.CompareAndSwap(true, false) {
			continue
		}
		if v := s.value.Load(); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// observeSample feeds one sample of telemetry from the render thread. It
// never drops samples feeding Level/Scope/Spectrum accumulation; it only
// rate-limits the resulting emission. endOfBlock gates the
// (control-plane-only) Param sampling.
func (o *Observer) observeSample(p *Patch, endOfBlock bool) {
	subs := *o.snapshot.Load()
	now := time.Now().UnixNano()
	for _, s := range subs {
		switch s.target.Kind {
		case TargetLevel:
			v := p.portValue(s.target.NodeID, s.target.PortID)
			s.levelAcc.push(v)
			if s.levelAcc.ready() && o.allowEmit(s, now) {
				o.publish(s, &ObservableValue{
					Type: TargetLevel, NodeID: s.target.NodeID, PortID: s.target.PortID,
					RMSDb: s.levelAcc.rmsDb(), PeakDb: s.levelAcc.peakDb(),
				})
			}
		case TargetGate:
			v := p.portValue(s.target.NodeID, s.target.PortID)
			active := s.gateAcc.push(v)
			if o.allowEmit(s, now) {
				o.publish(s, &ObservableValue{
					Type: TargetGate, NodeID: s.target.NodeID, PortID: s.target.PortID, Active: active,
				})
			}
		case TargetScope:
			v := p.portValue(s.target.NodeID, s.target.PortID)
			s.scopeAcc.push(v)
			if o.allowEmit(s, now) {
				o.publish(s, &ObservableValue{
					Type: TargetScope, NodeID: s.target.NodeID, PortID: s.target.PortID,
					Samples: s.scopeAcc.snapshot(),
				})
			}
		case TargetSpectrum:
			v := p.portValue(s.target.NodeID, s.target.PortID)
			s.spectrumAcc.push(v)
			if o.allowEmit(s, now) {
				bins, freqRange := s.spectrumAcc.compute(p.SampleRate())
				o.publish(s, &ObservableValue{
					Type: TargetSpectrum, NodeID: s.target.NodeID, PortID: s.target.PortID,
					Bins: bins, FreqRange: freqRange,
				})
			}
		case TargetParam:
			if !endOfBlock {
				continue
			}
			m, ok := p.Node(s.target.NodeID)
			if !ok {
				continue
			}
			introspect, ok := m.(Introspectable)
			if !ok {
				continue
			}
			val, err := introspect.GetParam(s.target.PortID)
			if err != nil {
				continue
			}
			if o.allowEmit(s, now) {
				o.publish(s, &ObservableValue{
					Type: TargetParam, NodeID: s.target.NodeID, PortID: s.target.PortID, Value: val,
				})
			}
		}
	}
}

// publish stores v as s's latest value and marks s dirty (undrained). The
// first publish since the last drain admits s into the pending FIFO; if
// that pushes the FIFO past maxPending, the oldest still-undrained entry
// has its update dropped (dirty cleared, value cleared) - the subscription
// itself is never removed, so it can still report a value from the next
// sample forward.
func (o *Observer) publish(s *subscription, v *ObservableValue) {
	s.value.Store(v)
	if s.dirty.Swap(true) {
		return // already queued; this replaces the prior undrained value in place
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.dirtyOrder = append(o.dirtyOrder, s)
	live := o.dirtyOrder[:0]
	for _, d := range o.dirtyOrder {
		if d.dirty.Load() {
			live = append(live, d)
		}
	}
	o.dirtyOrder = live
	for len(o.dirtyOrder) > o.maxPending {
		oldest := o.dirtyOrder[0]
		o.dirtyOrder = o.dirtyOrder[1:]
		oldest.dirty.Store(false)
		oldest.value.Store(nil)
	}
}

func (o *Observer) allowEmit(s *subscription, nowNanos int64) bool {
	last := s.lastEmitNanos.Load()
	if nowNanos-last < s.intervalNanos {
		return false
	}
	return s.lastEmitNanos.CompareAndSwap(last, nowNanos)
}

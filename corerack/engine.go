package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Control-plane facade: the single entry point an embedder
 *		(WASM glue, plugin shim, server layer) drives the core
 *		through.
 *
 *------------------------------------------------------------------*/

import (
	"github.com/charmbracelet/log"
)

// Engine bundles a module registry, one Patch, and one Observer behind
// a single external API surface.
type Engine struct {
	registry *Registry
	patch    *Patch
	observer *Observer
	logger   *log.Logger
}

// NewEngine builds an engine at the given sample rate with the built-in
// module catalog (modules_*.go) registered and default-Warn validation.
func NewEngine(sampleRate float64) *Engine {
	logger := log.Default()
	patch := NewPatch(sampleRate)
	patch.SetLogger(logger)
	e := &Engine{
		registry: NewRegistry(),
		patch:    patch,
		observer: NewObserver(),
		logger:   logger,
	}
	RegisterBuiltins(e.registry)
	return e
}

// NewEngineFromConfig builds an engine from a loaded EngineConfig, using
// its SampleRate and ValidationMode. The observer keeps its built-in
// 60Hz rate cap and 128-sample Level window whatever ObserverRateHz and
// LevelWindowSize say.
func NewEngineFromConfig(cfg EngineConfig) (*Engine, error) {
	e := NewEngine(cfg.SampleRate)
	mode, err := ParseValidationMode(cfg.ValidationMode)
	if err != nil {
		return nil, err
	}
	e.patch.SetValidationMode(mode)
	return e, nil
}

// Registry exposes the underlying module registry, e.g. so an embedder
// can Register additional module types before building patches.
func (e *Engine) Registry() *Registry { return e.registry }

// Patch exposes the underlying patch graph for advanced callers; most
// embedders should prefer the façade methods below.
func (e *Engine) Patch() *Patch { return e.patch }

// Observer exposes the underlying state observer.
func (e *Engine) Observer() *Observer { return e.observer }

// Catalog returns the full module catalog.
func (e *Engine) Catalog() CatalogResponse { return e.registry.Catalog() }

// SearchCatalog ranks the catalog against a free-text query.
func (e *Engine) SearchCatalog(q string) []CatalogEntry { return e.registry.Search(q) }

// AddModule instantiates typeID and adds it to the patch under name.
func (e *Engine) AddModule(typeID, name string) error {
	m, err := e.registry.Create(typeID, e.patch.SampleRate())
	if err != nil {
		return err
	}
	return e.patch.AddNode(name, m)
}

// RemoveModule removes a node and every cable touching it.
func (e *Engine) RemoveModule(name string) error {
	return e.patch.RemoveNode(name)
}

// Connect adds a cable between two "node.port" references.
func (e *Engine) Connect(from, to string, opts CableOpts) (CableID, error) {
	return e.patch.Connect(from, to, opts)
}

// Disconnect removes a single cable by id.
func (e *Engine) Disconnect(id CableID) error {
	return e.patch.Disconnect(id)
}

// SetOutput designates the sink node.
func (e *Engine) SetOutput(name string) error {
	return e.patch.SetOutput(name)
}

// SetValidationMode changes the patch's cable-compatibility enforcement.
func (e *Engine) SetValidationMode(mode ValidationMode) {
	e.patch.SetValidationMode(mode)
}

// SetParam drives a named module's introspectable parameter.
func (e *Engine) SetParam(name, paramID string, value float64) error {
	m, ok := e.patch.Node(name)
	if !ok {
		return &ErrUnknownPort{Ref: name}
	}
	introspect, ok := m.(Introspectable)
	if !ok {
		return &ErrUnknownPort{Ref: name + "#" + paramID}
	}
	return introspect.SetParam(paramID, value)
}

// GetParam reads a named module's introspectable parameter.
func (e *Engine) GetParam(name, paramID string) (float64, error) {
	m, ok := e.patch.Node(name)
	if !ok {
		return 0, &ErrUnknownPort{Ref: name}
	}
	introspect, ok := m.(Introspectable)
	if !ok {
		return 0, &ErrUnknownPort{Ref: name + "#" + paramID}
	}
	return introspect.GetParam(paramID)
}

// Compile validates the current topology and freezes an execution plan.
func (e *Engine) Compile() error {
	return e.patch.Compile()
}

// Tick advances by one sample and returns (left, right). The state
// observer samples this tick too, as a one-sample block.
func (e *Engine) Tick() (left, right float64, err error) {
	left, right, err = e.patch.Tick()
	if err != nil {
		return 0, 0, err
	}
	e.observer.observeSample(e.patch, true)
	return left, right, nil
}

// ProcessBlock ticks n samples and returns interleaved float32 stereo.
func (e *Engine) ProcessBlock(n int) ([]float32, error) {
	return e.patch.ProcessBlock(n, e.observer)
}

// Reset clears every module's internal state, leaving topology intact.
func (e *Engine) Reset() {
	e.patch.Reset()
}

// Subscribe registers telemetry targets and returns their canonical keys.
func (e *Engine) Subscribe(targets ...SubscriptionTarget) []string {
	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = e.observer.Subscribe(t)
	}
	return keys
}

// Unsubscribe removes telemetry subscriptions by key.
func (e *Engine) Unsubscribe(keys ...string) {
	e.observer.Unsubscribe(keys...)
}

// PollUpdates drains accumulated, deduplicated telemetry updates.
func (e *Engine) PollUpdates() []ObservableValue {
	return e.observer.PollUpdates()
}

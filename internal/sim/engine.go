// Package sim owns the simulation: a synthetic signal generator, the
// windowed detection loop around it, and the anomaly history the dashboard
// renders. All simulation state lives in the Engine struct; nothing here is
// package-level mutable state.
package sim

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signalscope/signalscope/pkg/detectors"
	"github.com/signalscope/signalscope/pkg/detectors/iforest"
	"github.com/signalscope/signalscope/pkg/detectors/mad"
	"github.com/signalscope/signalscope/pkg/detectors/zscore"
	"github.com/signalscope/signalscope/pkg/window"
)

// AnomalyRecord marks one observation that was flagged at detection time.
// Records are immutable and survive until an explicit reset.
type AnomalyRecord struct {
	ID         string    `json:"id"`
	TimeStep   int       `json:"time_step"`
	Value      float64   `json:"value"`
	DetectedAt time.Time `json:"detected_at"`
}

// Settings is the tunable configuration bag the controls surface edits.
type Settings struct {
	Method          detectors.Method `json:"method"`
	ZScoreThreshold float64          `json:"zscore_threshold"`
	MADThreshold    float64          `json:"mad_threshold"`
	Contamination   float64          `json:"contamination"`
	WindowCapacity  int              `json:"window_capacity"`
}

// DefaultSettings mirrors the dashboard's initial control positions.
func DefaultSettings() Settings {
	return Settings{
		Method:          detectors.MethodZScore,
		ZScoreThreshold: 3.0,
		MADThreshold:    3.5,
		Contamination:   0.05,
		WindowCapacity:  100,
	}
}

// Validate rejects settings outside the documented ranges.
func (s Settings) Validate() error {
	if _, err := detectors.ParseMethod(string(s.Method)); err != nil {
		return err
	}
	if err := detectors.ValidateThreshold(s.ZScoreThreshold); err != nil {
		return err
	}
	if err := detectors.ValidateThreshold(s.MADThreshold); err != nil {
		return err
	}
	if err := detectors.ValidateContamination(s.Contamination); err != nil {
		return err
	}
	if s.WindowCapacity < 1 {
		return window.ErrInvalidCapacity
	}
	return nil
}

// Frame is what one tick hands to the renderer transport.
type Frame struct {
	TimeStep int            `json:"time_step"`
	Value    float64        `json:"value"`
	Anomaly  *AnomalyRecord `json:"anomaly,omitempty"`
}

// State is a full snapshot for the renderer: every historical value with its
// time index, every anomaly record, and the capped log.
type State struct {
	TimeStep  int             `json:"time_step"`
	Values    []float64       `json:"values"`
	Anomalies []AnomalyRecord `json:"anomalies"`
	Log       []string        `json:"log"`
	Settings  Settings        `json:"settings"`
}

// Engine runs the tick-level policy: push the new observation, detect once
// the window is full, and record an anomaly only when the newest element is
// flagged. Older elements are never retroactively re-flagged; their flags
// from past ticks are simply discarded.
//
// The tick path is single-actor, but the HTTP layer reads state and changes
// settings concurrently, so the engine guards itself with a RWMutex. The
// window, detectors and generator stay lock-free underneath it.
type Engine struct {
	mu sync.RWMutex

	win      *window.Window
	gen      *Generator
	settings Settings

	history  []float64
	records  []AnomalyRecord
	log      anomalyLog
	timeStep int

	logger logrus.FieldLogger
}

// NewEngine creates an engine with validated settings.
func NewEngine(settings Settings, genCfg GeneratorConfig, logger logrus.FieldLogger) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	win, err := window.New(settings.WindowCapacity)
	if err != nil {
		return nil, err
	}

	return &Engine{
		win:      win,
		gen:      NewGenerator(genCfg),
		settings: settings,
		logger:   logger,
	}, nil
}

// Tick advances the generator one step and runs the detection policy on the
// new observation.
func (e *Engine) Tick() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(e.gen.Next())
}

// Ingest runs the same policy on an externally supplied observation. Test
// harnesses use this to drive the engine deterministically without the
// generator.
func (e *Engine) Ingest(value float64) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(value)
}

func (e *Engine) step(value float64) Frame {
	e.win.Push(value)
	e.history = append(e.history, value)

	step := e.timeStep
	e.timeStep++

	frame := Frame{TimeStep: step, Value: value}

	// Detection waits for a full window; statistics over a partial window
	// are too unstable to act on.
	if !e.win.Full() {
		return frame
	}

	snapshot := e.win.Snapshot()
	flags := e.detector().Detect(snapshot)

	// Only the newest element's flag is acted on.
	if !flags[len(flags)-1] {
		return frame
	}

	rec := AnomalyRecord{
		ID:         uuid.NewString(),
		TimeStep:   step,
		Value:      value,
		DetectedAt: time.Now(),
	}
	e.records = append(e.records, rec)
	e.log.Add(rec)

	e.logger.WithFields(logrus.Fields{
		"time_step": rec.TimeStep,
		"value":     rec.Value,
		"method":    e.settings.Method,
	}).Info("anomaly detected")

	frame.Anomaly = &rec
	return frame
}

// detector builds the currently selected variant from current parameters.
// Every variant is stateless per call, so construction is cheap and nothing
// is carried between ticks.
func (e *Engine) detector() detectors.Detector {
	switch e.settings.Method {
	case detectors.MethodMAD:
		return mad.New(mad.WithThreshold(e.settings.MADThreshold))
	case detectors.MethodIForest:
		return iforest.New(iforest.WithContamination(e.settings.Contamination))
	default:
		return zscore.New(zscore.WithThreshold(e.settings.ZScoreThreshold))
	}
}

// Reset returns the engine to its initial condition: empty window, empty
// history and records, generator back at its start value. Safe mid-run.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.win.Clear()
	e.gen.Reset()
	e.history = nil
	e.records = nil
	e.log.Clear()
	e.timeStep = 0

	e.logger.Info("simulation reset")
}

// SetMethod switches the detection variant. Takes effect on the next tick;
// history is not recomputed.
func (e *Engine) SetMethod(m detectors.Method) error {
	if _, err := detectors.ParseMethod(string(m)); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Method = m
	return nil
}

// SetZScoreThreshold updates the z-score cutoff.
func (e *Engine) SetZScoreThreshold(t float64) error {
	if err := detectors.ValidateThreshold(t); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.ZScoreThreshold = t
	return nil
}

// SetMADThreshold updates the modified-z cutoff.
func (e *Engine) SetMADThreshold(t float64) error {
	if err := detectors.ValidateThreshold(t); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.MADThreshold = t
	return nil
}

// SetContamination updates the isolation forest's expected outlier fraction.
func (e *Engine) SetContamination(c float64) error {
	if err := detectors.ValidateContamination(c); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Contamination = c
	return nil
}

// SetWindowCapacity resizes the window mid-run. Shrinking evicts the oldest
// observations; growing leaves the contents alone until enough ticks refill
// it.
func (e *Engine) SetWindowCapacity(capacity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.win.Resize(capacity); err != nil {
		return err
	}
	e.settings.WindowCapacity = capacity
	return nil
}

// Settings returns the current configuration bag.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// State snapshots everything the renderer needs. Slices are copies; the
// caller cannot alias engine internals.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	values := make([]float64, len(e.history))
	copy(values, e.history)

	records := make([]AnomalyRecord, len(e.records))
	copy(records, e.records)

	return State{
		TimeStep:  e.timeStep,
		Values:    values,
		Anomalies: records,
		Log:       e.log.Entries(),
		Settings:  e.settings,
	}
}

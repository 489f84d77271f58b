// Package progress publishes run progress as flat key/value events.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sawpanic/valuescan/internal/providers/guards"
)

// Type names a progress event.
type Type string

const (
	TypeCandidates Type = "candidates"
	TypeProcessing Type = "processing"
	TypeScored     Type = "scored"
	TypeWritingCSV Type = "writing_csv"
	TypeDone       Type = "done"
)

// Event is one progress record. Fields that do not apply to a type are omitted.
type Event struct {
	Type      Type   `json:"type"`
	RunID     string `json:"run_id"`
	ElapsedMs int64  `json:"elapsedMs"`

	Count  int  `json:"count,omitempty"`
	Manual bool `json:"manual,omitempty"`

	Processed int    `json:"processed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
	Calls     int    `json:"calls,omitempty"`
	Successes int    `json:"successes,omitempty"`
	Failures  int    `json:"failures,omitempty"`

	Eligible int `json:"eligible,omitempty"`
	Scored   int `json:"scored,omitempty"`

	Path     string `json:"path,omitempty"`
	Selected int    `json:"selected,omitempty"`
}

// Emitter receives events.
type Emitter interface {
	Emit(Event)
}

// Reporter stamps events with the run id and elapsed time and fans them out.
type Reporter struct {
	runID    string
	start    time.Time
	now      func() time.Time
	emitters []Emitter

	mu   sync.RWMutex
	last Event
}

// NewReporter creates a reporter with a fresh run id.
func NewReporter(emitters ...Emitter) *Reporter {
	return NewReporterWithClock(time.Now, emitters...)
}

// NewReporterWithClock is NewReporter with an injected clock.
func NewReporterWithClock(now func() time.Time, emitters ...Emitter) *Reporter {
	return &Reporter{
		runID:    uuid.NewString(),
		start:    now(),
		now:      now,
		emitters: emitters,
	}
}

// RunID returns the run identifier carried by every event.
func (r *Reporter) RunID() string { return r.runID }

// Last returns the most recent event.
func (r *Reporter) Last() Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Reporter) emit(e Event) {
	e.RunID = r.runID
	e.ElapsedMs = r.now().Sub(r.start).Milliseconds()

	r.mu.Lock()
	r.last = e
	r.mu.Unlock()

	for _, em := range r.emitters {
		em.Emit(e)
	}
}

func (r *Reporter) Candidates(count int, manual bool) {
	r.emit(Event{Type: TypeCandidates, Count: count, Manual: manual})
}

func (r *Reporter) Processing(processed, total int, symbol string, counts guards.Counts) {
	r.emit(Event{
		Type:      TypeProcessing,
		Processed: processed,
		Total:     total,
		Symbol:    symbol,
		Calls:     counts.Calls,
		Successes: counts.Successes,
		Failures:  counts.Failures,
	})
}

func (r *Reporter) Scored(eligible, scored int) {
	r.emit(Event{Type: TypeScored, Eligible: eligible, Scored: scored})
}

func (r *Reporter) WritingCSV(path string) {
	r.emit(Event{Type: TypeWritingCSV, Path: path})
}

func (r *Reporter) Done(selected int, path string) {
	r.emit(Event{Type: TypeDone, Selected: selected, Path: path})
}

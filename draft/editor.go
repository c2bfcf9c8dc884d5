package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Editor state machine values.
type State int

const (
	// Clean: working copy matches the last sync point.
	Clean State = iota
	// Dirty: working copy has unsaved edits.
	Dirty
	// AwaitingDecision: a save was requested while the brief had diverged
	// from the snapshot; the caller must resolve regenerate-or-keep.
	AwaitingDecision
)

// Save outcomes surfaced to the caller.
type Outcome int

const (
	// Saved: the record was committed to the store.
	Saved Outcome = iota
	// DecisionRequired: the brief diverged; nothing was persisted.
	DecisionRequired
	// ReadOnly: the record is a demo entry; saving is a no-op. This is
	// informational, not an error.
	ReadOnly
)

// Speech status values, mirroring the persisted enum so this package
// stays independent of the storage model.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
)

var (
	ErrBusy              = errors.New("another save or regeneration is in flight")
	ErrNoPendingDecision = errors.New("no regeneration decision is pending")
	ErrQuotaExhausted    = errors.New("re-analysis limit reached for this session")
)

// MaxReanalyses is the per-editing-session re-analysis allowance. It is a
// soft client-side limit with no store-side backstop; it resets whenever
// the editor is reopened.
const MaxReanalyses = 3

// Store persists the full speech record. Save is treated as atomic: it
// either writes everything or reports an error with nothing written.
type Store interface {
	Save(ctx context.Context, id uint, brief Brief, content, status string) error
}

// Generator produces speech prose from a brief.
type Generator interface {
	Generate(ctx context.Context, brief Brief) (string, error)
}

// Editor mediates between free-form editing of a speech and the decision
// to regenerate AI content versus saving verbatim edits. It holds the
// working copy plus a snapshot of the brief taken at load or last
// successful save, used only for divergence detection. One editor serves
// one editing session; it is not shared across speeches.
//
// At most one save or regeneration runs at a time; a second request is
// refused with ErrBusy instead of queueing. The mutex is never held
// across a store or gateway call, so reads stay responsive while one is
// in flight.
type Editor struct {
	mu       sync.Mutex
	inflight bool

	record   Record
	brief    Brief
	content  string
	status   string
	snapshot Brief
	state    State

	reanalyses int

	store     Store
	generator Generator
}

// NewEditor returns an editor bound to its collaborators.
func NewEditor(store Store, generator Generator) *Editor {
	return &Editor{store: store, generator: generator}
}

// Load initializes the working copy and snapshot from a persisted or demo
// record. The editor starts Clean.
func (e *Editor) Load(record Record, brief Brief, content, status string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.record = record
	e.brief = brief
	e.content = content
	e.status = status
	e.snapshot = brief
	e.state = Clean
	e.reanalyses = 0
}

// Edit replaces the working brief and content. It never touches the
// snapshot and never triggers side effects.
func (e *Editor) Edit(brief Brief, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.brief = brief
	e.content = content
	if e.state == Clean {
		e.state = Dirty
	}
}

// Diverged reports whether a structural brief field differs from the
// snapshot.
func (e *Editor) Diverged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brief.DivergedFrom(e.snapshot)
}

func (e *Editor) beginOp() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inflight {
		return ErrBusy
	}
	e.inflight = true
	return nil
}

func (e *Editor) endOp() {
	e.mu.Lock()
	e.inflight = false
	e.mu.Unlock()
}

// RequestSave attempts to persist the working copy. On a demo record it
// returns ReadOnly without touching the store. If the brief has diverged
// from the snapshot it transitions to AwaitingDecision and persists
// nothing; otherwise it commits immediately.
func (e *Editor) RequestSave(ctx context.Context, markComplete bool) (Outcome, error) {
	if err := e.beginOp(); err != nil {
		return 0, err
	}
	defer e.endOp()

	e.mu.Lock()
	if e.record.IsDemo() {
		e.mu.Unlock()
		return ReadOnly, nil
	}
	if e.brief.DivergedFrom(e.snapshot) {
		e.state = AwaitingDecision
		e.mu.Unlock()
		return DecisionRequired, nil
	}
	e.mu.Unlock()

	if err := e.commit(ctx, markComplete); err != nil {
		return 0, err
	}
	return Saved, nil
}

// ResolveRegeneration resolves a pending AwaitingDecision state. With
// regenerate false the currently edited content is committed as-is. With
// regenerate true the generator is invoked with the current brief and the
// returned prose replaces the content before committing. A generator or
// store failure leaves the edited brief and content untouched so no work
// is lost, and the decision stays pending for a retry.
func (e *Editor) ResolveRegeneration(ctx context.Context, regenerate, markComplete bool) error {
	if err := e.beginOp(); err != nil {
		return err
	}
	defer e.endOp()

	e.mu.Lock()
	if e.state != AwaitingDecision {
		e.mu.Unlock()
		return ErrNoPendingDecision
	}
	brief := e.brief
	e.mu.Unlock()

	if regenerate {
		content, err := e.generator.Generate(ctx, brief)
		if err != nil {
			return fmt.Errorf("regeneration failed: %w", err)
		}
		e.mu.Lock()
		e.content = content
		e.mu.Unlock()
	}

	return e.commit(ctx, markComplete)
}

// commit upserts the full record and, on success, refreshes the snapshot
// and returns the editor to Clean. Status advances draft -> completed and
// never reverts.
func (e *Editor) commit(ctx context.Context, markComplete bool) error {
	e.mu.Lock()
	id := e.record.PersistedID()
	brief := e.brief
	content := e.content
	status := e.status
	e.mu.Unlock()

	if markComplete {
		status = StatusCompleted
	}

	if err := e.store.Save(ctx, id, brief, content, status); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	e.mu.Lock()
	e.status = status
	e.snapshot = brief
	e.state = Clean
	e.mu.Unlock()
	return nil
}

// State returns the current state machine position.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Record returns the loaded record reference.
func (e *Editor) Record() Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record
}

// Brief returns the working brief.
func (e *Editor) Brief() Brief {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brief
}

// Content returns the working prose.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

// Status returns the working status.
func (e *Editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Snapshot returns the brief values at the last sync point.
func (e *Editor) Snapshot() Brief {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// ReanalysesLeft returns the remaining re-analysis allowance.
func (e *Editor) ReanalysesLeft() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MaxReanalyses - e.reanalyses
}

// NoteReanalysis consumes one unit of the re-analysis allowance. It must
// be called before the gateway is contacted so an exhausted quota never
// costs a network call.
func (e *Editor) NoteReanalysis() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reanalyses >= MaxReanalyses {
		return ErrQuotaExhausted
	}
	e.reanalyses++
	return nil
}

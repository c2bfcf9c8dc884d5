package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedRecord struct {
	id      uint
	brief   Brief
	content string
	status  string
}

type fakeStore struct {
	saves []savedRecord
	err   error
}

func (s *fakeStore) Save(_ context.Context, id uint, brief Brief, content, status string) error {
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, savedRecord{id: id, brief: brief, content: content, status: status})
	return nil
}

type fakeGenerator struct {
	content string
	err     error
	calls   int
}

func (g *fakeGenerator) Generate(_ context.Context, _ Brief) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

func testBrief() Brief {
	return Brief{
		Title:                "T",
		Topic:                "X",
		KeyMessage:           "one idea",
		AudienceDemographics: "engineers",
		SpeakerBackground:    "researcher",
		DurationMinutes:      15,
		Tone:                 "inspiring",
	}
}

func loadedEditor(store Store, gen Generator) *Editor {
	e := NewEditor(store, gen)
	e.Load(PersistedRecord(42), testBrief(), "original content", StatusDraft)
	return e
}

func TestTitleAndContentEditsNeverPrompt(t *testing.T) {
	store := &fakeStore{}
	e := loadedEditor(store, &fakeGenerator{})

	brief := testBrief()
	brief.Title = "A different title"
	e.Edit(brief, "completely rewritten prose")

	assert.False(t, e.Diverged())

	outcome, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, Saved, outcome)
	require.Len(t, store.saves, 1)
	assert.Equal(t, "A different title", store.saves[0].brief.Title)
	assert.Equal(t, "completely rewritten prose", store.saves[0].content)
}

func TestStructuralEditsAlwaysPrompt(t *testing.T) {
	edits := map[string]func(*Brief){
		"topic":    func(b *Brief) { b.Topic = "Y" },
		"message":  func(b *Brief) { b.KeyMessage = "another idea" },
		"audience": func(b *Brief) { b.AudienceDemographics = "students" },
		"speaker":  func(b *Brief) { b.SpeakerBackground = "founder" },
		"duration": func(b *Brief) { b.DurationMinutes = 18 },
		"tone":     func(b *Brief) { b.Tone = "humorous" },
	}

	for name, mutate := range edits {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			e := loadedEditor(store, &fakeGenerator{})

			brief := testBrief()
			mutate(&brief)
			e.Edit(brief, e.Content())

			assert.True(t, e.Diverged())

			outcome, err := e.RequestSave(context.Background(), false)
			require.NoError(t, err)
			assert.Equal(t, DecisionRequired, outcome)
			assert.Equal(t, AwaitingDecision, e.State())
			assert.Empty(t, store.saves, "divergence must not persist anything")
		})
	}
}

func TestResolveKeepContent(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{content: "regenerated"}
	e := loadedEditor(store, gen)

	brief := testBrief()
	brief.DurationMinutes = 18
	e.Edit(brief, e.Content())

	outcome, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, DecisionRequired, outcome)

	require.NoError(t, e.ResolveRegeneration(context.Background(), false, false))

	assert.Zero(t, gen.calls)
	require.Len(t, store.saves, 1)
	assert.Equal(t, 18, store.saves[0].brief.DurationMinutes)
	assert.Equal(t, "original content", store.saves[0].content)
	assert.Equal(t, StatusDraft, store.saves[0].status)
	assert.Equal(t, Clean, e.State())
}

func TestResolveRegenerate(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{content: "a brand new speech"}
	e := loadedEditor(store, gen)

	brief := testBrief()
	brief.Tone = "persuasive"
	e.Edit(brief, e.Content())

	_, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)
	require.NoError(t, e.ResolveRegeneration(context.Background(), true, false))

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "a brand new speech", e.Content())
	assert.Equal(t, brief, e.Snapshot())
	require.Len(t, store.saves, 1)
	assert.Equal(t, "a brand new speech", store.saves[0].content)
}

func TestRegenerationFailurePreservesWork(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{err: errors.New("upstream down")}
	e := loadedEditor(store, gen)

	brief := testBrief()
	brief.Topic = "something else"
	e.Edit(brief, "edited prose")

	_, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)

	err = e.ResolveRegeneration(context.Background(), true, false)
	require.Error(t, err)

	assert.Empty(t, store.saves, "no partial persistence on gateway failure")
	assert.Equal(t, "edited prose", e.Content())
	assert.Equal(t, brief, e.Brief())
	assert.Equal(t, AwaitingDecision, e.State(), "decision stays pending for retry")
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	e := loadedEditor(store, &fakeGenerator{})

	e.Edit(testBrief(), "edited prose")

	_, err := e.RequestSave(context.Background(), true)
	require.Error(t, err)

	assert.Equal(t, StatusDraft, e.Status())
	assert.Equal(t, "edited prose", e.Content())
	assert.Equal(t, testBrief(), e.Snapshot(), "snapshot not refreshed on failure")
}

func TestCommitNeverRevertsCompleted(t *testing.T) {
	store := &fakeStore{}
	e := NewEditor(store, &fakeGenerator{})
	e.Load(PersistedRecord(7), testBrief(), "done speech", StatusCompleted)

	e.Edit(testBrief(), "still done")
	outcome, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, Saved, outcome)

	assert.Equal(t, StatusCompleted, e.Status())
	require.Len(t, store.saves, 1)
	assert.Equal(t, StatusCompleted, store.saves[0].status)
}

func TestMarkCompleteAdvancesStatus(t *testing.T) {
	store := &fakeStore{}
	e := loadedEditor(store, &fakeGenerator{})

	outcome, err := e.RequestSave(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, Saved, outcome)
	assert.Equal(t, StatusCompleted, e.Status())
}

func TestDemoSaveIsReadOnlyNoop(t *testing.T) {
	store := &fakeStore{}
	e := NewEditor(store, &fakeGenerator{})
	e.Load(DemoRecord("demo-speech-001"), testBrief(), "demo content", StatusCompleted)

	outcome, err := e.RequestSave(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, ReadOnly, outcome)
	assert.Empty(t, store.saves)
}

func TestDurationEditScenario(t *testing.T) {
	// Brief loaded with 15 minutes, duration edited to 18, save requested.
	store := &fakeStore{}
	e := NewEditor(store, &fakeGenerator{})
	e.Load(PersistedRecord(1), Brief{Title: "T", Topic: "X", DurationMinutes: 15, Tone: "inspiring"}, "", StatusDraft)

	brief := e.Brief()
	brief.DurationMinutes = 18
	e.Edit(brief, e.Content())

	outcome, err := e.RequestSave(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, DecisionRequired, outcome)
	assert.Equal(t, AwaitingDecision, e.State())
	assert.Empty(t, store.saves)

	require.NoError(t, e.ResolveRegeneration(context.Background(), false, false))
	require.Len(t, store.saves, 1)
	assert.Equal(t, 18, store.saves[0].brief.DurationMinutes)
	assert.Equal(t, "", store.saves[0].content)
	assert.Equal(t, StatusDraft, store.saves[0].status)
}

func TestBusyEditorRefusesSecondOperation(t *testing.T) {
	e := loadedEditor(&fakeStore{}, &fakeGenerator{})
	e.inflight = true

	_, err := e.RequestSave(context.Background(), false)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, e.ResolveRegeneration(context.Background(), true, false), ErrBusy)
}

func TestResolveWithoutPendingDecision(t *testing.T) {
	e := loadedEditor(&fakeStore{}, &fakeGenerator{})
	err := e.ResolveRegeneration(context.Background(), true, false)
	assert.ErrorIs(t, err, ErrNoPendingDecision)
}

func TestReanalysisQuota(t *testing.T) {
	e := loadedEditor(&fakeStore{}, &fakeGenerator{})

	for i := 0; i < MaxReanalyses; i++ {
		require.NoError(t, e.NoteReanalysis())
	}
	assert.Equal(t, 0, e.ReanalysesLeft())
	assert.ErrorIs(t, e.NoteReanalysis(), ErrQuotaExhausted)

	// Reopening the editor resets the allowance.
	e.Load(PersistedRecord(42), testBrief(), "", StatusDraft)
	assert.Equal(t, MaxReanalyses, e.ReanalysesLeft())
}

func TestResolveRecord(t *testing.T) {
	rec, err := ResolveRecord("42")
	require.NoError(t, err)
	assert.False(t, rec.IsDemo())
	assert.Equal(t, uint(42), rec.PersistedID())

	rec, err = ResolveRecord("demo-speech-001")
	require.NoError(t, err)
	assert.True(t, rec.IsDemo())
	assert.Equal(t, "demo-speech-001", rec.DemoID())

	rec, err = ResolveRecord("demo")
	require.NoError(t, err)
	assert.True(t, rec.IsDemo())
	assert.Equal(t, "demo-speech-001", rec.DemoID())

	_, err = ResolveRecord("not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEstimateMinutes(t *testing.T) {
	assert.Equal(t, 0, EstimateMinutes("   "))
	assert.Equal(t, 1, EstimateMinutes("just a few words"))

	words := make([]byte, 0, 131*2)
	for i := 0; i < 131; i++ {
		words = append(words, 'w', ' ')
	}
	assert.Equal(t, 2, EstimateMinutes(string(words)))
}

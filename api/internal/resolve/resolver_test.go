package resolve

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/store"
)

// fakeStore — in-memory замена DetectionRepo. SaveMatch пишет все selected_*
// поля разом, как и настоящий UPDATE.
type fakeStore struct {
	rows      map[string]store.Detection
	saveCalls int
	saveErr   error
}

func newFakeStore(ids ...string) *fakeStore {
	f := &fakeStore{rows: map[string]store.Detection{}}
	for _, id := range ids {
		f.rows[id] = store.Detection{ID: id, ImageID: "img-1", Label: "oat milk"}
	}
	return f
}

func (f *fakeStore) Get(_ context.Context, id string) (store.Detection, error) {
	d, ok := f.rows[id]
	if !ok {
		return store.Detection{}, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) SaveMatch(_ context.Context, id string, m store.SelectedMatch, now time.Time) (store.Detection, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return store.Detection{}, f.saveErr
	}
	d, ok := f.rows[id]
	if !ok {
		return store.Detection{}, store.ErrNotFound
	}
	d.SelectedGTIN = &m.GTIN
	d.SelectedProductName = &m.ProductName
	d.SelectedBrandName = &m.BrandName
	d.SelectedCategory = &m.Category
	d.SelectedImageURL = &m.ImageURL
	d.SelectedCandidateID = &m.CandidateID
	d.FullyAnalyzed = true
	d.AnalysisCompletedAt = &now
	d.UpdatedAt = now
	f.rows[id] = d
	return d, nil
}

var cand9 = catalog.Candidate{
	ID:          "cand-9",
	GTIN:        "0001",
	ProductName: "Oat Milk",
	BrandName:   "Acme",
	Category:    "Dairy-Alt",
	ImageURL:    "https://x/img.png",
}

func newResolver(fs *fakeStore) *Resolver {
	r := New(fs)
	r.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestResolve_CommitsSelectedMatch(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)
	r.Propose("det-1", []catalog.Candidate{cand9})

	det, match, err := r.Resolve(context.Background(), "det-1", "cand-9")
	require.NoError(t, err)

	assert.True(t, det.FullyAnalyzed)
	require.NotNil(t, det.SelectedGTIN)
	assert.Equal(t, "0001", *det.SelectedGTIN)
	assert.Equal(t, "Oat Milk", *det.SelectedProductName)
	assert.Equal(t, "Acme", *det.SelectedBrandName)
	assert.Equal(t, "Dairy-Alt", *det.SelectedCategory)
	assert.Equal(t, "https://x/img.png", *det.SelectedImageURL)
	assert.Equal(t, "cand-9", *det.SelectedCandidateID)
	assert.NotNil(t, det.AnalysisCompletedAt)

	assert.Equal(t, Match{
		GTIN:        "0001",
		ProductName: "Oat Milk",
		BrandName:   "Acme",
		Category:    "Dairy-Alt",
		ImageURL:    "https://x/img.png",
	}, match)
}

func TestResolve_Idempotent(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)
	r.Propose("det-1", []catalog.Candidate{cand9})

	first, m1, err := r.Resolve(context.Background(), "det-1", "cand-9")
	require.NoError(t, err)
	second, m2, err := r.Resolve(context.Background(), "det-1", "cand-9")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, m1, m2)
}

func TestResolve_OverwriteWithDifferentCandidate(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)
	other := catalog.Candidate{
		ID: "cand-2", GTIN: "0002", ProductName: "Oat Drink",
		BrandName: "Brio", Category: "Drinks", ImageURL: "https://x/2.png",
	}
	r.Propose("det-1", []catalog.Candidate{cand9, other})

	_, _, err := r.Resolve(context.Background(), "det-1", "cand-9")
	require.NoError(t, err)

	// повторный резолв другим кандидатом — перезапись, не отказ
	det, _, err := r.Resolve(context.Background(), "det-1", "cand-2")
	require.NoError(t, err)

	// все selected_* поля от нового кандидата, смешения нет
	assert.Equal(t, "0002", *det.SelectedGTIN)
	assert.Equal(t, "Oat Drink", *det.SelectedProductName)
	assert.Equal(t, "Brio", *det.SelectedBrandName)
	assert.Equal(t, "Drinks", *det.SelectedCategory)
	assert.Equal(t, "https://x/2.png", *det.SelectedImageURL)
	assert.Equal(t, "cand-2", *det.SelectedCandidateID)
	assert.True(t, det.FullyAnalyzed)
}

func TestResolve_UnknownCandidateLeavesRowUntouched(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)
	r.Propose("det-1", []catalog.Candidate{cand9})

	_, _, err := r.Resolve(context.Background(), "det-1", "cand-404")
	assert.True(t, errors.Is(err, pipeline.ErrNotFound))
	assert.Zero(t, fs.saveCalls, "хранилище не должно трогаться")

	d, _ := fs.Get(context.Background(), "det-1")
	assert.False(t, d.FullyAnalyzed)
	assert.Nil(t, d.SelectedGTIN)
}

func TestResolve_NoProposedSetIsNotFound(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)

	_, _, err := r.Resolve(context.Background(), "det-1", "cand-9")
	assert.True(t, errors.Is(err, pipeline.ErrNotFound))
}

func TestResolve_UnknownDetectionIsNotFound(t *testing.T) {
	fs := newFakeStore()
	r := newResolver(fs)
	r.Propose("det-missing", []catalog.Candidate{cand9})

	_, _, err := r.Resolve(context.Background(), "det-missing", "cand-9")
	assert.True(t, errors.Is(err, pipeline.ErrNotFound))
}

func TestResolve_StorageFailureIsPersistenceError(t *testing.T) {
	fs := newFakeStore("det-1")
	fs.saveErr = errors.New("connection reset")
	r := newResolver(fs)
	r.Propose("det-1", []catalog.Candidate{cand9})

	_, _, err := r.Resolve(context.Background(), "det-1", "cand-9")
	assert.True(t, errors.Is(err, pipeline.ErrPersistence))
}

func TestStateOf(t *testing.T) {
	fs := newFakeStore("det-1")
	r := newResolver(fs)

	d, _ := fs.Get(context.Background(), "det-1")
	assert.Equal(t, StatePending, r.StateOf(d))

	r.Propose("det-1", []catalog.Candidate{cand9})
	assert.Equal(t, StateCandidatesProposed, r.StateOf(d))

	_, _, err := r.Resolve(context.Background(), "det-1", "cand-9")
	require.NoError(t, err)
	d, _ = fs.Get(context.Background(), "det-1")
	assert.Equal(t, StateResolved, r.StateOf(d))
}

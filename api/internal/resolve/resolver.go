package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"shelf-scan/api/internal/catalog"
	"shelf-scan/api/internal/pipeline"
	"shelf-scan/api/internal/store"
)

// Статусы жизненного цикла детекции. CANDIDATES_PROPOSED живёт только в
// рабочем наборе процесса и в базу не пишется.
const (
	StatePending            = "PENDING"
	StateCandidatesProposed = "CANDIDATES_PROPOSED"
	StateResolved           = "RESOLVED"
)

// DetectionStore — то, что резолверу нужно от хранилища. Интерфейс, чтобы
// тесты подставляли фейк.
type DetectionStore interface {
	Get(ctx context.Context, id string) (store.Detection, error)
	SaveMatch(ctx context.Context, id string, m store.SelectedMatch, now time.Time) (store.Detection, error)
}

// Match — компактный снимок закоммиченного выбора (тело savedMatch в API).
type Match struct {
	GTIN        string `json:"gtin"`
	ProductName string `json:"productName"`
	BrandName   string `json:"brandName"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

// Resolver — единственный путь мутации строки детекции.
type Resolver struct {
	Detections DetectionStore

	proposed sync.Map // detectionID -> []catalog.Candidate
	now      func() time.Time
}

func New(ds DetectionStore) *Resolver {
	return &Resolver{Detections: ds, now: time.Now}
}

// Propose паркует кандидатов матчера для детекции (переход в
// CANDIDATES_PROPOSED). Повторный вызов замещает набор.
func (r *Resolver) Propose(detectionID string, cands []catalog.Candidate) {
	r.proposed.Store(detectionID, cands)
}

// Proposed возвращает рабочий набор детекции.
func (r *Resolver) Proposed(detectionID string) ([]catalog.Candidate, bool) {
	v, ok := r.proposed.Load(detectionID)
	if !ok {
		return nil, false
	}
	return v.([]catalog.Candidate), true
}

// StateOf вычисляет текущий статус детекции.
func (r *Resolver) StateOf(d store.Detection) string {
	if d.FullyAnalyzed {
		return StateResolved
	}
	if _, ok := r.proposed.Load(d.ID); ok {
		return StateCandidatesProposed
	}
	return StatePending
}

// Resolve коммитит выбор оператора: все selected_* поля пишутся одним
// row-scoped UPDATE. Идемпотентен; другой candidateID для уже решённой
// детекции перезаписывает выбор (исправление без отдельного unresolve).
func (r *Resolver) Resolve(ctx context.Context, detectionID, candidateID string) (store.Detection, Match, error) {
	cands, ok := r.Proposed(detectionID)
	if !ok {
		return store.Detection{}, Match{}, fmt.Errorf("%w: no candidates proposed for detection %s", pipeline.ErrNotFound, detectionID)
	}
	var cand *catalog.Candidate
	for i := range cands {
		if cands[i].ID == candidateID {
			cand = &cands[i]
			break
		}
	}
	if cand == nil {
		return store.Detection{}, Match{}, fmt.Errorf("%w: candidate %s", pipeline.ErrNotFound, candidateID)
	}

	d, err := r.Detections.SaveMatch(ctx, detectionID, store.SelectedMatch{
		CandidateID: cand.ID,
		GTIN:        cand.GTIN,
		ProductName: cand.ProductName,
		BrandName:   cand.BrandName,
		Category:    cand.Category,
		ImageURL:    cand.ImageURL,
	}, r.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Detection{}, Match{}, fmt.Errorf("%w: detection %s", pipeline.ErrNotFound, detectionID)
		}
		return store.Detection{}, Match{}, fmt.Errorf("%w: %v", pipeline.ErrPersistence, err)
	}

	m := Match{
		GTIN:        cand.GTIN,
		ProductName: cand.ProductName,
		BrandName:   cand.BrandName,
		Category:    cand.Category,
		ImageURL:    cand.ImageURL,
	}
	return d, m, nil
}

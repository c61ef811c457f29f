package card_review_test

import (
	"bytes"
	"cmp"
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-vocab/internal/domain"
	"github.com/phrazzld/scry-vocab/internal/service/card_review"
	"github.com/phrazzld/scry-vocab/internal/store"
)

// fakeCardRepo is an in-memory CardRepository. WithTx returns the same
// instance, so writes are visible immediately and never rolled back.
type fakeCardRepo struct {
	mu    sync.Mutex
	db    *sql.DB
	cards map[uuid.UUID]*domain.Card

	lockErr   error
	listErr   error
	updateErr error

	listCalls   int
	updateCalls int
	txBinds     int
}

func newFakeCardRepo(db *sql.DB, cards ...*domain.Card) *fakeCardRepo {
	r := &fakeCardRepo{db: db, cards: make(map[uuid.UUID]*domain.Card)}
	for _, c := range cards {
		r.cards[c.ID] = c.Clone()
	}
	return r
}

func (r *fakeCardRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	card, ok := r.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

func (r *fakeCardRepo) ListDue(
	_ context.Context,
	asOf time.Time,
	after *store.DueCursor,
	limit int,
) ([]*domain.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}

	var due []*domain.Card
	for _, c := range r.cards {
		if c.IsDue(asOf) {
			due = append(due, c.Clone())
		}
	}
	slices.SortFunc(due, compareDue)

	if after != nil {
		marker := &domain.Card{
			NextReviewAt: after.NextReviewAt,
			EaseFactor:   after.EaseFactor,
			VocabularyID: after.VocabularyID,
			ID:           after.CardID,
		}
		idx := slices.IndexFunc(due, func(c *domain.Card) bool { return compareDue(c, marker) > 0 })
		if idx < 0 {
			return nil, nil
		}
		due = due[idx:]
	}

	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func compareDue(a, b *domain.Card) int {
	if c := a.NextReviewAt.Compare(b.NextReviewAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.EaseFactor, b.EaseFactor); c != 0 {
		return c
	}
	if c := bytes.Compare(a.VocabularyID[:], b.VocabularyID[:]); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

func (r *fakeCardRepo) Update(_ context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}
	if stored.Version != card.Version {
		return store.ErrVersionConflict
	}
	card.Version++
	r.cards[card.ID] = card.Clone()
	return nil
}

func (r *fakeCardRepo) WithTx(*sql.Tx) card_review.CardRepository {
	r.mu.Lock()
	r.txBinds++
	r.mu.Unlock()
	return r
}

func (r *fakeCardRepo) DB() *sql.DB {
	return r.db
}

func (r *fakeCardRepo) get(id uuid.UUID) *domain.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cards[id].Clone()
}

// fakeEventRepo is an in-memory ReviewEventRepository.
type fakeEventRepo struct {
	mu     sync.Mutex
	events []*domain.ReviewEvent

	latestErr error
	createErr error
}

func (r *fakeEventRepo) LatestForCard(_ context.Context, cardID uuid.UUID) (*domain.ReviewEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].CardID == cardID {
			return r.events[i], nil
		}
	}
	return nil, store.ErrReviewEventNotFound
}

func (r *fakeEventRepo) Create(_ context.Context, event *domain.ReviewEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) WithTx(*sql.Tx) card_review.ReviewEventRepository {
	return r
}

func (r *fakeEventRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

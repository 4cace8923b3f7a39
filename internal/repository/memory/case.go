package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/internal/repository"
)

type caseRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

// NewCaseRepository keeps cases in process memory. A ttl of zero keeps them
// until restart.
func NewCaseRepository(ttl time.Duration) repository.CaseRepository {
	expiration := cache.NoExpiration
	if ttl > 0 {
		expiration = ttl
	}
	return &caseRepository{
		cache: cache.New(expiration, 10*time.Minute),
		now:   time.Now,
	}
}

func (r *caseRepository) Create(ctx context.Context, c *model.TriageCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := r.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.cache.Set(c.ID.String(), cloneCase(c), cache.DefaultExpiration)
	return nil
}

func (r *caseRepository) Get(ctx context.Context, id uuid.UUID) (*model.TriageCase, error) {
	v, found := r.cache.Get(id.String())
	if !found {
		return nil, repository.ErrNotFound
	}
	return cloneCase(v.(*model.TriageCase)), nil
}

func (r *caseRepository) List(ctx context.Context, filters *model.CaseFilters) ([]*model.TriageCase, error) {
	if filters == nil {
		filters = &model.CaseFilters{}
	}
	all := r.match(func(c *model.TriageCase) bool {
		if filters.Status != "" && c.Status != filters.Status {
			return false
		}
		if filters.HospitalID != "" && c.AssignedHospitalID != "" && c.AssignedHospitalID != filters.HospitalID {
			return false
		}
		if filters.PatientID != "" && c.PatientID != filters.PatientID {
			return false
		}
		return true
	})
	sortQueue(all)

	offset := filters.Offset()
	if offset >= len(all) {
		return []*model.TriageCase{}, nil
	}
	end := offset + filters.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *caseRepository) ListByPatient(ctx context.Context, patientID string) ([]*model.TriageCase, error) {
	out := r.match(func(c *model.TriageCase) bool { return c.PatientID == patientID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *caseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CaseStatus) (*model.TriageCase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, found := r.cache.Get(id.String())
	if !found {
		return nil, repository.ErrNotFound
	}
	updated := cloneCase(v.(*model.TriageCase))
	updated.Status = status
	updated.UpdatedAt = r.now()
	r.cache.Set(id.String(), updated, cache.DefaultExpiration)
	return cloneCase(updated), nil
}

func (r *caseRepository) PurgeClosed(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for key, item := range r.cache.Items() {
		c := item.Object.(*model.TriageCase)
		if c.Status == model.CaseStatusClosed && c.UpdatedAt.Before(cutoff) {
			r.cache.Delete(key)
			purged++
		}
	}
	return purged, nil
}

func (r *caseRepository) match(keep func(*model.TriageCase) bool) []*model.TriageCase {
	out := []*model.TriageCase{}
	for _, item := range r.cache.Items() {
		c := item.Object.(*model.TriageCase)
		if keep(c) {
			out = append(out, cloneCase(c))
		}
	}
	return out
}

// sortQueue orders by acuity, then oldest first, then by id so pages are
// stable when timestamps collide.
func sortQueue(cases []*model.TriageCase) {
	sort.Slice(cases, func(i, j int) bool {
		a, b := cases[i], cases[j]
		if a.ESILevel != b.ESILevel {
			return a.ESILevel < b.ESILevel
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

func cloneCase(c *model.TriageCase) *model.TriageCase {
	cp := *c
	cp.Symptoms = append([]string(nil), c.Symptoms...)
	cp.Flags = append([]string(nil), c.Flags...)
	if c.SharedContext != nil {
		sc := *c.SharedContext
		sc.Risks = append([]string(nil), c.SharedContext.Risks...)
		cp.SharedContext = &sc
	}
	return &cp
}

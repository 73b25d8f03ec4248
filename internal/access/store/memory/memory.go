// Package memory provides a map-backed implementation of the access
// stores. Transactions are a coarse lock plus a snapshot of the mutable
// tables, which is enough to give unit tests real rollback behavior.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"garita/internal/access/store"
	"garita/internal/domain"
)

// Store holds every table in process memory.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	nextEntryID      int64
	nextAssignmentID int64

	entries     map[int64]domain.Entry
	assignments map[int64]domain.BadgeAssignment
	contractors map[int64]domain.Contractor
	badges      map[int64]domain.Badge
	users       map[int64]domain.User
	companies   map[int64]domain.Company
	vehicles    map[int64]domain.Vehicle
	points      map[int64]domain.AccessPoint
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		entries:     make(map[int64]domain.Entry),
		assignments: make(map[int64]domain.BadgeAssignment),
		contractors: make(map[int64]domain.Contractor),
		badges:      make(map[int64]domain.Badge),
		users:       make(map[int64]domain.User),
		companies:   make(map[int64]domain.Company),
		vehicles:    make(map[int64]domain.Vehicle),
		points:      make(map[int64]domain.AccessPoint),
	}
}

// Stores exposes the store bundle backed by this instance.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Entries:     &entryStore{s},
		Assignments: &assignmentStore{s},
		Contractors: &contractorStore{s},
		Badges:      &badgeStore{s},
		Users:       &userStore{s},
	}
}

// RunInTx serializes transactions behind a coarse lock and restores a
// snapshot of the mutable tables when fn fails, mirroring a rollback.
func (s *Store) RunInTx(ctx context.Context, fn func(st store.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	entrySnap := cloneMap(s.entries)
	assignSnap := cloneMap(s.assignments)
	entryID, assignmentID := s.nextEntryID, s.nextAssignmentID
	s.mu.Unlock()

	if err := fn(s.Stores()); err != nil {
		s.mu.Lock()
		s.entries = entrySnap
		s.assignments = assignSnap
		s.nextEntryID, s.nextAssignmentID = entryID, assignmentID
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Seed helpers assign IDs when the caller left them zero.

func (s *Store) SeedContractor(c domain.Contractor) domain.Contractor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = int64(len(s.contractors) + 1)
	}
	s.contractors[c.ID] = c
	return c
}

func (s *Store) SeedBadge(b domain.Badge) domain.Badge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = int64(len(s.badges) + 1)
	}
	s.badges[b.ID] = b
	return b
}

func (s *Store) SeedUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = int64(len(s.users) + 1)
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) SeedCompany(c domain.Company) domain.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = int64(len(s.companies) + 1)
	}
	s.companies[c.ID] = c
	return c
}

func (s *Store) SeedVehicle(v domain.Vehicle) domain.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = int64(len(s.vehicles) + 1)
	}
	s.vehicles[v.ID] = v
	return v
}

func (s *Store) SeedAccessPoint(p domain.AccessPoint) domain.AccessPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = int64(len(s.points) + 1)
	}
	s.points[p.ID] = p
	return p
}

// Assignments returns a copy of every ledger row, for test assertions.
func (s *Store) Assignments() []domain.BadgeAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BadgeAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Entries returns a copy of every entry row, for test assertions.
func (s *Store) Entries() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type entryStore struct{ s *Store }

func (es *entryStore) Create(_ context.Context, e *domain.Entry) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	es.s.nextEntryID++
	e.ID = es.s.nextEntryID
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	es.s.entries[e.ID] = *e
	return nil
}

func (es *entryStore) Update(_ context.Context, e *domain.Entry) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()
	e.UpdatedAt = time.Now()
	es.s.entries[e.ID] = *e
	return nil
}

func (es *entryStore) FindByID(_ context.Context, id int64) (*domain.Entry, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	e, ok := es.s.entries[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	return &e, nil
}

func (es *entryStore) FindActiveByContractor(_ context.Context, contractorID int64) (*domain.Entry, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()
	for _, e := range es.s.entries {
		if e.DeletedAt == nil && e.Inside && e.ContractorID != nil && *e.ContractorID == contractorID {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

type assignmentStore struct{ s *Store }

func (as *assignmentStore) Create(_ context.Context, a *domain.BadgeAssignment) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	as.s.nextAssignmentID++
	a.ID = as.s.nextAssignmentID
	as.s.assignments[a.ID] = *a
	return nil
}

func (as *assignmentStore) Update(_ context.Context, a *domain.BadgeAssignment) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()
	as.s.assignments[a.ID] = *a
	return nil
}

func (as *assignmentStore) FindOpenByBadge(_ context.Context, badgeID int64) (*domain.BadgeAssignment, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()
	for _, a := range as.s.assignments {
		if a.BadgeID == badgeID && a.ReturnedAt == nil {
			assignment := a
			return &assignment, nil
		}
	}
	return nil, nil
}

func (as *assignmentStore) FindOpenByEntry(_ context.Context, entryID int64) (*domain.BadgeAssignment, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()
	for _, a := range as.s.assignments {
		if a.EntryID != nil && *a.EntryID == entryID && a.ReturnedAt == nil {
			assignment := a
			return &assignment, nil
		}
	}
	return nil, nil
}

type contractorStore struct{ s *Store }

func (cs *contractorStore) FindActiveWithBlacklist(_ context.Context, id int64) (*domain.Contractor, error) {
	cs.s.mu.RLock()
	defer cs.s.mu.RUnlock()
	c, ok := cs.s.contractors[id]
	if !ok || !c.Active || c.DeletedAt != nil {
		return nil, nil
	}
	return &c, nil
}

type badgeStore struct{ s *Store }

func (bs *badgeStore) FindByID(_ context.Context, id int64) (*domain.Badge, error) {
	bs.s.mu.RLock()
	defer bs.s.mu.RUnlock()
	b, ok := bs.s.badges[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	return &b, nil
}

type userStore struct{ s *Store }

func (us *userStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()
	u, ok := us.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return &u, nil
}

// GetProjection implements the read model against the in-memory tables.
func (s *Store) GetProjection(_ context.Context, id int64) (*domain.EntryProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.DeletedAt != nil {
		return nil, nil
	}
	p := s.project(e)
	return &p, nil
}

// ListProjections implements the paginated read model, newest first.
func (s *Store) ListProjections(_ context.Context, limit, offset int) ([]domain.EntryProjection, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.entries))
	for id, e := range s.entries {
		if e.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	total := len(ids)
	if offset >= total {
		return []domain.EntryProjection{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]domain.EntryProjection, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, s.project(s.entries[id]))
	}
	return out, total, nil
}

func (s *Store) project(e domain.Entry) domain.EntryProjection {
	p := domain.EntryProjection{
		ID:            e.ID,
		Authorization: e.Authorization,
		EntryAt:       e.EntryAt,
		ExitAt:        e.ExitAt,
		Inside:        e.Inside,
		Notes:         e.Notes,
		Duration:      domain.StayDuration(e.EntryAt, e.ExitAt, time.Now()),
	}
	if e.ContractorID != nil {
		if c, ok := s.contractors[*e.ContractorID]; ok {
			summary := domain.ContractorSummary{ID: c.ID, FullName: c.FullName(), NationalID: c.NationalID}
			if c.CompanyID != nil {
				if company, ok := s.companies[*c.CompanyID]; ok {
					summary.Company = &domain.CompanySummary{ID: company.ID, Name: company.Name}
				}
			}
			p.Contractor = &summary
		}
	}
	if e.BadgeID != nil {
		if b, ok := s.badges[*e.BadgeID]; ok {
			p.Badge = &domain.BadgeSummary{ID: b.ID, Code: b.Code, Status: b.Status}
		}
	}
	if e.VehicleID != nil {
		if v, ok := s.vehicles[*e.VehicleID]; ok {
			p.Vehicle = &domain.VehicleSummary{ID: v.ID, Plate: v.Plate, Type: v.Type}
		}
	}
	if e.EntryPointID != nil {
		if pt, ok := s.points[*e.EntryPointID]; ok {
			p.EntryPoint = &domain.AccessPointSummary{ID: pt.ID, Name: pt.Name, Code: pt.Code}
		}
	}
	if e.ExitPointID != nil {
		if pt, ok := s.points[*e.ExitPointID]; ok {
			p.ExitPoint = &domain.AccessPointSummary{ID: pt.ID, Name: pt.Name, Code: pt.Code}
		}
	}
	if e.RegisteredByID != nil {
		if u, ok := s.users[*e.RegisteredByID]; ok {
			p.RegisteredBy = &domain.UserSummary{ID: u.ID, DisplayName: u.DisplayName()}
		}
	}
	if e.ExitRegisteredByID != nil {
		if u, ok := s.users[*e.ExitRegisteredByID]; ok {
			p.ExitRegisteredBy = &domain.UserSummary{ID: u.ID, DisplayName: u.DisplayName()}
		}
	}
	return p
}

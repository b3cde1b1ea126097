// Package memstore is an in-memory store.Store for tests and local runs.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goplaynow/playdate-api/internal/geo"
	"github.com/goplaynow/playdate-api/internal/models"
	"github.com/goplaynow/playdate-api/internal/store"
	"github.com/paulmach/orb"
)

// Store holds rows in maps guarded by one RWMutex. Rows are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	seq          int64
	order        map[string]int64
	playdates    map[string]models.Playdate
	profiles     map[string]models.ParentProfile
	children     map[string]models.Child
	participants map[string]models.ParticipantEntry
	faults       map[string]error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		order:        make(map[string]int64),
		playdates:    make(map[string]models.Playdate),
		profiles:     make(map[string]models.ParentProfile),
		children:     make(map[string]models.Child),
		participants: make(map[string]models.ParticipantEntry),
		faults:       make(map[string]error),
	}
}

// Fail makes every later call of the named method return err. A nil err
// clears the fault.
func (m *Store) Fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.faults, method)
		return
	}
	m.faults[method] = err
}

// Touch bumps the stored version of a participant entry, as a concurrent
// writer would.
func (m *Store) Touch(entryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.participants[entryID]; ok {
		e.Version++
		m.participants[entryID] = e
	}
}

// PutParticipant stores e verbatim, skipping normalization. Used to seed
// legacy rows.
func (m *Store) PutParticipant(e models.ParticipantEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Version == 0 {
		e.Version = 1
	}
	m.stamp(&e.Base)
	m.participants[e.ID] = copyEntry(e)
}

func (m *Store) fault(method string) error {
	if err, ok := m.faults[method]; ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (m *Store) stamp(b *models.Base) {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	if _, ok := m.order[b.ID]; !ok {
		m.seq++
		m.order[b.ID] = m.seq
	}
}

func (m *Store) GetPlaydate(ctx context.Context, id string) (*models.Playdate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetPlaydate"); err != nil {
		return nil, err
	}
	p, ok := m.playdates[id]
	if !ok {
		return nil, fmt.Errorf("get playdate %s: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (m *Store) ListPlaydates(ctx context.Context, f store.PlaydateFilter) ([]models.Playdate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListPlaydates"); err != nil {
		return nil, err
	}
	var out []models.Playdate
	for _, p := range m.playdates {
		if f.CreatorID != "" && p.CreatorID != f.CreatorID {
			continue
		}
		if f.EndsAfter != nil && !p.EndTime.After(*f.EndsAfter) {
			continue
		}
		if f.ExcludeCancelled && p.IsCancelled() {
			continue
		}
		if f.Bounds != nil && !inBounds(p, *f.Bounds) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return m.order[out[i].ID] < m.order[out[j].ID]
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func inBounds(p models.Playdate, b orb.Bound) bool {
	lat, lon, ok := p.Coordinates()
	if !ok {
		return false
	}
	if lat < b.Bottom() || lat > b.Top() {
		return false
	}
	return geo.ContainsLon(b, lon)
}

func (m *Store) CreatePlaydate(ctx context.Context, p *models.Playdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreatePlaydate"); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = models.StatusUpcoming
	}
	m.stamp(&p.Base)
	m.playdates[p.ID] = *p
	return nil
}

func (m *Store) UpdatePlaydate(ctx context.Context, p *models.Playdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("UpdatePlaydate"); err != nil {
		return err
	}
	cur, ok := m.playdates[p.ID]
	if !ok || cur.CreatorID != p.CreatorID {
		return fmt.Errorf("update playdate %s: %w", p.ID, store.ErrNotFound)
	}
	cur.Title = p.Title
	cur.Description = p.Description
	cur.Location = p.Location
	cur.Latitude = p.Latitude
	cur.Longitude = p.Longitude
	cur.StartTime = p.StartTime
	cur.EndTime = p.EndTime
	cur.MaxParticipants = p.MaxParticipants
	cur.UpdatedAt = time.Now().UTC()
	m.playdates[p.ID] = cur
	return nil
}

func (m *Store) SetPlaydateStatus(ctx context.Context, id, creatorID string, status models.PlaydateStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("SetPlaydateStatus"); err != nil {
		return err
	}
	cur, ok := m.playdates[id]
	if !ok || cur.CreatorID != creatorID {
		return fmt.Errorf("set playdate %s status: %w", id, store.ErrNotFound)
	}
	cur.Status = status
	cur.UpdatedAt = time.Now().UTC()
	m.playdates[id] = cur
	return nil
}

func (m *Store) GetParentProfile(ctx context.Context, id string) (*models.ParentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetParentProfile"); err != nil {
		return nil, err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("get parent profile %s: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (m *Store) ListParentProfiles(ctx context.Context, ids []string) ([]models.ParentProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListParentProfiles"); err != nil {
		return nil, err
	}
	var out []models.ParentProfile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Store) SaveParentProfile(ctx context.Context, p *models.ParentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("SaveParentProfile"); err != nil {
		return err
	}
	if cur, ok := m.profiles[p.ID]; ok {
		p.CreatedAt = cur.CreatedAt
	}
	m.stamp(&p.Base)
	m.profiles[p.ID] = *p
	return nil
}

func (m *Store) ListChildren(ctx context.Context, ids []string) ([]models.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListChildren"); err != nil {
		return nil, err
	}
	var out []models.Child
	for _, id := range ids {
		if c, ok := m.children[id]; ok {
			out = append(out, copyChild(c))
		}
	}
	return out, nil
}

func (m *Store) ListChildrenByParent(ctx context.Context, parentID string) ([]models.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListChildrenByParent"); err != nil {
		return nil, err
	}
	var out []models.Child
	for _, c := range m.children {
		if c.ParentID == parentID {
			out = append(out, copyChild(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

func (m *Store) CreateChild(ctx context.Context, c *models.Child) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateChild"); err != nil {
		return err
	}
	m.stamp(&c.Base)
	m.children[c.ID] = copyChild(*c)
	return nil
}

func (m *Store) DeleteChild(ctx context.Context, id, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("DeleteChild"); err != nil {
		return err
	}
	c, ok := m.children[id]
	if !ok || c.ParentID != parentID {
		return fmt.Errorf("delete child %s: %w", id, store.ErrNotFound)
	}
	delete(m.children, id)
	return nil
}

func (m *Store) ListParticipants(ctx context.Context, playdateID string) ([]models.ParticipantEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("ListParticipants"); err != nil {
		return nil, err
	}
	var out []models.ParticipantEntry
	for _, e := range m.participants {
		if e.PlaydateID == playdateID {
			e = copyEntry(e)
			e.Normalize()
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

func (m *Store) GetParticipant(ctx context.Context, id string) (*models.ParticipantEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("GetParticipant"); err != nil {
		return nil, err
	}
	e, ok := m.participants[id]
	if !ok {
		return nil, fmt.Errorf("get participant %s: %w", id, store.ErrNotFound)
	}
	e = copyEntry(e)
	e.Normalize()
	return &e, nil
}

func (m *Store) FindParticipant(ctx context.Context, playdateID, parentID string) (*models.ParticipantEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("FindParticipant"); err != nil {
		return nil, err
	}
	for _, e := range m.participants {
		if e.PlaydateID == playdateID && e.ParentID == parentID {
			e = copyEntry(e)
			e.Normalize()
			return &e, nil
		}
	}
	return nil, fmt.Errorf("find participant of %s in %s: %w", parentID, playdateID, store.ErrNotFound)
}

func (m *Store) CreateParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("CreateParticipant"); err != nil {
		return err
	}
	for _, cur := range m.participants {
		if cur.PlaydateID == e.PlaydateID && cur.ParentID == e.ParentID {
			return fmt.Errorf("create participant: %w", store.ErrConflict)
		}
	}
	if e.Version == 0 {
		e.Version = 1
	}
	if e.Status == "" {
		e.Status = models.ParticipantJoined
	}
	m.stamp(&e.Base)
	m.participants[e.ID] = copyEntry(*e)
	return nil
}

func (m *Store) UpdateParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("UpdateParticipant"); err != nil {
		return err
	}
	cur, ok := m.participants[e.ID]
	if !ok || cur.Version != e.Version {
		return fmt.Errorf("update participant %s: %w", e.ID, store.ErrConflict)
	}
	e.Version++
	e.UpdatedAt = time.Now().UTC()
	m.participants[e.ID] = copyEntry(*e)
	return nil
}

func (m *Store) DeleteParticipant(ctx context.Context, e *models.ParticipantEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("DeleteParticipant"); err != nil {
		return err
	}
	cur, ok := m.participants[e.ID]
	if !ok || cur.Version != e.Version {
		return fmt.Errorf("delete participant %s: %w", e.ID, store.ErrConflict)
	}
	delete(m.participants, e.ID)
	return nil
}

func (m *Store) Close() error {
	return nil
}

func copyEntry(e models.ParticipantEntry) models.ParticipantEntry {
	e.ChildIDs = slices.Clone(e.ChildIDs)
	if e.ChildID != nil {
		id := *e.ChildID
		e.ChildID = &id
	}
	return e
}

func copyChild(c models.Child) models.Child {
	c.Interests = slices.Clone(c.Interests)
	return c
}

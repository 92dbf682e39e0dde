package leads

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shravan4507/ise-elevators-website/internal/events"
	"go.mongodb.org/mongo-driver/mongo"
)

var errStoreDown = errors.New("store unavailable")

// memoryRepo is an in-memory Repository. Fail* flags make the next calls of
// that operation return errStoreDown.
type memoryRepo struct {
	mu         sync.Mutex
	kind       Kind
	seq        int
	items      map[string]Lead
	clock      time.Time
	creates    int
	failCreate bool
	failList   bool
	failUpdate bool
	failDelete bool
	failGet    bool
}

func newMemoryRepo(kind Kind) *memoryRepo {
	return &memoryRepo{
		kind:  kind,
		items: make(map[string]Lead),
		clock: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memoryRepo) Create(_ context.Context, f Fields) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failCreate {
		return "", errStoreDown
	}
	m.seq++
	m.clock = m.clock.Add(time.Minute)
	at := m.clock
	id := fmt.Sprintf("%s-%d", m.kind, m.seq)
	m.items[id] = Lead{
		ID:           id,
		Name:         f.Name,
		Email:        f.Email,
		Phone:        f.Phone,
		ElevatorType: f.ElevatorType,
		Floors:       f.Floors,
		Message:      f.Message,
		Status:       StatusNew,
		CreatedAt:    &at,
	}
	return id, nil
}

func (m *memoryRepo) put(l Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[l.ID] = l
}

func (m *memoryRepo) List(context.Context) ([]Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errStoreDown
	}
	out := make([]Lead, 0, len(m.items))
	for _, l := range m.items {
		l.Kind = m.kind
		out = append(out, l)
	}
	return out, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return Lead{}, errStoreDown
	}
	l, ok := m.items[id]
	if !ok {
		return Lead{}, mongo.ErrNoDocuments
	}
	l.Kind = m.kind
	return l, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate {
		return false, errStoreDown
	}
	l, ok := m.items[id]
	if !ok {
		return false, nil
	}
	l.Status = status
	m.items[id] = l
	return true, nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return false, errStoreDown
	}
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

type recordingTracker struct {
	mu      sync.Mutex
	actions []string
}

func (r *recordingTracker) Track(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, ev.Action)
	return nil
}

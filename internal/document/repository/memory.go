package repository

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/talqs/talqs/backend/go-services/internal/document"
)

var (
	// ErrEmpty is returned when no document has been uploaded to a slot.
	ErrEmpty = errors.New("no document has been uploaded")
)

// DefaultSlot is used for callers without a session.
const DefaultSlot = "default"

// MemoryRepo keeps the latest document per slot in process memory.
// Slots are evicted least-recently-used once maxSlots is reached and, when ttl
// is set, dropped by Sweep after ttl without access.
type MemoryRepo struct {
	mu       sync.Mutex
	slots    map[string]*list.Element
	order    *list.List
	maxSlots int
	ttl      time.Duration
	now      func() time.Time
}

type slotEntry struct {
	key      string
	doc      document.Document
	lastUsed time.Time
}

func NewMemoryRepo(maxSlots int, ttl time.Duration) *MemoryRepo {
	if maxSlots <= 0 {
		maxSlots = 1
	}
	return &MemoryRepo{
		slots:    make(map[string]*list.Element, maxSlots),
		order:    list.New(),
		maxSlots: maxSlots,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put replaces the document stored under slot.
func (m *MemoryRepo) Put(_ context.Context, slot string, doc *document.Document) error {
	if slot == "" {
		slot = DefaultSlot
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if elem, ok := m.slots[slot]; ok {
		entry := elem.Value.(*slotEntry)
		entry.doc = *doc
		entry.lastUsed = now
		m.order.MoveToFront(elem)
		return nil
	}
	for m.order.Len() >= m.maxSlots {
		m.removeElement(m.order.Back())
	}
	m.slots[slot] = m.order.PushFront(&slotEntry{key: slot, doc: *doc, lastUsed: now})
	return nil
}

// Get returns a copy of the document stored under slot, or ErrEmpty.
func (m *MemoryRepo) Get(_ context.Context, slot string) (*document.Document, error) {
	if slot == "" {
		slot = DefaultSlot
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	elem, ok := m.slots[slot]
	if !ok {
		return nil, ErrEmpty
	}
	entry := elem.Value.(*slotEntry)
	now := m.now()
	if m.expired(entry, now) {
		m.removeElement(elem)
		return nil, ErrEmpty
	}
	entry.lastUsed = now
	m.order.MoveToFront(elem)
	d := entry.doc
	return &d, nil
}

// Sweep drops expired slots and returns how many were removed.
func (m *MemoryRepo) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for elem := m.order.Back(); elem != nil; {
		prev := elem.Prev()
		if m.expired(elem.Value.(*slotEntry), now) {
			m.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len reports the number of occupied slots.
func (m *MemoryRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *MemoryRepo) expired(e *slotEntry, now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.lastUsed) > m.ttl
}

func (m *MemoryRepo) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*slotEntry)
	delete(m.slots, entry.key)
	m.order.Remove(elem)
}

package db

import (
	"context"
	"reflect"
	"sync"

	"github.com/yigit/campusnet/internal/app/query"
)

// MemoryStore keeps every collection in process memory
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	closed      bool
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// Driver implements Store
func (s *MemoryStore) Driver() string { return "memory" }

// EnsureCollection implements Store
func (s *MemoryStore) EnsureCollection(_ context.Context, spec CollectionSpec) error {
	if err := ValidateSpec(spec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[spec.Name]
	if !ok {
		c = newMemoryCollection(spec.Name, s)
		s.collections[spec.Name] = c
	}
	c.mu.Lock()
	c.unique = append([]string(nil), spec.UniqueFields...)
	c.mu.Unlock()
	return nil
}

// Collection implements Store. Collections are created lazily when not declared.
func (s *MemoryStore) Collection(name string) Collection {
	s.mu.RLock()
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if ok {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.collections[name]; !ok {
		c = newMemoryCollection(name, s)
		s.collections[name] = c
	}
	return c
}

// Ping implements Store
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errStoreClosed
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

type memoryCollection struct {
	mu      sync.RWMutex
	name    string
	store   *MemoryStore
	unique  []string
	records map[string]Record
	order   []string
}

func newMemoryCollection(name string, store *MemoryStore) *memoryCollection {
	return &memoryCollection{name: name, store: store, records: make(map[string]Record)}
}

func (c *memoryCollection) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return unavailable(op, c.name, err)
	}
	if c.store.isClosed() {
		return unavailable(op, c.name, errStoreClosed)
	}
	return nil
}

func (c *memoryCollection) Find(ctx context.Context, filter query.Filter) ([]Record, error) {
	if err := c.check(ctx, "find"); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Record, 0)
	for _, id := range c.order {
		rec := c.records[id]
		if filter.Match(rec.Data) {
			cp, err := copyRecord(rec)
			if err != nil {
				return nil, err
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (c *memoryCollection) Get(ctx context.Context, id string) (*Record, error) {
	if err := c.check(ctx, "get"); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return nil, notFound(c.name, id)
	}
	cp, err := copyRecord(rec)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (c *memoryCollection) Insert(ctx context.Context, rec Record) error {
	if err := c.check(ctx, "insert"); err != nil {
		return err
	}
	cp, err := copyRecord(rec)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[rec.ID]; exists {
		return &DuplicateKeyError{Collection: c.name, Field: "id"}
	}
	if err := c.checkUnique(cp); err != nil {
		return err
	}
	c.records[cp.ID] = cp
	c.order = append(c.order, cp.ID)
	return nil
}

func (c *memoryCollection) Replace(ctx context.Context, rec Record) error {
	if err := c.check(ctx, "replace"); err != nil {
		return err
	}
	cp, err := copyRecord(rec)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.records[rec.ID]
	if !ok {
		return notFound(c.name, rec.ID)
	}
	if err := c.checkUnique(cp); err != nil {
		return err
	}
	cp.CreatedAt = existing.CreatedAt
	c.records[cp.ID] = cp
	return nil
}

func (c *memoryCollection) Delete(ctx context.Context, id string) (bool, error) {
	if err := c.check(ctx, "delete"); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[id]; !ok {
		return false, nil
	}
	delete(c.records, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// checkUnique must be called with the write lock held
func (c *memoryCollection) checkUnique(rec Record) error {
	for _, field := range c.unique {
		v, ok := rec.Data[field]
		if !ok || v == nil {
			continue
		}
		for id, other := range c.records {
			if id == rec.ID {
				continue
			}
			if reflect.DeepEqual(other.Data[field], v) {
				return &DuplicateKeyError{Collection: c.name, Field: field}
			}
		}
	}
	return nil
}

func copyRecord(rec Record) (Record, error) {
	data, err := CloneData(rec.Data)
	if err != nil {
		return Record{}, err
	}
	rec.Data = data
	return rec, nil
}

package procedural

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry tracks loaded procedurals and their state
type Registry struct {
	records map[string]*Record
	mu      sync.RWMutex
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*Record),
	}
}

// Register registers a loaded procedural
func (r *Registry) Register(loaded *Loaded) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[loaded.ID]; exists {
		return fmt.Errorf("procedural %s already registered", loaded.ID)
	}

	r.records[loaded.ID] = &Record{
		Procedural: loaded,
		LoadedAt:   time.Now(),
	}
	return nil
}

// Get retrieves a record by ID
func (r *Registry) Get(id string) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, exists := r.records[id]
	return record, exists
}

// GetAll returns all records sorted by ID
func (r *Registry) GetAll() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Record, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Procedural.ID < records[j].Procedural.ID
	})
	return records
}

// GetByState returns all records in a specific state
func (r *Registry) GetByState(state State) []*Record {
	var records []*Record
	for _, record := range r.GetAll() {
		if record.Procedural.State == state {
			records = append(records, record)
		}
	}
	return records
}

// Update updates a record under the registry lock
func (r *Registry) Update(id string, updater func(*Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return fmt.Errorf("procedural %s not found", id)
	}

	updater(record)
	return nil
}

// UpdateState updates a procedural's state
func (r *Registry) UpdateState(id string, state State) error {
	return r.Update(id, func(record *Record) {
		record.Procedural.State = state
	})
}

// Remove removes a procedural from the registry
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return fmt.Errorf("procedural %s not found", id)
	}

	delete(r.records, id)
	return nil
}

// RecordExecution counts one execution and, if message is not empty, an error
func (r *Registry) RecordExecution(id string, message string) error {
	return r.Update(id, func(record *Record) {
		record.ExecutionCount++
		if message != "" {
			record.ErrorCount++
			record.LastError = message
		}
	})
}

// RecordReload records a reload
func (r *Registry) RecordReload(id string) error {
	return r.Update(id, func(record *Record) {
		now := time.Now()
		record.LastReloadAt = &now
	})
}

// Info returns a copy of a record suitable for listing
func (r *Registry) Info(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return Info{}, false
	}
	return Info{
		ID:             record.Procedural.ID,
		InstanceID:     record.Procedural.InstanceID,
		Manifest:       record.Procedural.Manifest,
		State:          record.Procedural.State,
		Source:         record.Procedural.Source,
		LoadedAt:       record.LoadedAt,
		LastReload:     record.LastReloadAt,
		ExecutionCount: record.ExecutionCount,
		ErrorCount:     record.ErrorCount,
		LastError:      record.LastError,
	}, true
}

// Package ops tracks the history of PDF operations run in this session.
package ops

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdfmaster/backend/internal/models"
)

// MaxOperations limits retained history entries to bound memory
const MaxOperations = 200

// Manager records operation runs for the recent-activity endpoint.
type Manager struct {
	operations map[string]*models.Operation
	mu         sync.RWMutex
}

// NewManager creates a new operation history manager.
func NewManager() *Manager {
	return &Manager{
		operations: make(map[string]*models.Operation),
	}
}

// Begin records the start of an operation and returns its entry.
func (m *Manager) Begin(kind models.OperationKind, inputIDs []string) *models.Operation {
	m.evictIfNeeded()

	op := &models.Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    models.OperationStatusRunning,
		InputIDs:  inputIDs,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.operations[op.ID] = op
	m.mu.Unlock()

	return op
}

// Complete marks an operation as finished with the artifacts it produced.
func (m *Manager) Complete(id string, outputIDs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[id]
	if !ok {
		return
	}
	now := time.Now()
	op.Status = models.OperationStatusComplete
	op.OutputIDs = outputIDs
	op.CompletedAt = &now
	op.DurationMs = now.Sub(op.StartedAt).Milliseconds()
}

// Fail marks an operation as failed with the given reason.
func (m *Manager) Fail(id, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[id]
	if !ok {
		return
	}
	now := time.Now()
	op.Status = models.OperationStatusError
	op.Error = reason
	op.CompletedAt = &now
	op.DurationMs = now.Sub(op.StartedAt).Milliseconds()
}

// Get returns an operation by ID.
func (m *Manager) Get(id string) (*models.Operation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, ok := m.operations[id]
	return op, ok
}

// Recent returns up to limit operations, newest first.
func (m *Manager) Recent(limit int) []*models.Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.Operation, 0, len(m.operations))
	for _, op := range m.operations {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CleanupOld drops finished operations older than maxAge and returns how
// many were removed.
func (m *Manager) CleanupOld(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, op := range m.operations {
		if op.Status == models.OperationStatusRunning {
			continue
		}
		if op.CompletedAt != nil && op.CompletedAt.Before(cutoff) {
			delete(m.operations, id)
			removed++
		}
	}
	return removed
}

// evictIfNeeded removes the oldest finished operations when at capacity
func (m *Manager) evictIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.operations) < MaxOperations {
		return
	}

	var finished []*models.Operation
	for _, op := range m.operations {
		if op.Status != models.OperationStatusRunning {
			finished = append(finished, op)
		}
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].StartedAt.Before(finished[j].StartedAt)
	})

	toFree := len(m.operations) - MaxOperations + 1
	for i := 0; i < toFree && i < len(finished); i++ {
		delete(m.operations, finished[i].ID)
	}
}

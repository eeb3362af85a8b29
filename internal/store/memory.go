package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is a map-backed Client for dev mode and tests.
type Memory struct {
	mu     sync.Mutex
	tables map[Table][]Row
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: map[Table][]Row{
		Courses:    {},
		Students:   {},
		Attendance: {},
	}}
}

// Select returns a copy of the table, optionally sorted by a string field.
func (m *Memory) Select(_ context.Context, table Table, orderBy string) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]Row, 0, len(m.tables[table]))
	for _, row := range m.tables[table] {
		res = append(res, copyRow(row))
	}
	if orderBy != "" {
		sort.SliceStable(res, func(i, j int) bool {
			return res[i].Str(orderBy) < res[j].Str(orderBy)
		})
	}
	return res, nil
}

// Insert stores a copy of the row under a fresh uuid and returns it.
func (m *Memory) Insert(_ context.Context, table Table, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := copyRow(row)
	stored["id"] = uuid.NewString()
	m.tables[table] = append(m.tables[table], stored)
	return copyRow(stored), nil
}

// Update patches the row with the given id.
func (m *Memory) Update(_ context.Context, table Table, id string, patch Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.tables[table] {
		if row.Str("id") == id {
			for k, v := range patch {
				row[k] = v
			}
			return nil
		}
	}
	return ErrNotFound
}

// Delete removes the row with the given id.
func (m *Memory) Delete(_ context.Context, table Table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	for i, row := range rows {
		if row.Str("id") == id {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

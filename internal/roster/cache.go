package roster

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rollcall/internal/store"
)

// Snapshot is one consistent view of the three cached collections. It is a
// value; the derived-view methods in stats.go and views.go are pure functions
// of it.
type Snapshot struct {
	Courses  []Course
	Students []Student
	Records  []AttendanceRecord
}

// Cache mirrors the store's three tables in memory. Collections are replaced
// wholesale by Reload; there are no delta updates, so after any successful
// mutation plus reload the cache cannot diverge from the store.
type Cache struct {
	client store.Client

	mu   sync.RWMutex
	snap Snapshot
}

// NewCache builds an empty cache over the given store client.
func NewCache(client store.Client) *Cache {
	return &Cache{client: client}
}

// Snapshot returns the current snapshot. The slices are shared but never
// mutated after publication; callers treat them as read-only.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Reload fetches one collection in full, ordered by its natural key, and
// swaps it into the snapshot. On fetch failure the previous snapshot is
// retained and the error is returned. Rows that fail validation are dropped
// and logged rather than failing the whole reload.
func (c *Cache) Reload(ctx context.Context, table store.Table) error {
	switch table {
	case store.Courses:
		rows, err := c.client.Select(ctx, store.Courses, "code")
		if err != nil {
			return fmt.Errorf("reload courses: %w", err)
		}
		courses := make([]Course, 0, len(rows))
		for _, row := range rows {
			crs, err := courseFromRow(row)
			if err != nil {
				log.Printf("dropping course row: %v", err)
				continue
			}
			courses = append(courses, crs)
		}
		c.mu.Lock()
		c.snap.Courses = courses
		c.mu.Unlock()

	case store.Students:
		rows, err := c.client.Select(ctx, store.Students, "roll_number")
		if err != nil {
			return fmt.Errorf("reload students: %w", err)
		}
		students := make([]Student, 0, len(rows))
		for _, row := range rows {
			st, err := studentFromRow(row)
			if err != nil {
				log.Printf("dropping student row: %v", err)
				continue
			}
			students = append(students, st)
		}
		c.mu.Lock()
		c.snap.Students = students
		c.mu.Unlock()

	case store.Attendance:
		rows, err := c.client.Select(ctx, store.Attendance, "")
		if err != nil {
			return fmt.Errorf("reload attendance: %w", err)
		}
		records := make([]AttendanceRecord, 0, len(rows))
		for _, row := range rows {
			rec, err := recordFromRow(row)
			if err != nil {
				log.Printf("dropping attendance row: %v", err)
				continue
			}
			records = append(records, rec)
		}
		c.mu.Lock()
		c.snap.Records = records
		c.mu.Unlock()

	default:
		return fmt.Errorf("reload: unknown collection %q", table)
	}
	return nil
}

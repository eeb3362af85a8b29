package store

import (
	"context"
	"testing"
)

func TestMemoryInsertAssignsID(t *testing.T) {
	m := NewMemory()
	row, err := m.Insert(context.Background(), Courses, Row{"code": "CS101", "name": "Intro"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if row.Str("id") == "" {
		t.Error("Insert() returned empty id")
	}
	if row.Str("code") != "CS101" {
		t.Errorf("Insert() code = %q, want CS101", row.Str("code"))
	}
}

func TestMemorySelectOrders(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, code := range []string{"MA201", "CS101", "PH110"} {
		if _, err := m.Insert(ctx, Courses, Row{"code": code, "name": "x"}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	rows, err := m.Select(ctx, Courses, "code")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	got := []string{}
	for _, row := range rows {
		got = append(got, row.Str("code"))
	}
	want := []string{"CS101", "MA201", "PH110"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Select() order = %v, want %v", got, want)
		}
	}
}

func TestMemoryUpdate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	row, _ := m.Insert(ctx, Attendance, Row{"status": "absent"})

	if err := m.Update(ctx, Attendance, row.Str("id"), Row{"status": "present"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	rows, _ := m.Select(ctx, Attendance, "")
	if len(rows) != 1 || rows[0].Str("status") != "present" {
		t.Errorf("after update rows = %v", rows)
	}

	if err := m.Update(ctx, Attendance, "missing", Row{"status": "late"}); err != ErrNotFound {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	row, _ := m.Insert(ctx, Students, Row{"roll_number": "001", "name": "A"})

	if err := m.Delete(ctx, Students, row.Str("id")); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	rows, _ := m.Select(ctx, Students, "")
	if len(rows) != 0 {
		t.Errorf("after delete rows = %v", rows)
	}

	if err := m.Delete(ctx, Students, row.Str("id")); err != ErrNotFound {
		t.Errorf("Delete(again) error = %v, want ErrNotFound", err)
	}
}

func TestMemorySelectReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if _, err := m.Insert(ctx, Courses, Row{"code": "CS101", "name": "Intro"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	rows, _ := m.Select(ctx, Courses, "")
	rows[0]["code"] = "tampered"

	again, _ := m.Select(ctx, Courses, "")
	if again[0].Str("code") != "CS101" {
		t.Errorf("mutating a selected row leaked into the store: %v", again[0])
	}
}

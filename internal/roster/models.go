package roster

import (
	"fmt"
	"time"

	"rollcall/internal/store"
)

// DateLayout is the calendar-date form used throughout: YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Status is the attendance state of one student on one date.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusLate
}

// Course is an instructional offering. Code and Name are required; the
// instructor may be empty.
type Course struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
}

// Student is a person enrolled in exactly one course.
type Student struct {
	ID         string `json:"id"`
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	CourseID   string `json:"course_id"`
}

// AttendanceRecord is the status of one student in one course on one date.
// At most one record exists per (student, course, date) triple.
type AttendanceRecord struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Date      string `json:"date"`
	Status    Status `json:"status"`
	Notes     string `json:"notes"`
}

// ValidDate reports whether date is a well-formed YYYY-MM-DD string.
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// Rows from the store are dynamic; the decoders below type and validate them
// at the boundary before they enter the cache.

func courseFromRow(row store.Row) (Course, error) {
	c := Course{
		ID:         row.Str("id"),
		Code:       row.Str("code"),
		Name:       row.Str("name"),
		Instructor: row.Str("instructor"),
	}
	if c.ID == "" {
		return Course{}, fmt.Errorf("course row missing id")
	}
	if c.Code == "" || c.Name == "" {
		return Course{}, fmt.Errorf("course %s missing code or name", c.ID)
	}
	return c, nil
}

func studentFromRow(row store.Row) (Student, error) {
	s := Student{
		ID:         row.Str("id"),
		RollNumber: row.Str("roll_number"),
		Name:       row.Str("name"),
		Email:      row.Str("email"),
		CourseID:   row.Str("course_id"),
	}
	if s.ID == "" {
		return Student{}, fmt.Errorf("student row missing id")
	}
	if s.RollNumber == "" || s.Name == "" {
		return Student{}, fmt.Errorf("student %s missing roll_number or name", s.ID)
	}
	return s, nil
}

func recordFromRow(row store.Row) (AttendanceRecord, error) {
	r := AttendanceRecord{
		ID:        row.Str("id"),
		StudentID: row.Str("student_id"),
		CourseID:  row.Str("course_id"),
		Date:      row.Str("date"),
		Status:    Status(row.Str("status")),
		Notes:     row.Str("notes"),
	}
	if r.ID == "" {
		return AttendanceRecord{}, fmt.Errorf("attendance row missing id")
	}
	if r.StudentID == "" || r.CourseID == "" {
		return AttendanceRecord{}, fmt.Errorf("attendance %s missing student_id or course_id", r.ID)
	}
	if !ValidDate(r.Date) {
		return AttendanceRecord{}, fmt.Errorf("attendance %s has malformed date %q", r.ID, r.Date)
	}
	if !r.Status.Valid() {
		return AttendanceRecord{}, fmt.Errorf("attendance %s has unknown status %q", r.ID, r.Status)
	}
	return r, nil
}

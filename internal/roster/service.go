package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rollcall/internal/store"
)

var (
	// ErrInvalidInput reports a rejected intent (missing required fields,
	// malformed date, unknown status).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCourse reports a reference to a course id that is not in the
	// current snapshot.
	ErrUnknownCourse = errors.New("unknown course")
	// ErrUnknownStudent reports a reference to a student id that is not in
	// the current snapshot.
	ErrUnknownStudent = errors.New("unknown student")
)

var marksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rollcall_attendance_marks_total",
	Help: "Attendance mark intents by result.",
}, []string{"result"})

// Service owns the cache, the selection state and every mutation intent.
// Mutations follow one shape: write through the store client, then reload the
// affected collection(s) wholesale. Failures propagate to the caller; the
// cache keeps its previous snapshot.
type Service struct {
	store store.Client
	cache *Cache

	mu             sync.Mutex
	selectedCourse string
	selectedDate   string
	autoSelected   bool

	marks keyedMutex
}

// NewService builds a service over the given store client. The selected date
// defaults to today (UTC); no course is selected until the first course
// reload.
func NewService(client store.Client) *Service {
	return &Service{
		store:        client,
		cache:        NewCache(client),
		selectedDate: time.Now().UTC().Format(DateLayout),
	}
}

// Snapshot returns the current cached view of the three collections.
func (s *Service) Snapshot() Snapshot { return s.cache.Snapshot() }

// LoadAll reloads all three collections in sequence, stopping at the first
// failure.
func (s *Service) LoadAll(ctx context.Context) error {
	if err := s.ReloadCourses(ctx); err != nil {
		return err
	}
	if err := s.cache.Reload(ctx, store.Students); err != nil {
		return err
	}
	return s.cache.Reload(ctx, store.Attendance)
}

// ReloadCourses refreshes the course collection and auto-selects the first
// course in code order if nothing is selected yet. The default is consumed by
// the first reload that actually has a course to select (or that finds a
// selection already made); it is never re-applied after that, even if the
// selection later becomes empty.
func (s *Service) ReloadCourses(ctx context.Context) error {
	if err := s.cache.Reload(ctx, store.Courses); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.autoSelected {
		if s.selectedCourse != "" {
			s.autoSelected = true
		} else if courses := s.cache.Snapshot().Courses; len(courses) > 0 {
			s.selectedCourse = courses[0].ID
			s.autoSelected = true
		}
	}
	return nil
}

// Selection returns the currently selected course id (possibly empty) and date.
func (s *Service) Selection() (courseID, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedCourse, s.selectedDate
}

// SelectCourse changes the selected course. An empty id clears the selection;
// a non-empty id must exist in the snapshot.
func (s *Service) SelectCourse(id string) error {
	if id != "" {
		if _, ok := s.cache.Snapshot().Course(id); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCourse, id)
		}
	}
	s.mu.Lock()
	s.selectedCourse = id
	s.mu.Unlock()
	return nil
}

// SelectDate changes the selected date.
func (s *Service) SelectDate(date string) error {
	if !ValidDate(date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	s.mu.Lock()
	s.selectedDate = date
	s.mu.Unlock()
	return nil
}

// AddCourse creates a course and reloads the course collection.
func (s *Service) AddCourse(ctx context.Context, code, name, instructor string) (Course, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	instructor = strings.TrimSpace(instructor)
	if code == "" || name == "" {
		return Course{}, fmt.Errorf("%w: code and name are required", ErrInvalidInput)
	}

	row, err := s.store.Insert(ctx, store.Courses, store.Row{
		"code":       code,
		"name":       name,
		"instructor": instructor,
	})
	if err != nil {
		return Course{}, err
	}
	crs, err := courseFromRow(row)
	if err != nil {
		return Course{}, fmt.Errorf("store returned malformed course: %w", err)
	}
	if err := s.ReloadCourses(ctx); err != nil {
		return Course{}, err
	}
	return crs, nil
}

// DeleteCourse removes the course row and reloads all three collections.
// Students and attendance records pointing at the course are not deleted;
// the read models filter them out. A selection pointing at the course is
// cleared.
func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.Courses, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.selectedCourse == id {
		s.selectedCourse = ""
	}
	s.mu.Unlock()

	if err := s.cache.Reload(ctx, store.Courses); err != nil {
		return err
	}
	if err := s.cache.Reload(ctx, store.Students); err != nil {
		return err
	}
	return s.cache.Reload(ctx, store.Attendance)
}

// AddStudent enrols a student in a course and reloads the student collection.
// The course must exist in the current snapshot; the store itself does not
// enforce the reference.
func (s *Service) AddStudent(ctx context.Context, roll, name, email, courseID string) (Student, error) {
	roll = strings.TrimSpace(roll)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if roll == "" || name == "" {
		return Student{}, fmt.Errorf("%w: roll_number and name are required", ErrInvalidInput)
	}
	if courseID == "" {
		return Student{}, fmt.Errorf("%w: course_id is required", ErrInvalidInput)
	}
	if _, ok := s.cache.Snapshot().Course(courseID); !ok {
		return Student{}, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}

	row, err := s.store.Insert(ctx, store.Students, store.Row{
		"roll_number": roll,
		"name":        name,
		"email":       email,
		"course_id":   courseID,
	})
	if err != nil {
		return Student{}, err
	}
	st, err := studentFromRow(row)
	if err != nil {
		return Student{}, fmt.Errorf("store returned malformed student: %w", err)
	}
	if err := s.cache.Reload(ctx, store.Students); err != nil {
		return Student{}, err
	}
	return st, nil
}

// DeleteStudent removes the student row and reloads students and attendance.
// The student's attendance records are not deleted.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, store.Students, id); err != nil {
		return err
	}
	if err := s.cache.Reload(ctx, store.Students); err != nil {
		return err
	}
	return s.cache.Reload(ctx, store.Attendance)
}

// MarkAttendance sets the student's status for a course and date. Both ids
// must exist in the current snapshot, so a mark cannot mint attendance rows
// for ghost ids. If a record
// for the triple exists its status field alone is updated, otherwise a record
// with empty notes is inserted; either way the attendance collection reloads
// on success. Marks for the same triple are serialized through a per-triple
// lock, so two overlapping marks cannot both insert. The returned flag is
// true when an existing record was updated.
func (s *Service) MarkAttendance(ctx context.Context, studentID, courseID, date string, status Status) (updated bool, err error) {
	if studentID == "" || courseID == "" {
		return false, fmt.Errorf("%w: student_id and course_id are required", ErrInvalidInput)
	}
	if !ValidDate(date) {
		return false, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if !status.Valid() {
		return false, fmt.Errorf("%w: status must be present, absent or late", ErrInvalidInput)
	}
	snap := s.cache.Snapshot()
	if _, ok := snap.Course(courseID); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCourse, courseID)
	}
	if _, ok := snap.Student(studentID); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownStudent, studentID)
	}

	key := studentID + "|" + courseID + "|" + date
	s.marks.lock(key)
	defer s.marks.unlock(key)

	if rec, ok := s.cache.Snapshot().findRecord(studentID, courseID, date); ok {
		if err := s.store.Update(ctx, store.Attendance, rec.ID, store.Row{"status": string(status)}); err != nil {
			return false, err
		}
		updated = true
		marksTotal.WithLabelValues("update").Inc()
	} else {
		_, err := s.store.Insert(ctx, store.Attendance, store.Row{
			"student_id": studentID,
			"course_id":  courseID,
			"date":       date,
			"status":     string(status),
			"notes":      "",
		})
		if err != nil {
			return false, err
		}
		marksTotal.WithLabelValues("insert").Inc()
	}

	if err := s.cache.Reload(ctx, store.Attendance); err != nil {
		return updated, err
	}
	return updated, nil
}

// keyedMutex serializes work per string key. Entries are refcounted and
// removed once the last holder releases.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedLock)
	}
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()
	entry.Lock()
}

func (k *keyedMutex) unlock(key string) {
	k.mu.Lock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	entry.Unlock()
}

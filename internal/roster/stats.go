package roster

import "math"

// DayStats are the derived counts for one course on one date. Total is the
// enrollment count, independent of date; a student with no record for the
// date contributes to Total but to none of the three buckets, so the buckets
// need not sum to Total.
type DayStats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Total   int `json:"total"`
}

// Course returns the course with the given id, if it is in the snapshot.
func (s Snapshot) Course(id string) (Course, bool) {
	for _, c := range s.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

// Student returns the student with the given id, if it is in the snapshot.
func (s Snapshot) Student(id string) (Student, bool) {
	for _, st := range s.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// CourseStudents returns the students enrolled in the course, in cache
// (roll number) order. A course id no longer in the snapshot yields an empty
// slice: references to deleted courses are filtered at read, never followed.
func (s Snapshot) CourseStudents(courseID string) []Student {
	if _, ok := s.Course(courseID); !ok {
		return nil
	}
	var enrolled []Student
	for _, st := range s.Students {
		if st.CourseID == courseID {
			enrolled = append(enrolled, st)
		}
	}
	return enrolled
}

// DailyStats computes the per-date counts for a course. Records of students
// no longer in the snapshot are filtered at read like every other orphaned
// reference, so the three buckets never exceed Total.
func (s Snapshot) DailyStats(courseID, date string) DayStats {
	enrolled := s.CourseStudents(courseID)
	stats := DayStats{Total: len(enrolled)}
	if stats.Total == 0 {
		return stats
	}
	ids := make(map[string]struct{}, len(enrolled))
	for _, st := range enrolled {
		ids[st.ID] = struct{}{}
	}
	for _, rec := range s.Records {
		if rec.CourseID != courseID || rec.Date != date {
			continue
		}
		if _, ok := ids[rec.StudentID]; !ok {
			continue
		}
		switch rec.Status {
		case StatusPresent:
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusLate:
			stats.Late++
		}
	}
	return stats
}

// AttendanceRate is the round-half-up percentage of the student's records
// with status present, over all records across all courses and dates. Late
// and absent count against the rate equally. A student with no records rates 0.
func (s Snapshot) AttendanceRate(studentID string) int {
	present, total := s.attendanceCounts(studentID)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

func (s Snapshot) attendanceCounts(studentID string) (present, total int) {
	for _, rec := range s.Records {
		if rec.StudentID != studentID {
			continue
		}
		total++
		if rec.Status == StatusPresent {
			present++
		}
	}
	return present, total
}

// StatusOf resolves the student's status for a course and date by exact match
// over the cached records. The first match in snapshot order wins; duplicates
// should not exist but pre-existing ones are tolerated.
func (s Snapshot) StatusOf(studentID, courseID, date string) (Status, bool) {
	rec, ok := s.findRecord(studentID, courseID, date)
	if !ok {
		return "", false
	}
	return rec.Status, true
}

func (s Snapshot) findRecord(studentID, courseID, date string) (AttendanceRecord, bool) {
	for _, rec := range s.Records {
		if rec.StudentID == studentID && rec.CourseID == courseID && rec.Date == date {
			return rec, true
		}
	}
	return AttendanceRecord{}, false
}

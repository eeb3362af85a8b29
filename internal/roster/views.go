package roster

// CourseSummary is the course list read model: the course plus its
// enrollment count.
type CourseSummary struct {
	Course
	EnrolledCount int `json:"enrolled_count"`
}

// CourseSummaries lists all courses in code order with enrollment counts.
func (s Snapshot) CourseSummaries() []CourseSummary {
	res := make([]CourseSummary, 0, len(s.Courses))
	for _, c := range s.Courses {
		res = append(res, CourseSummary{
			Course:        c,
			EnrolledCount: len(s.CourseStudents(c.ID)),
		})
	}
	return res
}

// StudentSummary is the student list read model: the student, a display label
// for their course (empty when the course has been deleted) and their
// lifetime attendance counts.
type StudentSummary struct {
	Student
	CourseLabel    string `json:"course"`
	AttendanceRate int    `json:"attendance_rate"`
	PresentCount   int    `json:"present_count"`
	RecordCount    int    `json:"record_count"`
}

// StudentSummaries lists all students in roll order with derived fields.
func (s Snapshot) StudentSummaries() []StudentSummary {
	res := make([]StudentSummary, 0, len(s.Students))
	for _, st := range s.Students {
		sum := StudentSummary{Student: st}
		if crs, ok := s.Course(st.CourseID); ok {
			sum.CourseLabel = crs.Code + " - " + crs.Name
		}
		sum.PresentCount, sum.RecordCount = s.attendanceCounts(st.ID)
		sum.AttendanceRate = s.AttendanceRate(st.ID)
		res = append(res, sum)
	}
	return res
}

// SheetRow is one student on the attendance sheet with their resolved status.
// Status is empty and Marked false when no record exists for the date.
type SheetRow struct {
	Student
	Status Status `json:"status,omitempty"`
	Marked bool   `json:"marked"`
}

// Sheet is the mark-attendance read model for one course and date.
type Sheet struct {
	Course Course     `json:"course"`
	Date   string     `json:"date"`
	Rows   []SheetRow `json:"rows"`
	Stats  DayStats   `json:"stats"`
}

// AttendanceSheet builds the sheet for a course and date. The second return
// is false when the course id is not in the snapshot.
func (s Snapshot) AttendanceSheet(courseID, date string) (Sheet, bool) {
	crs, ok := s.Course(courseID)
	if !ok {
		return Sheet{}, false
	}
	sheet := Sheet{
		Course: crs,
		Date:   date,
		Rows:   []SheetRow{},
		Stats:  s.DailyStats(courseID, date),
	}
	for _, st := range s.CourseStudents(courseID) {
		row := SheetRow{Student: st}
		if status, marked := s.StatusOf(st.ID, courseID, date); marked {
			row.Status = status
			row.Marked = true
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, true
}

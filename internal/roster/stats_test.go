package roster

import "testing"

func twoStudentSnapshot() Snapshot {
	return Snapshot{
		Courses: []Course{{ID: "c1", Code: "CS101", Name: "Intro"}},
		Students: []Student{
			{ID: "a", RollNumber: "001", Name: "A", CourseID: "c1"},
			{ID: "b", RollNumber: "002", Name: "B", CourseID: "c1"},
		},
		Records: []AttendanceRecord{
			{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusPresent},
			{ID: "r2", StudentID: "b", CourseID: "c1", Date: "2024-03-01", Status: StatusAbsent},
		},
	}
}

func TestDailyStatsScenario(t *testing.T) {
	snap := twoStudentSnapshot()
	got := snap.DailyStats("c1", "2024-03-01")
	want := DayStats{Present: 1, Absent: 1, Late: 0, Total: 2}
	if got != want {
		t.Errorf("DailyStats() = %+v, want %+v", got, want)
	}
}

func TestDailyStatsTotalIndependentOfDate(t *testing.T) {
	snap := twoStudentSnapshot()
	for _, date := range []string{"2024-03-01", "2024-03-02", "1999-12-31"} {
		got := snap.DailyStats("c1", date)
		if got.Total != 2 {
			t.Errorf("DailyStats(c1, %s).Total = %d, want 2", date, got.Total)
		}
		if got.Present+got.Absent+got.Late > got.Total {
			t.Errorf("DailyStats(c1, %s) buckets exceed total: %+v", date, got)
		}
	}
}

func TestDailyStatsIgnoresDeletedStudentRecords(t *testing.T) {
	snap := twoStudentSnapshot()
	// Student b is gone but their record survived; it must not count.
	snap.Students = snap.Students[:1]

	got := snap.DailyStats("c1", "2024-03-01")
	want := DayStats{Present: 1, Absent: 0, Late: 0, Total: 1}
	if got != want {
		t.Errorf("DailyStats() = %+v, want %+v", got, want)
	}
	if got.Present+got.Absent+got.Late > got.Total {
		t.Errorf("buckets exceed total: %+v", got)
	}
}

func TestDailyStatsUnknownCourse(t *testing.T) {
	snap := twoStudentSnapshot()
	if got := snap.DailyStats("ghost", "2024-03-01"); got != (DayStats{}) {
		t.Errorf("DailyStats(ghost) = %+v, want zero", got)
	}
}

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name    string
		records []AttendanceRecord
		want    int
	}{
		{name: "no records", records: nil, want: 0},
		{
			name: "two of three present rounds to 67",
			records: []AttendanceRecord{
				{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusPresent},
				{ID: "r2", StudentID: "a", CourseID: "c1", Date: "2024-03-02", Status: StatusPresent},
				{ID: "r3", StudentID: "a", CourseID: "c1", Date: "2024-03-03", Status: StatusLate},
			},
			want: 67,
		},
		{
			name: "half rounds up",
			records: []AttendanceRecord{
				{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusPresent},
				{ID: "r2", StudentID: "a", CourseID: "c1", Date: "2024-03-02", Status: StatusAbsent},
			},
			want: 50,
		},
		{
			name: "spans courses and ignores other students",
			records: []AttendanceRecord{
				{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusPresent},
				{ID: "r2", StudentID: "a", CourseID: "c2", Date: "2024-03-01", Status: StatusAbsent},
				{ID: "r3", StudentID: "b", CourseID: "c1", Date: "2024-03-01", Status: StatusAbsent},
			},
			want: 50,
		},
		{
			name: "late counts against the rate",
			records: []AttendanceRecord{
				{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusLate},
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{Records: tt.records}
			if got := snap.AttendanceRate("a"); got != tt.want {
				t.Errorf("AttendanceRate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCourseStudentsFiltersDeletedCourse(t *testing.T) {
	snap := twoStudentSnapshot()
	snap.Courses = nil // course deleted, students orphaned

	if got := snap.CourseStudents("c1"); len(got) != 0 {
		t.Errorf("CourseStudents(deleted) = %v, want empty", got)
	}
	if len(snap.Students) != 2 {
		t.Errorf("students were dropped from the snapshot: %v", snap.Students)
	}
}

func TestStatusOf(t *testing.T) {
	snap := twoStudentSnapshot()

	status, ok := snap.StatusOf("a", "c1", "2024-03-01")
	if !ok || status != StatusPresent {
		t.Errorf("StatusOf(a) = %v %v, want present true", status, ok)
	}
	if _, ok := snap.StatusOf("a", "c1", "2024-03-02"); ok {
		t.Error("StatusOf(unmarked date) = ok, want miss")
	}
	if _, ok := snap.StatusOf("a", "c2", "2024-03-01"); ok {
		t.Error("StatusOf(other course) = ok, want miss")
	}
}

func TestStatusOfFirstMatchWinsOnDuplicates(t *testing.T) {
	snap := Snapshot{Records: []AttendanceRecord{
		{ID: "r1", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusLate},
		{ID: "r2", StudentID: "a", CourseID: "c1", Date: "2024-03-01", Status: StatusPresent},
	}}
	status, ok := snap.StatusOf("a", "c1", "2024-03-01")
	if !ok || status != StatusLate {
		t.Errorf("StatusOf() = %v, want first match (late)", status)
	}
}

func TestStudentSummariesBlankOrphanCourse(t *testing.T) {
	snap := twoStudentSnapshot()
	snap.Students = append(snap.Students, Student{ID: "z", RollNumber: "003", Name: "Z", CourseID: "gone"})

	sums := snap.StudentSummaries()
	if len(sums) != 3 {
		t.Fatalf("StudentSummaries() len = %d, want 3", len(sums))
	}
	if sums[0].CourseLabel != "CS101 - Intro" {
		t.Errorf("CourseLabel = %q", sums[0].CourseLabel)
	}
	if sums[2].CourseLabel != "" {
		t.Errorf("orphan CourseLabel = %q, want empty", sums[2].CourseLabel)
	}
	if sums[0].AttendanceRate != 100 || sums[0].PresentCount != 1 || sums[0].RecordCount != 1 {
		t.Errorf("summary for A = %+v", sums[0])
	}
}

func TestAttendanceSheet(t *testing.T) {
	snap := twoStudentSnapshot()

	sheet, ok := snap.AttendanceSheet("c1", "2024-03-01")
	if !ok {
		t.Fatal("AttendanceSheet() not found")
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if !sheet.Rows[0].Marked || sheet.Rows[0].Status != StatusPresent {
		t.Errorf("row A = %+v", sheet.Rows[0])
	}
	if sheet.Stats.Present != 1 || sheet.Stats.Absent != 1 || sheet.Stats.Total != 2 {
		t.Errorf("stats = %+v", sheet.Stats)
	}

	if _, ok := snap.AttendanceSheet("ghost", "2024-03-01"); ok {
		t.Error("AttendanceSheet(ghost) = ok, want miss")
	}
}

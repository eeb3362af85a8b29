package main

import (
	"context"
	"flag"
	"log"
	"time"

	"rollcall/internal/config"
	"rollcall/internal/roster"
	"rollcall/internal/store"
)

// Seed loads a small demo roster through the store client so a fresh
// deployment has something to show. Safe to run against the memory backend
// with -dry-run for a quick smoke check.
func main() {
	dryRun := flag.Bool("dry-run", false, "use the in-memory backend regardless of config")
	flag.Parse()

	cfg := config.Load()

	var client store.Client
	switch {
	case *dryRun, cfg.StoreBackend == "memory":
		client = store.NewMemory()
	case cfg.StoreBackend == "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pg.Close()
		client = pg
	default:
		client = store.NewREST(cfg.StoreURL, cfg.StoreKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	svc := roster.NewService(client)
	if err := svc.LoadAll(ctx); err != nil {
		log.Fatalf("initial load failed: %v", err)
	}

	courses := []struct{ code, name, instructor string }{
		{"CS101", "Introduction to Programming", "Dr. Banda"},
		{"MA201", "Linear Algebra", ""},
	}
	courseIDs := make(map[string]string, len(courses))
	for _, c := range courses {
		crs, err := svc.AddCourse(ctx, c.code, c.name, c.instructor)
		if err != nil {
			log.Fatalf("add course %s: %v", c.code, err)
		}
		courseIDs[c.code] = crs.ID
		log.Printf("course %s created (%s)", crs.Code, crs.ID)
	}

	students := []struct{ roll, name, email, course string }{
		{"2024001", "Amina Yusuf", "amina@example.edu", "CS101"},
		{"2024002", "Ben Okafor", "", "CS101"},
		{"2024003", "Chen Wei", "chen@example.edu", "MA201"},
		{"2024004", "Divya Rao", "divya@example.edu", "MA201"},
	}
	studentIDs := make([]string, 0, len(students))
	for _, s := range students {
		st, err := svc.AddStudent(ctx, s.roll, s.name, s.email, courseIDs[s.course])
		if err != nil {
			log.Fatalf("add student %s: %v", s.roll, err)
		}
		studentIDs = append(studentIDs, st.ID)
		log.Printf("student %s enrolled in %s", st.RollNumber, s.course)
	}

	today := time.Now().UTC().Format(roster.DateLayout)
	marks := []roster.Status{roster.StatusPresent, roster.StatusLate, roster.StatusPresent, roster.StatusAbsent}
	snap := svc.Snapshot()
	for i, id := range studentIDs {
		st, _ := snap.Student(id)
		if _, err := svc.MarkAttendance(ctx, id, st.CourseID, today, marks[i]); err != nil {
			log.Fatalf("mark %s: %v", st.RollNumber, err)
		}
	}

	for code, id := range courseIDs {
		stats := svc.Snapshot().DailyStats(id, today)
		log.Printf("%s today: %d present, %d late, %d absent of %d", code, stats.Present, stats.Late, stats.Absent, stats.Total)
	}
	log.Println("seed complete")
}

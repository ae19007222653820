package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"runcoach/internal/analysis"
	"runcoach/internal/store"
	"runcoach/internal/workout"
)

func ptr(v float64) *float64 { return &v }

func runActivity(start time.Time, distance, duration float64) *analysis.Activity {
	samples := make([]analysis.Sample, 10)
	for i := range samples {
		samples[i] = analysis.Sample{
			Offset:     float64(i) * duration / 10,
			HeartRate:  ptr(150),
			Cadence:    ptr(178),
			GCT:        ptr(240),
			GCTBalance: ptr(50.3),
			Pace:       ptr(duration / distance * 1000),
		}
	}
	return &analysis.Activity{
		Summary: analysis.Summary{
			Name:          "Run",
			Sport:         "running",
			StartTime:     start,
			TotalDistance: distance,
			TotalDuration: duration,
			AvgPace:       duration / distance * 1000,
		},
		Samples: samples,
		Laps: []analysis.Lap{{
			Number:   1,
			Distance: distance,
			Duration: duration,
			AvgPace:  duration / distance * 1000,
		}},
	}
}

// fakeDecoder serves activities by file stem and counts decodes.
type fakeDecoder struct {
	activities map[string]*analysis.Activity
	calls      atomic.Int32
}

func (d *fakeDecoder) decode(path string) (*analysis.Activity, error) {
	d.calls.Add(1)
	a, ok := d.activities[stemOf(path)]
	if !ok {
		return nil, errors.New("not a FIT file")
	}
	cp := *a
	return &cp, nil
}

type fakeSource struct {
	workouts []analysis.PlannedWorkout
	err      error
	days     []time.Time
}

func (s *fakeSource) ScheduledWorkouts(_ context.Context, day time.Time) ([]analysis.PlannedWorkout, error) {
	s.days = append(s.days, day)
	return s.workouts, s.err
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("fit"), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func openStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenPath(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T, dir string, db *store.DB, src *fakeSource, dec *fakeDecoder) *ActivityService {
	t.Helper()
	var source workout.Source
	if src != nil {
		source = src
	}
	s := NewActivityService(dir, db, source, analysis.DefaultOptions())
	s.decode = dec.decode
	s.now = func() time.Time { return time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestActivityGarminID(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"21487950438", "21487950438"},
		{"2026-01-08_New_York_-_Quality_Session_21487950438", "21487950438"},
		{"morning_run", "morning_run"},
		{"run_2026", "2026"},
	}
	for _, tt := range tests {
		if got := ActivityGarminID(tt.stem); got != tt.want {
			t.Errorf("ActivityGarminID(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{"2026-01-08_New_York_-_Quality_Session_21487950438", "New York - Quality Session"},
		{"21487950438", "Run 21487950438"},
		{"2026-01-08_21487950438", "Run 21487950438"},
		{"Easy_Shakeout", "Easy Shakeout"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.stem); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.stem, got, tt.want)
		}
	}
}

func TestScanFitFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"21487950438.fit",
		"2026-01-08_Quality_Session_21487950438.fit",
		"21500000000.FIT",
		"notes.txt",
	)

	got, err := scanFitFiles(dir)
	if err != nil {
		t.Fatalf("scanFitFiles() error = %v", err)
	}
	want := map[string]string{
		"21487950438": filepath.Join(dir, "2026-01-08_Quality_Session_21487950438.fit"),
		"21500000000": filepath.Join(dir, "21500000000.FIT"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scanFitFiles() mismatch (-want +got):\n%s", diff)
	}

	missing, err := scanFitFiles(filepath.Join(dir, "nope"))
	if err != nil || len(missing) != 0 {
		t.Errorf("scanFitFiles(missing) = %v, %v", missing, err)
	}
}

func TestListActivities(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"2026-03-08_Easy_Run_100.fit",
		"100.fit",
		"2026-03-10_Tempo_Run_200.fit",
		"2026-03-09_Long_Run_300.fit",
		"broken_400.fit",
	)

	base := time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC)
	dec := &fakeDecoder{activities: map[string]*analysis.Activity{
		"2026-03-08_Easy_Run_100":  runActivity(base, 6000, 2100),
		"2026-03-10_Tempo_Run_200": runActivity(base.AddDate(0, 0, 2), 10000, 3000),
		"2026-03-09_Long_Run_300":  runActivity(base.AddDate(0, 0, 1), 18000, 6300),
	}}
	db := openStore(t)
	s := newTestService(t, dir, db, nil, dec)

	got, err := s.ListActivities(context.Background())
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}

	var ids []string
	for _, a := range got {
		ids = append(ids, a.ID)
	}
	wantIDs := []string{"2026-03-10_Tempo_Run_200", "2026-03-09_Long_Run_300", "2026-03-08_Easy_Run_100", "broken_400"}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Fatalf("ListActivities() order mismatch (-want +got):\n%s", diff)
	}

	tempo := got[0]
	if tempo.Name != "Tempo Run" || tempo.DistanceKm != 10 || tempo.DurationSeconds != 3000 || !tempo.Analyzed {
		t.Errorf("tempo = %+v", tempo)
	}
	if tempo.Grades == nil || tempo.Grades.GCT != analysis.GradeB || tempo.Grades.Cadence != analysis.GradeB {
		t.Errorf("tempo grades = %+v", tempo.Grades)
	}
	if !tempo.HasRunningDynamics {
		t.Error("tempo should have running dynamics")
	}

	broken := got[3]
	if broken.Analyzed || broken.Grades != nil || broken.Name != "Run 400" {
		t.Errorf("broken = %+v", broken)
	}

	if dec.calls.Load() != 4 {
		t.Errorf("decoded %d files, want 4", dec.calls.Load())
	}

	// Unchanged files come from the cache
	again, err := s.ListActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dec.calls.Load() != 4 {
		t.Errorf("second listing decoded again: %d calls", dec.calls.Load())
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("cached listing mismatch (-first +second):\n%s", diff)
	}

	last, err := s.LastScan()
	if err != nil || !last.Equal(time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("LastScan() = %v, %v", last, err)
	}
}

func TestListActivities_Limit(t *testing.T) {
	dir := t.TempDir()
	dec := &fakeDecoder{activities: map[string]*analysis.Activity{}}

	base := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < ActivityListLimit+5; i++ {
		stem := fmt.Sprintf("%d", 1000+i)
		touch(t, dir, stem+".fit")
		dec.activities[stem] = runActivity(base.AddDate(0, 0, i), 5000, 1500)
	}

	s := newTestService(t, dir, nil, nil, dec)
	got, err := s.ListActivities(context.Background())
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(got) != ActivityListLimit {
		t.Fatalf("got %d activities, want %d", len(got), ActivityListLimit)
	}
	if got[0].ID != "1024" {
		t.Errorf("first = %s, want the most recent", got[0].ID)
	}
}

func TestListActivities_Canceled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "1.fit", "2.fit")
	s := newTestService(t, dir, nil, nil, &fakeDecoder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ListActivities(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListActivities() error = %v, want context.Canceled", err)
	}
}

func steadyWorkout(name string) analysis.PlannedWorkout {
	return analysis.PlannedWorkout{
		Name:              name,
		ScheduledDate:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EstimatedDistance: 10000,
		Steps: []analysis.PlannedStep{{
			Type:           "interval",
			TargetDistance: 10000,
			PaceTarget:     &analysis.PaceTarget{Fast: 290, Slow: 310},
		}},
	}
}

func TestGetActivity_WithWorkout(t *testing.T) {
	dir := t.TempDir()
	id := "2026-03-10_Tempo_Run_200"
	touch(t, dir, id+".fit")

	dec := &fakeDecoder{activities: map[string]*analysis.Activity{
		id: runActivity(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), 10000, 3000),
	}}
	src := &fakeSource{workouts: []analysis.PlannedWorkout{steadyWorkout("Long Run"), steadyWorkout("Tempo Run")}}
	db := openStore(t)
	s := newTestService(t, dir, db, src, dec)

	detail, err := s.GetActivity(context.Background(), id)
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}

	if detail.ID != id || detail.Summary.Name != "Tempo Run" || detail.DistanceKm != 10 {
		t.Errorf("detail = %+v", detail)
	}
	if len(src.days) != 1 || src.days[0].Format("2006-01-02") != time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC).Local().Format("2006-01-02") {
		t.Errorf("source queried for %v", src.days)
	}
	if detail.Compliance == nil {
		t.Fatal("Compliance is nil, want matched workout")
	}
	if detail.Compliance.WorkoutName != "Tempo Run" || detail.Compliance.CompliancePercent != 100 {
		t.Errorf("Compliance = %+v", detail.Compliance)
	}

	list, err := s.ListActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].CompliancePercent == nil || *list[0].CompliancePercent != 100 || list[0].WorkoutName != "Tempo Run" {
		t.Errorf("list row = %+v, want cached compliance", list)
	}
}

func TestGetActivity_SourceError(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "200.fit")

	dec := &fakeDecoder{activities: map[string]*analysis.Activity{
		"200": runActivity(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), 10000, 3000),
	}}
	src := &fakeSource{err: errors.New("calendar down")}
	s := newTestService(t, dir, openStore(t), src, dec)

	detail, err := s.GetActivity(context.Background(), "200")
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if detail.Compliance != nil {
		t.Errorf("Compliance = %+v, want nil when the source fails", detail.Compliance)
	}
	if detail.Summary.Name != "Run 200" {
		t.Errorf("Name = %q", detail.Summary.Name)
	}
}

func TestGetActivity_Errors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "broken.fit")
	s := newTestService(t, dir, nil, nil, &fakeDecoder{})

	tests := []struct {
		id   string
		want error
	}{
		{"../etc/passwd", ErrInvalidID},
		{"", ErrInvalidID},
		{"missing", ErrActivityNotFound},
		{"broken", ErrUndecodable},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := s.GetActivity(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("GetActivity(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestAnalyzeFile_ExplicitWorkout(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "race.fit")

	dec := &fakeDecoder{activities: map[string]*analysis.Activity{
		"race": runActivity(time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), 10000, 3400),
	}}
	src := &fakeSource{}
	s := newTestService(t, dir, nil, src, dec)

	w := steadyWorkout("Goal Pace")
	detail, err := s.AnalyzeFile(context.Background(), filepath.Join(dir, "race.fit"), &w)
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if len(src.days) != 0 {
		t.Error("explicit workout should skip the source")
	}
	if detail.Compliance == nil || detail.Compliance.StepsMissed != 1 || detail.Compliance.CompliancePercent != 0 {
		t.Errorf("Compliance = %+v, want the single step missed at 340 s/km", detail.Compliance)
	}
}

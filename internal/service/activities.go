// Package service ties FIT files, workout sources, the analysis engine and
// the local cache together for the HTTP and CLI surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"runcoach/internal/analysis"
	"runcoach/internal/fitfile"
	"runcoach/internal/store"
	"runcoach/internal/workout"
	"runcoach/internal/xslog"
)

var (
	// ErrActivityNotFound is returned when no FIT file exists for an id
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidID is returned for ids that are not plain file stems
	ErrInvalidID = errors.New("invalid activity id")
	// ErrUndecodable is returned when a FIT file can't be read as an activity
	ErrUndecodable = errors.New("activity file could not be decoded")
)

// Decoder reads a FIT file into an activity
type Decoder func(path string) (*analysis.Activity, error)

// ActivityService lists and analyzes activities from a FIT directory
type ActivityService struct {
	fitDir string
	db     *store.DB      // nil disables caching
	source workout.Source // nil disables compliance
	opts   analysis.Options
	decode Decoder
	now    func() time.Time
}

// NewActivityService creates a service over the FIT files in fitDir.
// db and source are optional.
func NewActivityService(fitDir string, db *store.DB, source workout.Source, opts analysis.Options) *ActivityService {
	return &ActivityService{
		fitDir: fitDir,
		db:     db,
		source: source,
		opts:   opts,
		decode: fitfile.DecodeFile,
		now:    time.Now,
	}
}

// ActivitySummary is one row of the activity list
type ActivitySummary struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"activityName"`
	StartTime          time.Time              `json:"startTime"`
	DistanceKm         float64                `json:"distanceKm"`
	DurationSeconds    int                    `json:"durationSeconds"`
	Sport              string                 `json:"activityType"`
	FitFilePath        string                 `json:"fitFilePath"`
	Analyzed           bool                   `json:"hasBeenAnalyzed"`
	HasRunningDynamics bool                   `json:"hasRunningDynamics"`
	WorkoutName        string                 `json:"workoutName,omitempty"`
	CompliancePercent  *int                   `json:"compliancePercent,omitempty"`
	Grades             *analysis.GradeSummary `json:"grades,omitempty"`
}

// ActivityDetail is the full analysis of one activity
type ActivityDetail struct {
	ID              string  `json:"id"`
	FitFilePath     string  `json:"fitFilePath"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationSeconds int     `json:"durationSeconds"`
	*analysis.Report
}

// ListActivities scans the FIT directory and returns up to ActivityListLimit
// activities, most recent first. Files sharing an activity id are listed once.
// Files that fail to decode are listed with Analyzed unset.
func (s *ActivityService) ListActivities(ctx context.Context) ([]ActivitySummary, error) {
	files, err := scanFitFiles(s.fitDir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for _, p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	summaries := make([]ActivitySummary, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DecodeConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summaries[i] = s.summarize(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.attachCompliance(ctx, summaries)

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	if len(summaries) > ActivityListLimit {
		summaries = summaries[:ActivityListLimit]
	}

	s.recordScan(ctx, len(paths))

	xslog.FromContext(ctx).DebugContext(ctx, "listed activities", xslog.Count(len(summaries)))
	return summaries, nil
}

// summarize returns the list row for one file, from the cache when the file
// is unchanged since it was last decoded.
func (s *ActivityService) summarize(ctx context.Context, path string) ActivitySummary {
	logger := xslog.FromContext(ctx)
	id := stemOf(path)

	var modTime time.Time
	if info, err := os.Stat(path); err == nil {
		modTime = info.ModTime()
	}

	if s.db != nil && !modTime.IsZero() {
		cached, err := s.db.GetFreshActivity(id, modTime)
		if err == nil {
			return summaryFromStore(cached)
		}
		if !errors.Is(err, store.ErrActivityNotFound) {
			logger.WarnContext(ctx, "reading activity cache", xslog.ActivityID(id), xslog.Error(err))
		}
	}

	row := store.Activity{
		ID:          id,
		GarminID:    ActivityGarminID(id),
		FilePath:    path,
		FileModTime: modTime,
		Name:        DisplayName(id),
	}

	activity, err := s.decode(path)
	if err != nil {
		logger.WarnContext(ctx, "decoding FIT file", xslog.File(path), xslog.Error(err))
	} else {
		fillRow(&row, activity)
	}

	if s.db != nil && !modTime.IsZero() {
		if err := s.db.UpsertActivity(&row); err != nil {
			logger.WarnContext(ctx, "caching activity", xslog.ActivityID(id), xslog.Error(err))
		}
	}

	return summaryFromStore(&row)
}

// fillRow copies decoded totals and grades into a cache row.
func fillRow(row *store.Activity, activity *analysis.Activity) {
	sum := activity.Summary
	metrics := analysis.SummarizeMetrics(activity.Samples)

	row.Sport = sum.Sport
	row.StartTime = sum.StartTime
	row.Distance = sum.TotalDistance
	row.Duration = sum.TotalDuration
	row.AvgPace = sum.AvgPace
	row.AvgHeartRate = sum.AvgHeartRate
	row.HasRunningDynamics = analysis.HasRunningDynamics(activity.Samples)
	row.Grades = metrics.Grades()
	row.Analyzed = true
}

func summaryFromStore(a *store.Activity) ActivitySummary {
	summary := ActivitySummary{
		ID:                 a.ID,
		Name:               a.Name,
		StartTime:          a.StartTime,
		DistanceKm:         a.Distance / MetersPerKm,
		DurationSeconds:    int(a.Duration),
		Sport:              a.Sport,
		FitFilePath:        a.FilePath,
		Analyzed:           a.Analyzed,
		HasRunningDynamics: a.HasRunningDynamics,
	}
	if summary.Sport == "" {
		summary.Sport = "running"
	}
	// grades are only shown when the core dynamics were recorded
	if a.Grades.Cadence != analysis.GradeNone && a.Grades.GCT != analysis.GradeNone {
		g := a.Grades
		summary.Grades = &g
	}
	return summary
}

func (s *ActivityService) attachCompliance(ctx context.Context, summaries []ActivitySummary) {
	if s.db == nil || len(summaries) == 0 {
		return
	}

	ids := make([]string, len(summaries))
	for i, a := range summaries {
		ids[i] = a.ID
	}

	byID, err := s.db.GetComplianceByActivity(ids)
	if err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "reading compliance cache", xslog.Error(err))
		return
	}

	for i := range summaries {
		if c, ok := byID[summaries[i].ID]; ok {
			pct := c.CompliancePercent
			summaries[i].WorkoutName = c.WorkoutName
			summaries[i].CompliancePercent = &pct
		}
	}
}

func (s *ActivityService) recordScan(ctx context.Context, files int) {
	if s.db == nil {
		return
	}
	err := s.db.SetScanState(store.StateLastScan, s.now().UTC().Format(time.RFC3339))
	if err == nil {
		err = s.db.SetScanState(store.StateLastScanFiles, strconv.Itoa(files))
	}
	if err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "recording scan", xslog.Error(err))
	}
}

// GetActivity decodes and analyzes the activity with the given id. The planned
// workout is looked up in the workout source by the activity's start date;
// when one is found its compliance is computed and cached for the list view.
func (s *ActivityService) GetActivity(ctx context.Context, id string) (*ActivityDetail, error) {
	if !validID(id) {
		return nil, ErrInvalidID
	}

	path := filepath.Join(s.fitDir, id+FitExt)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat FIT file: %w", err)
	}

	activity, err := s.decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	activity.Summary.Name = DisplayName(id)

	planned := s.scheduledWorkout(ctx, id, activity)

	detail, err := s.analyze(id, path, activity, planned)
	if err != nil {
		return nil, err
	}

	s.cacheDetail(ctx, id, path, info.ModTime(), activity, detail)
	return detail, nil
}

// AnalyzeFile analyzes a FIT file outside the FIT directory. A nil planned
// workout is looked up in the workout source.
func (s *ActivityService) AnalyzeFile(ctx context.Context, path string, planned *analysis.PlannedWorkout) (*ActivityDetail, error) {
	activity, err := s.decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	id := stemOf(path)
	activity.Summary.Name = DisplayName(id)

	if planned == nil {
		planned = s.scheduledWorkout(ctx, id, activity)
	}
	return s.analyze(id, path, activity, planned)
}

func (s *ActivityService) analyze(id, path string, activity *analysis.Activity, planned *analysis.PlannedWorkout) (*ActivityDetail, error) {
	report, err := analysis.Analyze(*activity, planned, s.opts)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", id, err)
	}

	return &ActivityDetail{
		ID:              id,
		FitFilePath:     path,
		DistanceKm:      activity.Summary.TotalDistance / MetersPerKm,
		DurationSeconds: int(activity.Summary.TotalDuration),
		Report:          report,
	}, nil
}

// scheduledWorkout finds the workout planned for the activity's day. Source
// failures are logged; the activity is then analyzed without compliance.
func (s *ActivityService) scheduledWorkout(ctx context.Context, id string, activity *analysis.Activity) *analysis.PlannedWorkout {
	start := activity.Summary.StartTime
	if s.source == nil || start.IsZero() {
		return nil
	}

	logger := xslog.FromContext(ctx)

	day := start.Local()
	workouts, err := s.source.ScheduledWorkouts(ctx, day)
	if err != nil {
		logger.WarnContext(ctx, "fetching scheduled workouts", xslog.ActivityID(id), xslog.Day(day), xslog.Error(err))
		return nil
	}

	planned := workout.Select(workouts, workout.NameFromStem(id), activity.Summary.TotalDistance)
	if planned != nil {
		logger.DebugContext(ctx, "matched workout", xslog.ActivityID(id), xslog.Workout(planned.Name))
	}
	return planned
}

func (s *ActivityService) cacheDetail(ctx context.Context, id, path string, modTime time.Time, activity *analysis.Activity, detail *ActivityDetail) {
	if s.db == nil {
		return
	}
	logger := xslog.FromContext(ctx)

	row := store.Activity{
		ID:          id,
		GarminID:    ActivityGarminID(id),
		FilePath:    path,
		FileModTime: modTime,
		Name:        activity.Summary.Name,
	}
	fillRow(&row, activity)
	if err := s.db.UpsertActivity(&row); err != nil {
		logger.WarnContext(ctx, "caching activity", xslog.ActivityID(id), xslog.Error(err))
		return
	}

	c := detail.Compliance
	if c == nil {
		return
	}
	err := s.db.SaveCompliance(&store.Compliance{
		ActivityID:        id,
		WorkoutName:       c.WorkoutName,
		CompliancePercent: c.CompliancePercent,
		DistanceStatus:    c.DistanceStatus,
	})
	if err != nil {
		logger.WarnContext(ctx, "caching compliance", xslog.ActivityID(id), xslog.Error(err))
		return
	}
	logger.InfoContext(ctx, "cached compliance", xslog.ActivityID(id), xslog.Workout(c.WorkoutName), xslog.Compliance(c.CompliancePercent))
}

// LastScan returns when the FIT directory was last listed, or the zero time
// when caching is disabled.
func (s *ActivityService) LastScan() (time.Time, error) {
	if s.db == nil {
		return time.Time{}, nil
	}
	return s.db.LastScan()
}

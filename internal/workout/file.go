package workout

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	go_json "github.com/goccy/go-json"

	"runcoach/internal/analysis"
	"runcoach/internal/xslog"
)

// FileSource reads workouts from JSON documents in a directory, one workout
// per file. A missing directory has no workouts.
type FileSource struct {
	Dir string
}

// NewFileSource creates a source over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// ScheduledWorkouts returns the workouts scheduled on day, ordered by file name.
// Documents that fail to parse are logged and skipped.
func (s *FileSource) ScheduledWorkouts(ctx context.Context, day time.Time) ([]analysis.PlannedWorkout, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	sort.Strings(paths)

	logger := xslog.FromContext(ctx)

	var workouts []analysis.PlannedWorkout
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := LoadFile(path)
		if err != nil {
			logger.WarnContext(ctx, "skipping workout file", xslog.File(path), xslog.Error(err))
			continue
		}
		if !SameDay(w.ScheduledDate, day) {
			continue
		}
		workouts = append(workouts, w)
	}

	return workouts, nil
}

// LoadFile reads a single workout document.
func LoadFile(path string) (analysis.PlannedWorkout, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return analysis.PlannedWorkout{}, fmt.Errorf("workout file %s: %w", path, err)
	}
	if err != nil {
		return analysis.PlannedWorkout{}, fmt.Errorf("reading workout file: %w", err)
	}

	var doc Document
	if err := go_json.Unmarshal(data, &doc); err != nil {
		return analysis.PlannedWorkout{}, fmt.Errorf("parsing workout file %s: %w", path, err)
	}

	return doc.Workout()
}

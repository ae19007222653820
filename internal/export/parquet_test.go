package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"runcoach/internal/analysis"
)

func ptr(v float64) *float64 { return &v }

func testActivity() analysis.Activity {
	return analysis.Activity{
		Summary: analysis.Summary{StartTime: time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC)},
		Samples: []analysis.Sample{
			{Offset: 0, HeartRate: ptr(140), Cadence: ptr(176), GCT: ptr(245)},
			{Offset: 299, HeartRate: ptr(150), Cadence: ptr(178)},
			{Offset: 300, HeartRate: ptr(152), Pace: ptr(298.5), Power: ptr(310)},
		},
		Laps: []analysis.Lap{
			{Number: 1, StartOffset: 0, Distance: 1000, Duration: 300},
			{Number: 2, StartOffset: 300, Distance: 1000, Duration: 300},
		},
	}
}

func readRows(t *testing.T, data []byte) []sampleRow {
	t.Helper()
	fr := parquetbuffer.NewBufferFileFromBytes(data)
	pr, err := reader.NewParquetReader(fr, new(sampleRow), 1)
	if err != nil {
		t.Fatalf("opening parquet: %v", err)
	}
	defer pr.ReadStop()

	rows := make([]sampleRow, pr.GetNumRows())
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	return rows
}

func TestMarshalSamples(t *testing.T) {
	data, err := MarshalSamples("tempo", testActivity())
	if err != nil {
		t.Fatalf("MarshalSamples() error = %v", err)
	}

	want := []sampleRow{
		{ActivityID: "tempo", TSUTCISO: "2026-03-10T06:30:00Z", ElapsedS: 0, Lap: 1, HRBPM: ptr(140), CadenceSPM: ptr(176), GCTMs: ptr(245)},
		{ActivityID: "tempo", TSUTCISO: "2026-03-10T06:34:59Z", ElapsedS: 299, Lap: 1, HRBPM: ptr(150), CadenceSPM: ptr(178)},
		{ActivityID: "tempo", TSUTCISO: "2026-03-10T06:35:00Z", ElapsedS: 300, Lap: 2, HRBPM: ptr(152), PaceSecKm: ptr(298.5), PowerW: ptr(310)},
	}
	if diff := cmp.Diff(want, readRows(t, data)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSamples(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSamples(&buf, "tempo", testActivity()); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PAR1")) {
		t.Error("output is not a parquet file")
	}
}

func TestWriteFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := WriteFile(path, "empty", analysis.Activity{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rows := readRows(t, data); len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestLapAt(t *testing.T) {
	starts := lapStarts([]analysis.Lap{
		{Number: 2, StartOffset: 300},
		{Number: 1, StartOffset: 10},
	})
	tests := []struct {
		offset float64
		want   int32
	}{
		{0, 0},
		{10, 1},
		{299.9, 1},
		{300, 2},
		{5000, 2},
	}
	for _, tt := range tests {
		if got := lapAt(starts, tt.offset); got != tt.want {
			t.Errorf("lapAt(%v) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

// Package export writes analyzed activity samples to columnar files.
package export

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"runcoach/internal/analysis"
)

// sampleRow is one record-stream sample. Metrics the sensor did not report are null.
type sampleRow struct {
	ActivityID       string   `parquet:"name=activity_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TSUTCISO         string   `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8"`
	ElapsedS         float64  `parquet:"name=elapsed_s, type=DOUBLE"`
	Lap              int32    `parquet:"name=lap, type=INT32"`
	HRBPM            *float64 `parquet:"name=hr_bpm, type=DOUBLE, repetitiontype=OPTIONAL"`
	CadenceSPM       *float64 `parquet:"name=cadence_spm, type=DOUBLE, repetitiontype=OPTIONAL"`
	PaceSecKm        *float64 `parquet:"name=pace_sec_km, type=DOUBLE, repetitiontype=OPTIONAL"`
	GCTMs            *float64 `parquet:"name=gct_ms, type=DOUBLE, repetitiontype=OPTIONAL"`
	GCTBalancePct    *float64 `parquet:"name=gct_balance_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	VerticalRatioPct *float64 `parquet:"name=vertical_ratio_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	VerticalOscCm    *float64 `parquet:"name=vertical_oscillation_cm, type=DOUBLE, repetitiontype=OPTIONAL"`
	StrideLengthM    *float64 `parquet:"name=stride_length_m, type=DOUBLE, repetitiontype=OPTIONAL"`
	PowerW           *float64 `parquet:"name=power_w, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// parallelism of the parquet column encoders
const writerParallelism = 4

// MarshalSamples encodes an activity's samples as a snappy-compressed parquet
// file. Each row carries the lap it falls in; samples before the first lap
// start get lap 0.
func MarshalSamples(activityID string, activity analysis.Activity) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(sampleRow), writerParallelism)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	laps := lapStarts(activity.Laps)
	start := activity.Summary.StartTime

	for _, s := range activity.Samples {
		row := sampleRow{
			ActivityID:       activityID,
			ElapsedS:         s.Offset,
			Lap:              lapAt(laps, s.Offset),
			HRBPM:            s.HeartRate,
			CadenceSPM:       s.Cadence,
			PaceSecKm:        s.Pace,
			GCTMs:            s.GCT,
			GCTBalancePct:    s.GCTBalance,
			VerticalRatioPct: s.VerticalRatio,
			VerticalOscCm:    s.VerticalOscillation,
			StrideLengthM:    s.StrideLength,
			PowerW:           s.Power,
		}
		if !start.IsZero() {
			row.TSUTCISO = start.Add(time.Duration(s.Offset * float64(time.Second))).UTC().Format(time.RFC3339)
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing sample at %.0fs: %w", s.Offset, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteSamples writes the parquet encoding of the samples to w.
func WriteSamples(w io.Writer, activityID string, activity analysis.Activity) error {
	data, err := MarshalSamples(activityID, activity)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes the samples to a parquet file at path.
func WriteFile(path, activityID string, activity analysis.Activity) error {
	data, err := MarshalSamples(activityID, activity)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

type lapStart struct {
	offset float64
	number int32
}

func lapStarts(laps []analysis.Lap) []lapStart {
	starts := make([]lapStart, len(laps))
	for i, l := range laps {
		starts[i] = lapStart{offset: l.StartOffset, number: int32(l.Number)}
	}
	sort.SliceStable(starts, func(i, j int) bool { return starts[i].offset < starts[j].offset })
	return starts
}

// lapAt returns the number of the last lap starting at or before offset.
func lapAt(starts []lapStart, offset float64) int32 {
	i := sort.Search(len(starts), func(i int) bool { return starts[i].offset > offset })
	if i == 0 {
		return 0
	}
	return starts[i-1].number
}

package analysis

import (
	"errors"
	"fmt"
	"math"
)

// ErrSamplesNotOrdered is returned when sample offsets go backwards in time.
var ErrSamplesNotOrdered = errors.New("samples are not time-ordered")

// ErrLapsNotOrdered is returned when laps are out of sequence.
var ErrLapsNotOrdered = errors.New("laps are not time-ordered")

func checkSamplesOrdered(samples []Sample) error {
	for i := 1; i < len(samples); i++ {
		if math.IsNaN(samples[i].Offset) || samples[i].Offset < samples[i-1].Offset {
			return fmt.Errorf("%w: sample %d at %.1fs follows %.1fs",
				ErrSamplesNotOrdered, i, samples[i].Offset, samples[i-1].Offset)
		}
	}
	return nil
}

func checkLapsOrdered(laps []Lap) error {
	for i := 1; i < len(laps); i++ {
		prev, cur := laps[i-1], laps[i]
		if cur.Number <= prev.Number {
			return fmt.Errorf("%w: lap %d follows lap %d", ErrLapsNotOrdered, cur.Number, prev.Number)
		}
		if cur.StartOffset < prev.StartOffset {
			return fmt.Errorf("%w: lap %d starts at %.1fs before lap %d at %.1fs",
				ErrLapsNotOrdered, cur.Number, cur.StartOffset, prev.Number, prev.StartOffset)
		}
	}
	return nil
}

// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package ncio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/baptistehamon/nzlusdb"
)

var unitSeconds = map[string]float64{
	"days":    86400,
	"day":     86400,
	"d":       86400,
	"hours":   3600,
	"hour":    3600,
	"h":       3600,
	"minutes": 60,
	"minute":  60,
	"seconds": 1,
	"second":  1,
	"s":       1,
}

// Years converts time coordinates
// in CF units
// (for example "days since 1850-01-01")
// into calendar years.
// Coordinates in "years" or without units
// are returned without changes.
func Years(vals []float64, units, calendar string) ([]float64, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || strings.ToLower(fields[1]) != "since" {
		switch strings.ToLower(units) {
		case "", "year", "years", "yr":
			return vals, nil
		}
		return nil, fmt.Errorf("unknown time units %q: %w", units, nzlusdb.ErrConfig)
	}

	sec, ok := unitSeconds[strings.ToLower(fields[0])]
	if !ok {
		return nil, fmt.Errorf("unknown time units %q: %w", units, nzlusdb.ErrConfig)
	}
	ref, err := time.Parse("2006-1-2", strings.TrimSuffix(fields[2], "T00:00:00"))
	if err != nil {
		return nil, fmt.Errorf("time units %q: %v: %w", units, err, nzlusdb.ErrConfig)
	}

	var yearLen float64
	switch strings.ToLower(calendar) {
	case "noleap", "365_day":
		yearLen = 365
	case "all_leap", "366_day":
		yearLen = 366
	case "360_day":
		yearLen = 360
	}

	years := make([]float64, len(vals))
	for i, v := range vals {
		days := v * sec / 86400
		if yearLen == 0 {
			t := ref.AddDate(0, 0, int(math.Floor(days)))
			years[i] = float64(t.Year())
			continue
		}
		start := float64(ref.YearDay() - 1)
		if yearLen == 360 {
			start = float64((int(ref.Month())-1)*30 + ref.Day() - 1)
		}
		years[i] = float64(ref.Year()) + math.Floor((start+days)/yearLen)
	}
	return years, nil
}

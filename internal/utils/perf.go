package utils

import (
	"time"

	"github.com/airenas/go-app/pkg/goapp"
)

// MeasureTime logs time elapsed since start, use as defer MeasureTime("name", time.Now())
func MeasureTime(name string, start time.Time) {
	goapp.Log.Debug().Dur("elapsed", time.Since(start)).Str("func", name).Msg("time")
}

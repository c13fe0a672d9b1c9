// Package timecode formats and parses the clock notations exchanged with
// external tools: HH:MM:SS for progress logs, HH:MM:SS.ffff for chapter files,
// and HH:MM:SS,mmm for SubRip captions.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Clock renders whole seconds as HH:MM:SS, truncating the fraction.
func Clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Fraction renders seconds as HH:MM:SS.ffff rounded to the nearest
// ten-thousandth of a second.
func Fraction(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	ticks := int64(math.Round(seconds * 10_000))
	hours := ticks / 36_000_000
	ticks %= 36_000_000
	minutes := ticks / 600_000
	ticks %= 600_000
	return fmt.Sprintf("%02d:%02d:%02d.%04d", hours, minutes, ticks/10_000, ticks%10_000)
}

// SRT renders seconds as HH:MM:SS,mmm rounded to the nearest millisecond.
func SRT(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	msTotal := int64(math.Round(seconds * 1000))
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Parse reads HH:MM:SS with an optional fraction separated by a comma or a
// period. The fraction may have any number of digits.
func Parse(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	clock, frac := value, ""
	if idx := strings.IndexAny(value, ",."); idx >= 0 {
		clock, frac = value[:idx], value[idx+1:]
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	secs, errS := strconv.Atoi(hms[2])
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || secs < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	result := float64(hours*3600 + minutes*60 + secs)
	if frac != "" {
		digits, err := strconv.ParseUint(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		result += float64(digits) / math.Pow10(len(frac))
	}
	return result, nil
}

package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/justyntemme/hush/pkg/midi"
)

// Common parameter formatters and parsers

// TimeFormatter formats time values with appropriate units
func TimeFormatter(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.1f ms", ms)
}

// TimeParser parses time strings in ms (default) or s.
func TimeParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))

	if strings.HasSuffix(str, "s") && !strings.HasSuffix(str, "ms") {
		val, err := parseFloat(strings.TrimSpace(strings.TrimSuffix(str, "s")))
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}

	return parseFloat(strings.TrimSpace(strings.TrimSuffix(str, "ms")))
}

// LevelFormatter formats a 0-1 level as a percentage.
func LevelFormatter(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}

// LevelParser accepts "50%" or a plain 0-1 number.
func LevelParser(str string) (float64, error) {
	str = strings.TrimSpace(str)
	if strings.HasSuffix(str, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "%")), 64)
		if err != nil {
			return 0, err
		}
		return v / 100, nil
	}
	return strconv.ParseFloat(str, 64)
}

// KeyFormatter formats a key selector value: "Any" for -1, otherwise the
// note name.
func KeyFormatter(key float64) string {
	k := int(math.Round(key))
	switch {
	case k == -1:
		return "Any"
	case k >= 0 && k <= 127:
		return midi.NoteName(uint8(k))
	}
	return ""
}

var pitchClasses = map[string]int{
	"C":  0,
	"C#": 1, "DB": 1,
	"D":  2,
	"D#": 3, "EB": 3,
	"E":  4,
	"F":  5,
	"F#": 6, "GB": 6,
	"G":  7,
	"G#": 8, "AB": 8,
	"A":  9,
	"A#": 10, "BB": 10,
	"B": 11,
}

// KeyParser parses "Any", a note number, or a note name such as "C 3",
// "c#3" or "Eb-1". Middle C (60) is C 3.
func KeyParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	if str == "ANY" || str == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(str); err == nil {
		if n < -1 || n > 127 {
			return 0, fmt.Errorf("key out of range: %d", n)
		}
		return float64(n), nil
	}

	octaveStart := -1
	for i, ch := range str {
		if ch >= '0' && ch <= '9' || ch == '-' {
			octaveStart = i
			break
		}
	}
	if octaveStart <= 0 {
		return 0, fmt.Errorf("no octave number found in note: %s", str)
	}

	name := strings.TrimSpace(str[:octaveStart])
	offset, ok := pitchClasses[name]
	if !ok {
		return 0, fmt.Errorf("unknown note name: %s", name)
	}
	octave, err := strconv.Atoi(str[octaveStart:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave number: %s", str[octaveStart:])
	}

	note := (octave+2)*12 + offset
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("note out of range: %s", str)
	}
	return float64(note), nil
}

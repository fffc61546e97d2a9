// Package timecode turns frame based cue boundaries found in DSX documents
// into normalized SubRip timestamps.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"dsx2srt/common"
)

// DefaultBoundary is used for cues which do not specify begin or end.
const DefaultBoundary = "00:00:00,000"

var (
	// ErrFormat is returned for boundaries and frame fields which could not be
	// parsed, wrapped errors name the offending value.
	ErrFormat = errors.New("invalid time format, expected HH:MM:SS,mmm")
	// ErrNoFrameRate is returned when non-zero frame field has to be scaled
	// but document has no frame rate and policy does not allow fallback.
	ErrNoFrameRate = errors.New("document does not declare frame rate")
)

// intermediate form, sub-second field may overflow into 6 digits before
// it is carried into seconds
var boundaryPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3,6})$`)

// Timecode is a normalized cue boundary. Hours are not bounded.
type Timecode struct {
	Hours   int64
	Minutes int64
	Seconds int64
	Millis  int64
}

// FromMillis decomposes total milliseconds into ranged components.
func FromMillis(total int64) Timecode {
	var tc Timecode
	tc.Hours, total = total/3_600_000, total%3_600_000
	tc.Minutes, total = total/60_000, total%60_000
	tc.Seconds, tc.Millis = total/1000, total%1000
	return tc
}

// TotalMillis returns timecode as a single millisecond count.
func (tc Timecode) TotalMillis() int64 {
	return ((tc.Hours*3600+tc.Minutes*60+tc.Seconds)*1000 + tc.Millis)
}

// String renders timecode the way SubRip expects it.
func (tc Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d,%03d", tc.Hours, tc.Minutes, tc.Seconds, tc.Millis)
}

// Canonicalize parses "HH:MM:SS,mmm" where sub-second field may have from 3
// to 6 digits and carries any overflow into seconds, minutes and hours.
func Canonicalize(in string) (Timecode, error) {
	m := boundaryPattern.FindStringSubmatch(in)
	if m == nil {
		return Timecode{}, fmt.Errorf("%w: %q", ErrFormat, in)
	}
	var fields [4]int64
	for i := range fields {
		v, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %w", ErrFormat, in, err)
		}
		fields[i] = v
	}
	return FromMillis((fields[0]*3600+fields[1]*60+fields[2])*1000 + fields[3]), nil
}

// Rate is the document wide scale factor for frame counts: declared frame
// rate divided by 60. Zero value means frame rate was not declared.
type Rate struct {
	factor  float64
	defined bool
}

// NewRate makes defined rate from declared frame rate value.
func NewRate(declared float64) Rate {
	return Rate{factor: declared / 60, defined: true}
}

// ParseRate reads frame rate declaration, either comma or dot could be used
// as decimal separator.
func ParseRate(text string) (Rate, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil {
		return Rate{}, fmt.Errorf("unable to parse frame rate %q: %w", text, err)
	}
	return NewRate(v), nil
}

// Defined reports whether document declared frame rate.
func (r Rate) Defined() bool {
	return r.defined
}

// Factor is the multiplier applied to frame counts, zero when undefined.
func (r Rate) Factor() float64 {
	return r.factor
}

func (r Rate) String() string {
	if !r.defined {
		return "undefined"
	}
	return strconv.FormatFloat(r.factor, 'f', -1, 64)
}

// FramesToMillis scales frame count. Product is rounded to two decimal places
// and multiplied by 100, fractional part is dropped. Result is not bounded to
// a second.
func FramesToMillis(frames, factor float64) int64 {
	if frames == 0 {
		return 0
	}
	// FormatFloat rounds half to even on exact decimal value
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(frames*factor, 'f', 2, 64), 64)
	return int64(rounded * 100)
}

// Normalizer converts raw cue boundaries of a single document.
type Normalizer struct {
	Rate   Rate
	Policy common.MissingFrameRate
}

// Millis converts frame field of the boundary into milliseconds.
func (n Normalizer) Millis(field string) (int64, error) {
	frames, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil || frames < 0 || math.IsInf(frames, 0) || math.IsNaN(frames) {
		return 0, fmt.Errorf("%w: frame field %q", ErrFormat, field)
	}
	if frames == 0 {
		return 0, nil
	}
	if !n.Rate.Defined() {
		if n.Policy.Fallback() {
			return int64(frames), nil
		}
		return 0, ErrNoFrameRate
	}
	return FramesToMillis(frames, n.Rate.Factor()), nil
}

// Normalize converts raw begin or end attribute value ("HH:MM:SS,ff" or
// "HH:MM:SS.ff", ff being frame count) into timecode. Empty value stands for
// absent attribute.
func (n Normalizer) Normalize(raw string) (Timecode, error) {
	if len(raw) == 0 {
		raw = DefaultBoundary
	}
	base, field, ok := strings.Cut(strings.ReplaceAll(raw, ".", ","), ",")
	if !ok || strings.Contains(field, ",") {
		return Timecode{}, fmt.Errorf("%w: %q", ErrFormat, raw)
	}
	ms, err := n.Millis(field)
	if err != nil {
		return Timecode{}, fmt.Errorf("boundary %q: %w", raw, err)
	}
	return Canonicalize(fmt.Sprintf("%s,%03d", base, ms))
}

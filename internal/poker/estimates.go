package poker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEstimateSet is returned when an estimate set has no labels.
	ErrEmptyEstimateSet = errors.New("estimate set is empty")

	// ErrInvalidDuration is returned for input that does not match the
	// duration grammar.
	ErrInvalidDuration = errors.New("invalid duration")
)

// EstimateSet is the ordered, immutable list of selectable estimate labels.
type EstimateSet struct {
	labels []string
}

// NewEstimateSet builds a set from labels. Labels are trimmed; a blank label
// or an empty list is an error.
func NewEstimateSet(labels []string) (EstimateSet, error) {
	if len(labels) == 0 {
		return EstimateSet{}, ErrEmptyEstimateSet
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return EstimateSet{}, fmt.Errorf("estimate label %d is blank", i)
		}
		out[i] = l
	}
	return EstimateSet{labels: out}, nil
}

// ParseEstimateSet splits input on whitespace, commas and semicolons.
func ParseEstimateSet(input string) (EstimateSet, error) {
	if len(input) > EstimatesMaxLength {
		return EstimateSet{}, fmt.Errorf("estimates exceed %d characters", EstimatesMaxLength)
	}
	return NewEstimateSet(splitEstimates(input))
}

// MustEstimateSet is like NewEstimateSet but panics on error.
func MustEstimateSet(labels ...string) EstimateSet {
	set, err := NewEstimateSet(labels)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of labels.
func (s EstimateSet) Len() int {
	return len(s.labels)
}

// Label returns the label at position i.
func (s EstimateSet) Label(i int) (string, bool) {
	if i < 0 || i >= len(s.labels) {
		return "", false
	}
	return s.labels[i], true
}

// Index returns the position of label, or -1.
func (s EstimateSet) Index(label string) int {
	for i, l := range s.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Labels returns a copy of the labels.
func (s EstimateSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// String joins the labels with spaces, the format accepted by ParseEstimateSet.
func (s EstimateSet) String() string {
	return strings.Join(s.labels, " ")
}

func splitEstimates(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';'
	})
}

// Duration units, in minutes. A working day is 8 hours and a week 5 days.
const (
	MinutesPerHour = 60
	MinutesPerDay  = MinutesPerHour * 8
	MinutesPerWeek = MinutesPerDay * 5
)

// Duration is an estimate expressed in working minutes.
type Duration int

// ParseDurations parses input such as "30m 4h 1d 2w". Values may be separated
// by whitespace, commas or semicolons, or not separated at all ("1h30m").
func ParseDurations(input string) ([]Duration, error) {
	var (
		out    []Duration
		digits strings.Builder
	)
	for _, r := range input {
		if unicode.IsSpace(r) || r == ',' || r == ';' {
			continue
		}
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			continue
		}
		var mul int
		switch r {
		case 'm':
			mul = 1
		case 'h':
			mul = MinutesPerHour
		case 'd':
			mul = MinutesPerDay
		case 'w':
			mul = MinutesPerWeek
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, digits.String()+string(r))
		}
		if digits.Len() == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, string(r))
		}
		n, err := strconv.Atoi(digits.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, digits.String()+string(r))
		}
		out = append(out, Duration(n*mul))
		digits.Reset()
	}
	if digits.Len() > 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, digits.String())
	}
	return out, nil
}

// String renders the duration with the largest units first, e.g. "1w 2d 3h".
func (d Duration) String() string {
	return strings.Join(d.parts(), " ")
}

// Compact renders the duration without separators, e.g. "1h30m". It is the
// form used for estimate labels.
func (d Duration) Compact() string {
	return strings.Join(d.parts(), "")
}

func (d Duration) parts() []string {
	n := int(d)
	if n <= 0 {
		return []string{"0"}
	}
	var parts []string
	if n >= MinutesPerWeek {
		parts = append(parts, fmt.Sprintf("%dw", n/MinutesPerWeek))
		n %= MinutesPerWeek
	}
	if n >= MinutesPerDay {
		parts = append(parts, fmt.Sprintf("%dd", n/MinutesPerDay))
		n %= MinutesPerDay
	}
	if n >= MinutesPerHour {
		parts = append(parts, fmt.Sprintf("%dh", n/MinutesPerHour))
		n %= MinutesPerHour
	}
	if n > 0 {
		parts = append(parts, fmt.Sprintf("%dm", n))
	}
	return parts
}

// NormalizeEstimates parses a duration list and returns it as an estimate set
// of normalized labels. Every whitespace/comma/semicolon separated token must
// be a valid duration; "90m" becomes "1h30m".
func NormalizeEstimates(input string) (EstimateSet, error) {
	if len(input) > EstimatesMaxLength {
		return EstimateSet{}, fmt.Errorf("estimates exceed %d characters", EstimatesMaxLength)
	}
	tokens := splitEstimates(input)
	if len(tokens) == 0 {
		return EstimateSet{}, ErrEmptyEstimateSet
	}
	labels := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		ds, err := ParseDurations(tok)
		if err != nil {
			return EstimateSet{}, err
		}
		var total Duration
		for _, d := range ds {
			total += d
		}
		labels = append(labels, total.Compact())
	}
	return NewEstimateSet(labels)
}

// ResolveEstimates builds the set used by the slider. Inputs made only of
// durations are normalized; anything else is taken as plain labels.
func ResolveEstimates(input string) (EstimateSet, error) {
	set, err := NormalizeEstimates(input)
	if errors.Is(err, ErrInvalidDuration) {
		return ParseEstimateSet(input)
	}
	return set, err
}

// Preset is a named, commonly used estimate set.
type Preset struct {
	Name   string
	Input  string
	Detail string
}

// Presets lists the built-in estimate sets.
var Presets = []Preset{
	{Name: "time", Input: "0m 30m 1h 2h 4h 1d 2d 3d 1w", Detail: "working time, 8h days"},
	{Name: "fibonacci", Input: "0 1 2 3 5 8 13 21 ?", Detail: "story points"},
	{Name: "tshirt", Input: "XS S M L XL XXL", Detail: "relative sizes"},
	{Name: "powers", Input: "0 1 2 4 8 16 32 ?", Detail: "powers of two"},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// DefaultEstimates is used when nothing else is configured.
const DefaultEstimates = "0m 30m 1h 2h 4h 1d 2d 3d 1w"

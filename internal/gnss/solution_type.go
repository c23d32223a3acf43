package gnss

import (
	"fmt"
	"strconv"
	"strings"
)

// SolutionType is the kind of fix a receiver produced. The numeric values
// match the codes receivers and existing logs use; Autonomous2D is 6 for
// historical reasons.
type SolutionType int

const (
	NoSolution   SolutionType = 0
	Autonomous   SolutionType = 1
	Differential SolutionType = 2
	Invalid      SolutionType = 3
	RTKFixed     SolutionType = 4
	RTKFloat     SolutionType = 5
	Autonomous2D SolutionType = 6
)

var solutionTypeNames = map[SolutionType]string{
	NoSolution:   "no_solution",
	Autonomous:   "autonomous",
	Differential: "differential",
	Invalid:      "invalid",
	RTKFixed:     "rtk_fixed",
	RTKFloat:     "rtk_float",
	Autonomous2D: "autonomous_2d",
}

func (t SolutionType) String() string {
	if name, ok := solutionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("solution_type(%d)", int(t))
}

// ParseSolutionType accepts either the text form ("rtk_fixed") or the
// numeric code ("4").
func ParseSolutionType(s string) (SolutionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty solution type")
	}
	for t, name := range solutionTypeNames {
		if name == s {
			return t, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unknown solution type %q", s)
	}
	t := SolutionType(n)
	if _, ok := solutionTypeNames[t]; !ok {
		return 0, fmt.Errorf("unknown solution type code %d", n)
	}
	return t, nil
}

func (t SolutionType) MarshalText() ([]byte, error) {
	if _, ok := solutionTypeNames[t]; !ok {
		return nil, fmt.Errorf("unknown solution type code %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *SolutionType) UnmarshalText(b []byte) error {
	v, err := ParseSolutionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalJSON accepts a JSON string in either text or numeric form, or a
// bare JSON number holding the code.
func (t *SolutionType) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("solution type: %w", err)
		}
		s = unq
	}
	return t.UnmarshalText([]byte(s))
}

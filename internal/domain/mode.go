package domain

import "encoding/json"

// Mode is the closed set of session modes. The frontend historically sent
// free-form strings; anything unrecognized parses as ModePractice rather than
// erroring so that old clients keep working.
type Mode int

const (
	ModePractice Mode = iota
	ModeTimed
	ModeMock
)

const (
	modePracticeLabel = "Practice Mode"
	modeTimedLabel    = "Timed Mode"
	modeMockLabel     = "Mock Exam"
)

// ParseMode maps a wire string to a Mode. Unknown values default to
// ModePractice.
func ParseMode(s string) Mode {
	switch s {
	case modeTimedLabel:
		return ModeTimed
	case modeMockLabel:
		return ModeMock
	default:
		return ModePractice
	}
}

func (m Mode) String() string {
	switch m {
	case ModeTimed:
		return modeTimedLabel
	case ModeMock:
		return modeMockLabel
	default:
		return modePracticeLabel
	}
}

// MarshalJSON serializes the mode as its wire label.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON parses the wire label, defaulting to practice.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = ParseMode(s)
	return nil
}

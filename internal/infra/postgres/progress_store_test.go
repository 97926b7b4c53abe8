package postgres

import (
	"errors"
	"fmt"
	"testing"
)

type fakePGError struct {
	code string
}

func (e fakePGError) Error() string {
	return "pg error " + e.code
}

func (e fakePGError) Field(field byte) string {
	if field == 'C' {
		return e.code
	}
	return ""
}

func TestIsSerializationFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", fakePGError{code: "40001"}, true},
		{"deadlock detected", fakePGError{code: "40P01"}, true},
		{"wrapped deadlock", fmt.Errorf("update progress: %w", fakePGError{code: "40P01"}), true},
		{"unique violation", fakePGError{code: "23505"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := isSerializationFailure(tc.err); got != tc.want {
			t.Errorf("%s: isSerializationFailure = %v, want %v", tc.name, got, tc.want)
		}
	}
}

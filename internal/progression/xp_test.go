package progression

import (
	"errors"
	"testing"

	"utme-prep-service/internal/domain"
)

func TestSessionXPByMode(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		incorrect int
		mode      domain.Mode
		perfect   bool
		want      int64
	}{
		{"practice basic", 8, 2, domain.ModePractice, false, 134},  // 80+4+50
		{"perfect mock exam", 10, 0, domain.ModeMock, true, 375},   // (100+50+100)*1.5
		{"timed rounds down", 5, 3, domain.ModeTimed, false, 137},  // floor(106*1.3)
		{"perfect practice", 10, 0, domain.ModePractice, true, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SessionXP(tt.correct, tt.incorrect, tt.mode, tt.perfect)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SessionXP(%d,%d,%v,%v) = %d, want %d",
					tt.correct, tt.incorrect, tt.mode, tt.perfect, got, tt.want)
			}
		})
	}
}

// An empty session still earns the flat completion bonus. Deliberate: the
// shipped platform pays the bonus for questionsCount == 0, and changing that
// is a product decision, not a refactor.
func TestSessionXPEmptySessionStillGetsCompletionBonus(t *testing.T) {
	got, err := SessionXP(0, 0, domain.ModePractice, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SessionCompleteXP {
		t.Fatalf("expected bare completion bonus %d, got %d", SessionCompleteXP, got)
	}
}

func TestSessionXPRejectsNegativeCounts(t *testing.T) {
	if _, err := SessionXP(-1, 0, domain.ModePractice, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative correct, got %v", err)
	}
	if _, err := SessionXP(0, -5, domain.ModeMock, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative incorrect, got %v", err)
	}
}

func TestSessionXPNeverNegative(t *testing.T) {
	for correct := 0; correct <= 60; correct += 5 {
		for incorrect := 0; incorrect <= 60; incorrect += 5 {
			for _, mode := range []domain.Mode{domain.ModePractice, domain.ModeTimed, domain.ModeMock} {
				xp, err := SessionXP(correct, incorrect, mode, false)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if xp < 0 {
					t.Fatalf("negative XP %d for correct=%d incorrect=%d mode=%v", xp, correct, incorrect, mode)
				}
			}
		}
	}
}

func TestUnknownModeDefaultsToPracticeMultiplier(t *testing.T) {
	mode := domain.ParseMode("Speedrun Mode")
	if mode != domain.ModePractice {
		t.Fatalf("expected unknown mode to parse as practice, got %v", mode)
	}
	got, err := SessionXP(4, 1, mode, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 92 { // 40+2+50, multiplier 1.0
		t.Fatalf("expected 92 XP at 1.0 multiplier, got %d", got)
	}
}

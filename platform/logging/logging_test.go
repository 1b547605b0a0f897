package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"mixed case", "Error", zerolog.ErrorLevel},
		{"padded", " info ", zerolog.InfoLevel},
		{"empty falls back", "", zerolog.InfoLevel},
		{"garbage falls back", "loud", zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := New(tc.level).GetLevel(); got != tc.want {
				t.Errorf("New(%q).GetLevel() = %v, want %v", tc.level, got, tc.want)
			}
		})
	}
}

func TestNopIsDisabled(t *testing.T) {
	if got := Nop().GetLevel(); got != zerolog.Disabled {
		t.Fatalf("Nop().GetLevel() = %v, want disabled", got)
	}
}

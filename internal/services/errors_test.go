package services_test

import (
	"errors"
	"strings"
	"testing"

	"tvcut/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "locate", "remux", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"locate", "remux", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", services.Wrap(services.ErrValidation, "plan", "validate", "overlap", nil), services.ExitValidation},
		{"configuration", services.Wrap(services.ErrConfiguration, "config", "", "bad", nil), services.ExitConfiguration},
		{"measurement", services.Wrap(services.ErrMeasurement, "locate", "calibrate", "no frames", nil), services.ExitMeasurement},
		{"tool", services.Wrap(services.ErrExternalTool, "probe", "", "", errors.New("exit 1")), services.ExitExternalTool},
		{"plain", errors.New("other"), services.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

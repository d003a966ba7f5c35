package utils

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger_levels(t *testing.T) {
	for _, tc := range []struct {
		debug     bool
		wantDebug bool
	}{
		{debug: true, wantDebug: true},
		{debug: false, wantDebug: false},
	} {
		logger, err := NewLogger(tc.debug)
		if err != nil {
			t.Fatalf("NewLogger(%v): %v", tc.debug, err)
		}
		if got := logger.Core().Enabled(zap.DebugLevel); got != tc.wantDebug {
			t.Errorf("NewLogger(%v): debug enabled = %v, want %v", tc.debug, got, tc.wantDebug)
		}
		if !logger.Core().Enabled(zap.InfoLevel) {
			t.Errorf("NewLogger(%v): info should be enabled", tc.debug)
		}
		_ = logger.Sync()
	}
}

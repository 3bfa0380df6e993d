package main

import (
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", ":memory:")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("PROGRAM_MIN_DSCR", "1.35")

	cfg, program, log, err := setup()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || log == nil {
		t.Fatalf("cfg=%v log=%v", cfg, log)
	}
	if program.MinDSCR.String() != "1.35" {
		t.Fatalf("program override not applied: %s", program.MinDSCR)
	}
}

func TestSetup_FailuresStillReturnLogger(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unsupported driver", map[string]string{"DB_DRIVER": "oracle"}, "invalid config"},
		{"bad program override", map[string]string{"DB_DRIVER": "sqlite", "PROGRAM_MIN_DSCR": "abc"}, "program.min_dscr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, _, log, err := setup()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
			if cfg != nil {
				t.Fatalf("cfg must be nil on failure")
			}
			if log == nil {
				t.Fatalf("logger must never be nil")
			}
		})
	}
}

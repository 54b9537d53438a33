package config

import (
	"testing"
	"time"

	"slotline/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr(), "0.0.0.0:8080")
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.WorkingHours.StartHour != 9 || cfg.WorkingHours.EndHour != 17 {
		t.Fatalf("working hours = %d-%d, want 9-17", cfg.WorkingHours.StartHour, cfg.WorkingHours.EndHour)
	}
	for d := time.Monday; d <= time.Friday; d++ {
		if !cfg.WorkingHours.Weekdays[d] {
			t.Fatalf("weekday %v should be a working day by default", d)
		}
	}
	if cfg.WorkingHours.Weekdays[time.Saturday] || cfg.WorkingHours.Weekdays[time.Sunday] {
		t.Fatalf("weekend should not be working by default")
	}
	if len(cfg.BlockedDates) != 0 {
		t.Fatalf("BlockedDates = %v, want none", cfg.BlockedDates)
	}
	if cfg.SeedDemoBooking {
		t.Fatalf("SeedDemoBooking should default to false")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SLOTLINE_HTTP_PORT", "9090")
	t.Setenv("SLOTLINE_LOG_LEVEL", "debug")
	t.Setenv("SLOTLINE_HOURS_START", "8")
	t.Setenv("SLOTLINE_HOURS_END", "18")
	t.Setenv("SLOTLINE_HOURS_WEEKDAYS", "mon,wed,fri")
	t.Setenv("SLOTLINE_BLOCKED_DATES", "2026-01-05, 2026-02-14")
	t.Setenv("SLOTLINE_DEMO_SEED_BOOKING", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Fatalf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.WorkingHours.StartHour != 8 || cfg.WorkingHours.EndHour != 18 {
		t.Fatalf("working hours = %d-%d, want 8-18", cfg.WorkingHours.StartHour, cfg.WorkingHours.EndHour)
	}
	if !cfg.WorkingHours.Weekdays[time.Wednesday] || cfg.WorkingHours.Weekdays[time.Tuesday] {
		t.Fatalf("weekdays = %v, want mon/wed/fri only", cfg.WorkingHours.Weekdays)
	}
	if len(cfg.BlockedDates) != 2 {
		t.Fatalf("len(BlockedDates) = %d, want 2", len(cfg.BlockedDates))
	}
	if cfg.BlockedDates[0] != (domain.CivilDate{Year: 2026, Month: time.January, Day: 5}) {
		t.Fatalf("first blocked date = %v", cfg.BlockedDates[0])
	}
	if !cfg.SeedDemoBooking {
		t.Fatalf("SeedDemoBooking should be true")
	}
}

func TestLoad_PortFallbackEnv(t *testing.T) {
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPPort != 3000 {
		t.Fatalf("HTTPPort = %d, want 3000", cfg.HTTPPort)
	}
}

func TestLoad_RejectsInvalidHours(t *testing.T) {
	t.Setenv("SLOTLINE_HOURS_START", "18")
	t.Setenv("SLOTLINE_HOURS_END", "9")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for inverted working hours")
	}
}

func TestParseWeekdays(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    []time.Weekday
		wantErr bool
	}{
		{"names", "mon,tue,fri", []time.Weekday{time.Monday, time.Tuesday, time.Friday}, false},
		{"ordinals", "1,3,5", []time.Weekday{time.Monday, time.Wednesday, time.Friday}, false},
		{"seven is sunday", "6,7", []time.Weekday{time.Saturday, time.Sunday}, false},
		{"mixed case and spaces", " Mon , FRI ", []time.Weekday{time.Monday, time.Friday}, false},
		{"empty parts skipped", "mon,,fri,", []time.Weekday{time.Monday, time.Friday}, false},
		{"unknown name", "mon,funday", nil, true},
		{"out of range ordinal", "0", nil, true},
		{"out of range ordinal high", "8", nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseWeekdays(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWeekdays(%q) error: %v", tc.in, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for _, wd := range tc.want {
				if !got[wd] {
					t.Fatalf("missing weekday %v in %v", wd, got)
				}
			}
		})
	}
}

func TestParseBlockedDates(t *testing.T) {
	got, err := parseBlockedDates("2026-01-05,2026-12-25")
	if err != nil {
		t.Fatalf("parseBlockedDates error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1] != (domain.CivilDate{Year: 2026, Month: time.December, Day: 25}) {
		t.Fatalf("second date = %v", got[1])
	}

	if _, err := parseBlockedDates("jan 5th"); err == nil {
		t.Fatalf("expected error for malformed date")
	}

	if got, err := parseBlockedDates(""); err != nil || len(got) != 0 {
		t.Fatalf("empty input: got %v, %v", got, err)
	}
}

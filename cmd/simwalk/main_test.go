package main

import (
	"testing"
	"time"

	"backend-safewalk/internal/config"
	"backend-safewalk/internal/walk"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil, config.ClientEnv{APIURL: "http://localhost:8080", LogLevel: "info"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.apiURL != "http://localhost:8080" || opts.sim.Start != walk.DemoStart || opts.sim.End != walk.DemoEnd {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if opts.sim.PanicAt != 0 || opts.sim.Interval != walk.DefaultTickInterval || opts.sim.AutoNotify.Enabled {
		t.Fatalf("unexpected sim defaults %+v", opts.sim)
	}
}

func TestParseFlagsOverrides(t *testing.T) {
	opts, err := parseFlags([]string{
		"--api", "https://api.test", "--panic-at", "30", "--tick", "50ms",
		"--end-lat", "47.7", "--notify-name", "Mom", "--notify-value", "+15550001111",
	}, config.ClientEnv{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.apiURL != "https://api.test" || opts.sim.PanicAt != 30 || opts.sim.Interval != 50*time.Millisecond {
		t.Fatalf("unexpected overrides %+v", opts)
	}
	if opts.sim.End.Lat != 47.7 || opts.sim.End.Label != "" || opts.sim.Start.Label == "" {
		t.Fatalf("expected custom destination without demo label, got %+v", opts.sim.End)
	}
	if !opts.sim.AutoNotify.Enabled || opts.sim.AutoNotify.ContactChannel != "sms" {
		t.Fatalf("expected auto notify enabled, got %+v", opts.sim.AutoNotify)
	}
}

func TestParseFlagsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"--panic-at", "120"},
		{"--tick", "0s"},
		{"extra"},
	} {
		if _, err := parseFlags(args, config.ClientEnv{}); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

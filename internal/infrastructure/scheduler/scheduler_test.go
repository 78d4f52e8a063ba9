package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewRejectsInvalidCronSpec(t *testing.T) {
	_, err := New(Config{
		CronSpec: "not a cron spec",
		Timezone: "UTC",
		Logger:   zerolog.Nop(),
	})
	if err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New(Config{
		CronSpec: "0 2 * * *",
		Timezone: "Nowhere/Atlantis",
		Logger:   zerolog.Nop(),
	})
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestNewAcceptsValidConfig(t *testing.T) {
	s, err := New(Config{
		CronSpec: "0 2 * * *",
		Timezone: "Europe/London",
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected scheduler")
	}
}

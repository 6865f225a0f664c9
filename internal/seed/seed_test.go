package seed

import (
	"fmt"
	"testing"
	"time"

	"lifeman/internal/model"
)

func counterUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("seed-%d", n)
	}
}

func TestNextCron(t *testing.T) {
	now := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	got, err := Next("30 12 * * *", now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}

	// Already past today's slot: rolls over to tomorrow.
	got, err = Next("0 8 * * *", now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	want = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}
}

func TestNextRRule(t *testing.T) {
	now := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

	for _, spec := range []string{
		"FREQ=DAILY;BYHOUR=16;BYMINUTE=0;BYSECOND=0",
		"RRULE:FREQ=DAILY;BYHOUR=16;BYMINUTE=0;BYSECOND=0",
	} {
		got, err := Next(spec, now)
		if err != nil {
			t.Fatalf("Next(%q): %v", spec, err)
		}
		want := time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("Next(%q) = %v, want %v", spec, got, want)
		}
	}
}

func TestNextHonoursLocation(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, loc)

	got, err := Next("0 8 * * *", now)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Hour() != 8 || got.Location() != loc {
		t.Fatalf("Next = %v, want 08:00 KST", got)
	}
}

func TestNextInvalid(t *testing.T) {
	now := time.Now()
	for _, spec := range []string{"", "every day", "FREQ=SOMETIMES"} {
		if _, err := Next(spec, now); err == nil {
			t.Fatalf("Next(%q): expected error", spec)
		}
	}
}

func TestForProfile(t *testing.T) {
	cases := []struct {
		profile    Profile
		wantTodos  int
		wantEvents int
	}{
		{ProfileNone, 0, 0},
		{"", 0, 0},
		{ProfileTodos, len(defaultTodos), 0},
		{ProfileFull, len(defaultTodos), len(defaultEvents)},
		{ProfileCustom, 1, 0},
	}
	custom := []Item{{Name: "Stretch", Schedule: "0 11 * * *"}}
	for _, tc := range cases {
		p, err := ForProfile(tc.profile, custom, nil)
		if err != nil {
			t.Fatalf("ForProfile(%q): %v", tc.profile, err)
		}
		if len(p.Todos) != tc.wantTodos || len(p.Events) != tc.wantEvents {
			t.Fatalf("ForProfile(%q) = %d todos/%d events, want %d/%d",
				tc.profile, len(p.Todos), len(p.Events), tc.wantTodos, tc.wantEvents)
		}
	}

	if _, err := ForProfile("weekly", nil, nil); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestBuiltInProfilesValidate(t *testing.T) {
	p, err := ForProfile(ProfileFull, nil, nil)
	if err != nil {
		t.Fatalf("ForProfile: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("built-in policy invalid: %v", err)
	}

	bad := Policy{Todos: []Item{{Name: "", Schedule: "0 8 * * *"}, {Name: "x", Schedule: "nope"}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyFull(t *testing.T) {
	p, _ := ForProfile(ProfileFull, nil, nil)
	cal := model.NewCalendar()
	now := time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)

	n, err := p.Apply(cal, now, time.UTC, counterUIDs())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != len(defaultTodos)+len(defaultEvents) {
		t.Fatalf("added %d items", n)
	}
	if len(cal.Todos) != len(defaultTodos) || len(cal.Events) != len(defaultEvents) {
		t.Fatalf("calendar has %d todos/%d events", len(cal.Todos), len(cal.Events))
	}

	for _, td := range cal.Todos {
		if !td.Due.After(now) {
			t.Fatalf("todo %q due %v not after now", td.Summary, td.Due)
		}
		if td.IsCompleted() {
			t.Fatalf("seeded todo %q should be open", td.Summary)
		}
	}
	lunch := cal.Events[1]
	if lunch.Summary != "Lunch" || lunch.End.Sub(lunch.Start) != time.Hour {
		t.Fatalf("unexpected lunch event: %+v", lunch)
	}
	if !lunch.Start.Equal(time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)) {
		t.Fatalf("lunch start = %v", lunch.Start)
	}
}

func TestApplyDefaultEventDuration(t *testing.T) {
	p := Policy{Events: []Item{{Name: "Walk", Schedule: "0 9 * * *"}}}
	cal := model.NewCalendar()

	if _, err := p.Apply(cal, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil, counterUIDs()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ev := cal.Events[0]
	if ev.End.Sub(ev.Start) != defaultEventDuration {
		t.Fatalf("duration = %v, want %v", ev.End.Sub(ev.Start), defaultEventDuration)
	}
}

func TestApplyBadSchedule(t *testing.T) {
	p := Policy{Todos: []Item{{Name: "x", Schedule: "bogus"}}}
	if _, err := p.Apply(model.NewCalendar(), time.Now(), time.UTC, counterUIDs()); err == nil {
		t.Fatal("expected error for bad schedule")
	}
}

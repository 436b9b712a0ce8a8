package timecalc

import (
	"errors"
	"testing"
	"time"
)

func TestDateAddRoundTrip(t *testing.T) {
	base := time.Date(2021, time.March, 14, 1, 59, 26, 0, time.UTC)
	units := []Unit{Week, Day, Hour, Minute, Second}
	counts := []int{-1000, -37, -1, 0, 1, 13, 86400}

	for _, u := range units {
		for _, n := range counts {
			fwd, err := DateAdd(base, u, n)
			if err != nil {
				t.Fatalf("DateAdd(%s, %d): %v", u, n, err)
			}
			back, err := DateAdd(fwd, u, -n)
			if err != nil {
				t.Fatalf("DateAdd(%s, %d): %v", u, -n, err)
			}
			if !back.Equal(base) {
				t.Errorf("%s %d: round trip gave %v, want %v", u, n, back, base)
			}
		}
	}
}

func TestDateAddMonthEndClamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		unit Unit
		n    int
		want time.Time
	}{
		{"jan31 plus one month leap", time.Date(2020, 1, 31, 10, 0, 0, 0, time.UTC), Month, 1, time.Date(2020, 2, 29, 10, 0, 0, 0, time.UTC)},
		{"jan31 plus one month", time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC), Month, 1, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"mar31 minus one month", time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC), Month, -1, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"aug31 plus one quarter", time.Date(2021, 8, 31, 0, 0, 0, 0, time.UTC), Quarter, 1, time.Date(2021, 11, 30, 0, 0, 0, 0, time.UTC)},
		{"feb29 plus one year", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), Year, 1, time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"mid month unaffected", time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC), Month, 1, time.Date(2021, 2, 15, 0, 0, 0, 0, time.UTC)},
		{"dec31 plus one month", time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), Month, 1, time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DateAdd(tt.in, tt.unit, tt.n)
			if err != nil {
				t.Fatalf("DateAdd: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.Month() == tt.want.Month()+1 {
				t.Errorf("overflowed into the following month: %v", got)
			}
		})
	}
}

func TestDateAddUnitCaseInsensitive(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := DateAdd(base, "Minute", 90)
	if err != nil {
		t.Fatalf("DateAdd: %v", err)
	}
	if want := base.Add(90 * time.Minute); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDateAddUnknownUnit(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := DateAdd(base, "fortnight", 1)
	if !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("Expected ErrUnknownUnit, got %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Expected zero time, got %v", got)
	}
}

func TestDateAddDoesNotMutateInput(t *testing.T) {
	base := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	before := base
	if _, err := DateAdd(base, Month, 1); err != nil {
		t.Fatal(err)
	}
	if !base.Equal(before) {
		t.Errorf("input changed to %v", base)
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		num, size int
		want      string
	}{
		{7, 2, "07"},
		{123, 2, "23"},
		{0, 2, "00"},
		{59, 2, "59"},
		{5, 4, "0005"},
		{1, 20, "0000000001"},
	}
	for _, tt := range tests {
		if got := Pad(tt.num, tt.size); got != tt.want {
			t.Errorf("Pad(%d, %d) = %q, want %q", tt.num, tt.size, got, tt.want)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]float64{
		0.5:   1,
		1.49:  1,
		42.4:  42,
		-2.5:  -2,
		-2.51: -3,
	}
	for in, want := range tests {
		if got := RoundHalfUp(in); got != want {
			t.Errorf("RoundHalfUp(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestClockHHMM(t *testing.T) {
	ts := time.Date(2020, 1, 1, 7, 5, 59, 0, time.UTC)
	if got := ClockHHMM(ts); got != "07:05" {
		t.Errorf("got %q", got)
	}
}

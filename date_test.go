package wager

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2025, 7, 31)
	d2 := NewDate(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParseDate(t *testing.T) {
	today := Today()

	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{" 2024-06-24 ", NewDate(2024, time.June, 24), false},
		{"invalid-date", Date{}, true},
		{"24/06/2024", Date{}, true},

		{"-1d", today.Add(-1), false},
		{"+1d", today.Add(1), false},
		{"1d", Date{}, true},
		{"-2w", today.Add(-14), false},
		{"-3m", today.AddMonth(-3), false},
		{"-1y", today.AddMonth(-12), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Errorf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDate_AddMonth(t *testing.T) {
	tests := []struct {
		on     Date
		months int
		want   Date
	}{
		{NewDate(2024, 3, 31), -1, NewDate(2024, 2, 29)},
		{NewDate(2023, 3, 31), -1, NewDate(2023, 2, 28)},
		{NewDate(2025, 5, 31), -3, NewDate(2025, 2, 28)},
		{NewDate(2025, 5, 15), -6, NewDate(2024, 11, 15)},
		{NewDate(2025, 1, 31), -24, NewDate(2023, 1, 31)},
		{NewDate(2024, 8, 31), 1, NewDate(2024, 9, 30)},
		{NewDate(2024, 12, 10), 1, NewDate(2025, 1, 10)},
	}
	for _, tt := range tests {
		if got := tt.on.AddMonth(tt.months); got != tt.want {
			t.Errorf("%v.AddMonth(%d) = %v, want %v", tt.on, tt.months, got, tt.want)
		}
	}
}

func TestDate_StartEndOf(t *testing.T) {
	on := NewDate(2024, 2, 14)
	if got, want := on.StartOf(Monthly), NewDate(2024, 2, 1); got != want {
		t.Errorf("StartOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := on.EndOf(Monthly), NewDate(2024, 2, 29); got != want {
		t.Errorf("EndOf(Monthly) = %v, want %v", got, want)
	}
	if got, want := on.StartOf(Yearly).Add(-1), NewDate(2023, 12, 31); got != want {
		t.Errorf("StartOf(Yearly)-1 = %v, want %v", got, want)
	}
	if got, want := on.StartOf(Weekly), NewDate(2024, 2, 12); got != want {
		t.Errorf("StartOf(Weekly) = %v, want %v", got, want)
	}
}

func TestDate_DaysSince(t *testing.T) {
	start := NewDate(2024, 6, 24)
	tests := []struct {
		on   Date
		want int
	}{
		{start, 0},
		{NewDate(2024, 6, 25), 1},
		{NewDate(2025, 6, 24), 365},
		{NewDate(2024, 6, 1), -23},
	}
	for _, tt := range tests {
		if got := tt.on.DaysSince(start); got != tt.want {
			t.Errorf("%v.DaysSince(%v) = %d, want %d", tt.on, start, got, tt.want)
		}
	}
}

func TestDate_Compare(t *testing.T) {
	a, b := NewDate(2024, 12, 31), NewDate(2025, 1, 1)
	if !a.Before(b) || b.Before(a) || !b.After(a) || a.Compare(a) != 0 {
		t.Errorf("inconsistent ordering between %v and %v", a, b)
	}
	if a.MonthKey() != "2024-12" {
		t.Errorf("MonthKey() = %q, want 2024-12", a.MonthKey())
	}
}

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected Date
		wantErr  bool
	}{
		{
			name:     "Zero Date from empty string",
			json:     `""`,
			expected: Date{},
		},
		{
			name:     "Non-Zero Date",
			json:     `"2024-05-21"`,
			expected: NewDate(2024, 5, 21),
		},
		{
			name:    "Invalid Date",
			json:    `"not-a-date"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.json), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("json.Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d != tt.expected {
				t.Errorf("json.Unmarshal() = %v, want %v", d, tt.expected)
			}
		})
	}
}

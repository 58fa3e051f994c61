//go:build !integration

package model_test

import (
	"testing"
	"time"

	"pickforme-subscription/internal/domain/model"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestMembershipExpiry(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		months int
		want   time.Time
	}{
		{
			name:   "mid-month anchor, one month",
			anchor: date(2024, time.March, 15, 14, 30),
			months: 1,
			want:   date(2024, time.April, 15, 0, 0),
		},
		{
			name:   "time of day is dropped",
			anchor: date(2024, time.March, 15, 23, 59),
			months: 1,
			want:   date(2024, time.April, 15, 0, 0),
		},
		{
			name:   "jan 31 overflows into march",
			anchor: date(2024, time.January, 31, 10, 0),
			months: 1,
			want:   date(2024, time.March, 2, 0, 0), // 2024 is a leap year
		},
		{
			name:   "event membership runs six months",
			anchor: date(2024, time.January, 10, 16, 45),
			months: 6,
			want:   date(2024, time.July, 10, 0, 0),
		},
		{
			name:   "december wraps the year",
			anchor: date(2023, time.December, 5, 8, 0),
			months: 1,
			want:   date(2024, time.January, 5, 0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.MembershipExpiry(tt.anchor, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("MembershipExpiry(%v, %d) = %v, want %v", tt.anchor, tt.months, got, tt.want)
			}
		})
	}
}

func TestDaysLeft(t *testing.T) {
	expiry := date(2024, time.April, 15, 0, 0)
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"a month out", date(2024, time.March, 15, 14, 30), 31},
		{"same day counts as one", date(2024, time.April, 14, 23, 0), 1},
		{"expiry day is zero", date(2024, time.April, 15, 0, 1), 0},
		{"long past stays zero", date(2024, time.June, 1, 0, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.DaysLeft(expiry, tt.now); got != tt.want {
				t.Errorf("DaysLeft(%v, %v) = %d, want %d", expiry, tt.now, got, tt.want)
			}
		})
	}
}

func TestDaysLeft_DeterministicWithinDay(t *testing.T) {
	// Every instant of the same calendar day yields the same answer.
	expiry := date(2024, time.April, 15, 0, 0)
	morning := model.DaysLeft(expiry, date(2024, time.April, 1, 0, 1))
	night := model.DaysLeft(expiry, date(2024, time.April, 1, 23, 59))
	if morning != night {
		t.Errorf("left days drifted within a day: %d vs %d", morning, night)
	}
}

func TestTruncateToMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	in := time.Date(2024, time.May, 3, 22, 17, 9, 123, loc)
	got := model.TruncateToMidnight(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("not midnight: %v", got)
	}
	if got.Location() != loc {
		t.Errorf("location changed: %v", got.Location())
	}
}

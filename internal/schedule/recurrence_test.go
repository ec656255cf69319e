package schedule

import (
	"testing"
	"time"

	"github.com/pbvieira/bsam-gestao-associacao-sub001/internal/domain/medication"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDueDaily(t *testing.T) {
	s := &medication.Schedule{Frequency: medication.FrequencyDaily}

	day := date(2024, 1, 1)
	for i := 0; i < 30; i++ {
		if !IsDue(s, nil, day.AddDate(0, 0, i)) {
			t.Errorf("daily schedule not due on %s", day.AddDate(0, 0, i).Format(time.DateOnly))
		}
	}
}

func TestIsDueWeekly(t *testing.T) {
	s := &medication.Schedule{
		Frequency: medication.FrequencyWeekly,
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
	}

	// 2024-01-01 is a Monday. Check two full weeks.
	start := date(2024, 1, 1)
	for i := 0; i < 14; i++ {
		day := start.AddDate(0, 0, i)
		want := day.Weekday() == time.Monday || day.Weekday() == time.Wednesday
		if got := IsDue(s, nil, day); got != want {
			t.Errorf("weekly due(%s %s) = %v, want %v", day.Weekday(), day.Format(time.DateOnly), got, want)
		}
	}
}

func TestIsDueAlternateDays(t *testing.T) {
	s := &medication.Schedule{Frequency: medication.FrequencyAlternateDays}

	starts := []time.Time{
		date(2024, 3, 1),
		date(2024, 1, 31),  // month boundary
		date(2023, 12, 31), // year boundary
		date(2024, 2, 28),  // leap february
	}

	for _, start := range starts {
		start := start
		for offset := 0; offset < 10; offset++ {
			day := start.AddDate(0, 0, offset)
			want := offset%2 == 0
			if got := IsDue(s, &start, day); got != want {
				t.Errorf("alternate due(start=%s, day=%s) = %v, want %v",
					start.Format(time.DateOnly), day.Format(time.DateOnly), got, want)
			}
		}
	}
}

func TestIsDueAlternateDaysWithoutStartDegradesToDaily(t *testing.T) {
	s := &medication.Schedule{Frequency: medication.FrequencyAlternateDays}

	for i := 0; i < 5; i++ {
		if !IsDue(s, nil, date(2024, 6, 10).AddDate(0, 0, i)) {
			t.Errorf("alternate schedule without start date should be due every day")
		}
	}
}

func TestIsDueUnknownFrequency(t *testing.T) {
	s := &medication.Schedule{Frequency: "fortnightly"}
	if IsDue(s, nil, date(2024, 1, 1)) {
		t.Error("unknown frequency should never be due")
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		a, b time.Time
		want int
	}{
		{date(2024, 3, 1), date(2024, 3, 1), 0},
		{date(2024, 3, 1), date(2024, 3, 2), 1},
		{date(2024, 3, 2), date(2024, 3, 1), -1},
		{date(2023, 12, 31), date(2024, 1, 1), 1},
		{date(2024, 2, 28), date(2024, 3, 1), 2}, // leap year
		// Instants on the same calendar dates must give the same answer.
		{time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC), 1},
	}

	for _, c := range cases {
		if got := daysBetween(c.a, c.b); got != c.want {
			t.Errorf("daysBetween(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

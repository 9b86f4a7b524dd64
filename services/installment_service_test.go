package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/activity_hub/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildScheduleAmounts(t *testing.T) {
	first := date(2026, time.March, 1)

	tests := []struct {
		name      string
		total     int64
		count     int
		frequency string
		want      []int64
	}{
		{"even split", 10000, 4, models.FrequencyWeekly, []int64{2500, 2500, 2500, 2500}},
		{"remainder on first", 1000, 3, models.FrequencyMonthly, []int64{334, 333, 333}},
		{"single payment", 999, 1, models.FrequencyMonthly, []int64{999}},
		{"remainder bigger than one", 100, 7, models.FrequencyBiweekly, []int64{16, 14, 14, 14, 14, 14, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := BuildSchedule(tt.total, tt.count, tt.frequency, first)
			if err != nil {
				t.Fatalf("BuildSchedule: %v", err)
			}
			if len(schedule) != len(tt.want) {
				t.Fatalf("got %d payments, want %d", len(schedule), len(tt.want))
			}
			var sum int64
			for i, p := range schedule {
				if p.AmountCents != tt.want[i] {
					t.Errorf("payment %d: got %d cents, want %d", i+1, p.AmountCents, tt.want[i])
				}
				if p.Sequence != i+1 {
					t.Errorf("payment %d: sequence %d", i+1, p.Sequence)
				}
				sum += p.AmountCents
			}
			if sum != tt.total {
				t.Errorf("amounts sum to %d, want exactly %d", sum, tt.total)
			}
		})
	}
}

func TestBuildScheduleDueDates(t *testing.T) {
	weekly, err := BuildSchedule(3000, 3, models.FrequencyWeekly, date(2026, time.March, 2))
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	wantWeekly := []time.Time{date(2026, time.March, 2), date(2026, time.March, 9), date(2026, time.March, 16)}
	for i, p := range weekly {
		if !p.DueDate.Equal(wantWeekly[i]) {
			t.Errorf("weekly payment %d due %s, want %s", i+1, p.DueDate, wantWeekly[i])
		}
	}

	// Monthly steps from the 31st must clamp to shorter months.
	monthly, err := BuildSchedule(4000, 4, models.FrequencyMonthly, date(2026, time.January, 31))
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	wantMonthly := []time.Time{
		date(2026, time.January, 31),
		date(2026, time.February, 28),
		date(2026, time.March, 31),
		date(2026, time.April, 30),
	}
	for i, p := range monthly {
		if !p.DueDate.Equal(wantMonthly[i]) {
			t.Errorf("monthly payment %d due %s, want %s", i+1, p.DueDate, wantMonthly[i])
		}
	}
}

func TestBuildScheduleValidation(t *testing.T) {
	first := date(2026, time.March, 1)

	tests := []struct {
		name      string
		total     int64
		count     int
		frequency string
	}{
		{"zero total", 0, 3, models.FrequencyMonthly},
		{"negative total", -100, 3, models.FrequencyMonthly},
		{"zero count", 1000, 0, models.FrequencyMonthly},
		{"count above cap", 1000, maxInstallmentCount + 1, models.FrequencyMonthly},
		{"absurd count does not allocate", 1000, 1000000000, models.FrequencyWeekly},
		{"unknown frequency", 1000, 3, "daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSchedule(tt.total, tt.count, tt.frequency, first)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"plain month", date(2026, time.January, 15), 1, date(2026, time.February, 15)},
		{"clamp to february", date(2026, time.January, 31), 1, date(2026, time.February, 28)},
		{"leap february", date(2028, time.January, 31), 1, date(2028, time.February, 29)},
		{"clamp to thirty", date(2026, time.March, 31), 1, date(2026, time.April, 30)},
		{"year rollover", date(2025, time.December, 15), 2, date(2026, time.February, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addMonthsClamped(tt.start, tt.months)
			if !got.Equal(tt.want) {
				t.Errorf("addMonthsClamped(%s, %d) = %s, want %s", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

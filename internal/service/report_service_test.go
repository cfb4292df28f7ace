package service

import (
	"testing"
	"time"

	"brightpath/internal/apperrors"
	"brightpath/internal/models"
	"brightpath/internal/repository"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(dateKeyLayout, value)
	if err != nil {
		t.Fatalf("failed to parse day %q: %v", value, err)
	}
	return parsed
}

func TestComputeStreakDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		days []string
		want int
	}{
		{
			name: "no attempts",
			days: nil,
			want: 0,
		},
		{
			name: "attempt today only",
			days: []string{"2026-03-10"},
			want: 1,
		},
		{
			name: "gap two days back stops the count",
			days: []string{"2026-03-10", "2026-03-09", "2026-03-07"},
			want: 2,
		},
		{
			name: "anchored at yesterday when today is empty",
			days: []string{"2026-03-09", "2026-03-08"},
			want: 2,
		},
		{
			name: "latest attempt two days ago breaks the streak",
			days: []string{"2026-03-08", "2026-03-07"},
			want: 0,
		},
		{
			name: "multiple attempts on one day count once",
			days: []string{"2026-03-10", "2026-03-10", "2026-03-09"},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts []repository.AttemptPoint
			for _, d := range tt.days {
				attempts = append(attempts, repository.AttemptPoint{CreatedAt: day(t, d).Add(10 * time.Hour)})
			}
			if got := computeStreakDays(attempts, now); got != tt.want {
				t.Errorf("computeStreakDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBucketByDay(t *testing.T) {
	attempts := []repository.AttemptPoint{
		{CreatedAt: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), IsCorrect: true, HintsUsed: 0},
		{CreatedAt: time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC), IsCorrect: false, HintsUsed: 2},
		{CreatedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), IsCorrect: true, HintsUsed: 1},
	}

	got := bucketByDay(attempts)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].date != "2026-03-08" || got[0].attempts != 2 || got[0].correct != 1 || got[0].hintsTotal != 2 {
		t.Errorf("first bucket = %+v, want 2026-03-08 with 2 attempts, 1 correct, 2 hints", got[0])
	}
	if got[1].date != "2026-03-10" || got[1].attempts != 1 || got[1].correct != 1 || got[1].hintsTotal != 1 {
		t.Errorf("second bucket = %+v, want 2026-03-10 with 1 attempt, 1 correct, 1 hint", got[1])
	}
}

func TestBuildDailyTrend(t *testing.T) {
	attempts := []repository.AttemptPoint{
		{CreatedAt: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), IsCorrect: true, HintsUsed: 0},
		{CreatedAt: time.Date(2026, 3, 8, 17, 0, 0, 0, time.UTC), IsCorrect: false, HintsUsed: 1},
		{CreatedAt: time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC), IsCorrect: true, HintsUsed: 1},
	}

	got := buildDailyTrend(attempts)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := TrendDay{Date: "2026-03-08", Attempts: 3, AccuracyPercent: 66.67, AvgHintsUsed: 0.67}
	if got[0] != want {
		t.Errorf("trend day = %+v, want %+v", got[0], want)
	}
}

func TestLatestPerTopic(t *testing.T) {
	// Rows arrive ordered topic asc, snapshot date desc.
	snapshots := []repository.TopicSnapshot{
		{
			MasterySnapshot: models.MasterySnapshot{
				TopicID:      "topic-a",
				MasteryScore: 72.5,
				Proficiency:  models.ProficiencyProficient,
				SnapshotDate: day(t, "2026-03-10"),
			},
			TopicCode:  "G4-MATH-ADD-001",
			TopicTitle: "Addition",
		},
		{
			MasterySnapshot: models.MasterySnapshot{
				TopicID:      "topic-a",
				MasteryScore: 55,
				Proficiency:  models.ProficiencyDeveloping,
				SnapshotDate: day(t, "2026-03-09"),
			},
			TopicCode:  "G4-MATH-ADD-001",
			TopicTitle: "Addition",
		},
		{
			MasterySnapshot: models.MasterySnapshot{
				TopicID:      "topic-b",
				MasteryScore: 30,
				Proficiency:  models.ProficiencyNeedsSupport,
				SnapshotDate: day(t, "2026-03-08"),
			},
			TopicCode:  "G4-MATH-FRC-001",
			TopicTitle: "Fractions",
		},
	}

	got := latestPerTopic(snapshots)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TopicID != "topic-a" || got[0].MasteryScore != 72.5 || got[0].Proficiency != "proficient" {
		t.Errorf("first topic = %+v, want latest topic-a snapshot", got[0])
	}
	if got[1].TopicID != "topic-b" || got[1].MasteryScore != 30 {
		t.Errorf("second topic = %+v, want topic-b snapshot", got[1])
	}
}

func TestWeakestTopic(t *testing.T) {
	tests := []struct {
		name   string
		topics []TopicMastery
		want   string
	}{
		{
			name:   "no topics",
			topics: nil,
			want:   "",
		},
		{
			name: "lowest score wins",
			topics: []TopicMastery{
				{TopicID: "a", MasteryScore: 80},
				{TopicID: "b", MasteryScore: 35},
				{TopicID: "c", MasteryScore: 60},
			},
			want: "b",
		},
		{
			name: "first encountered wins ties",
			topics: []TopicMastery{
				{TopicID: "a", MasteryScore: 40},
				{TopicID: "b", MasteryScore: 40},
			},
			want: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeakestTopic(tt.topics)
			if tt.want == "" {
				if got != nil {
					t.Errorf("WeakestTopic() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.TopicID != tt.want {
				t.Errorf("WeakestTopic() = %+v, want topic %s", got, tt.want)
			}
		})
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		dashboard  bool
		want       int
		wantReason string
	}{
		{"dashboard default", "", true, 7, ""},
		{"dashboard explicit", "30", true, 30, ""},
		{"dashboard upper bound", "90", true, 90, ""},
		{"dashboard above range", "91", true, 0, "out_of_range"},
		{"dashboard zero", "0", true, 0, "out_of_range"},
		{"dashboard not a number", "abc", true, 0, "must_be_integer"},
		{"drilldown default", "", false, 30, ""},
		{"drilldown upper bound", "180", false, 180, ""},
		{"drilldown above range", "181", false, 0, "out_of_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			var err error
			if tt.dashboard {
				got, err = ParseDashboardDays(tt.raw)
			} else {
				got, err = ParseDrilldownDays(tt.raw)
			}
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("days = %d, want %d", got, tt.want)
				}
				return
			}
			apiErr := apperrors.From(err)
			if apiErr.Code != apperrors.CodeValidation {
				t.Fatalf("code = %s, want %s", apiErr.Code, apperrors.CodeValidation)
			}
			if len(apiErr.Details) != 1 || apiErr.Details[0].Reason != tt.wantReason {
				t.Errorf("details = %+v, want reason %s", apiErr.Details, tt.wantReason)
			}
		})
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		days int
		want string
	}{
		{1, "2026-03-10"},
		{7, "2026-03-04"},
		{30, "2026-02-09"},
	}

	for _, tt := range tests {
		got := windowStart(now, tt.days)
		if got.Format(dateKeyLayout) != tt.want {
			t.Errorf("windowStart(%d) = %s, want %s", tt.days, got.Format(dateKeyLayout), tt.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("windowStart(%d) is not at midnight: %v", tt.days, got)
		}
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/janhofer/linemates/internal/domain/analysis"
)

func TestStateRepository_ClaimArbitration(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	staleBefore := now.Add(-30 * time.Minute)

	cases := []struct {
		name     string
		existing *analysis.State
		want     bool
	}{
		{name: "no row wins", existing: nil, want: true},
		{
			name:     "fresh processing loses",
			existing: &analysis.State{Status: analysis.StatusProcessing, LastUpdatedAt: now.Add(-time.Minute)},
			want:     false,
		},
		{
			name:     "stale processing wins",
			existing: &analysis.State{Status: analysis.StatusProcessing, LastUpdatedAt: now.Add(-2 * time.Hour)},
			want:     true,
		},
		{
			name:     "done never loses ownership",
			existing: &analysis.State{Status: analysis.StatusDone, LastUpdatedAt: now.Add(-24 * time.Hour)},
			want:     false,
		},
		{
			name:     "error row wins",
			existing: &analysis.State{Status: analysis.StatusError, LastUpdatedAt: now.Add(-time.Minute)},
			want:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := NewStateRepository()
			if tc.existing != nil {
				seed := *tc.existing
				seed.TeamID = "t-1"
				seed.Season = "2024"
				if err := repo.Upsert(context.Background(), seed); err != nil {
					t.Fatalf("seed state: %v", err)
				}
			}

			claim := analysis.State{
				TeamID:        "t-1",
				Season:        "2024",
				Status:        analysis.StatusProcessing,
				RunID:         "run-new",
				LastUpdatedAt: now,
			}
			won, err := repo.Claim(context.Background(), claim, staleBefore)
			if err != nil {
				t.Fatalf("Claim() error = %v", err)
			}
			if won != tc.want {
				t.Fatalf("Claim() won = %v, want %v", won, tc.want)
			}

			state, _, err := repo.Get(context.Background(), "t-1", "2024")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if won && state.RunID != "run-new" {
				t.Fatalf("winning claim did not write its state, run_id = %q", state.RunID)
			}
			if !won && state.RunID == "run-new" {
				t.Fatalf("losing claim overwrote the owning run's state")
			}
		})
	}
}

func TestStateRepository_ClaimIsExclusive(t *testing.T) {
	t.Parallel()

	repo := NewStateRepository()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	staleBefore := now.Add(-30 * time.Minute)

	wins := 0
	for _, runID := range []string{"run-a", "run-b"} {
		won, err := repo.Claim(context.Background(), analysis.State{
			TeamID:        "t-1",
			Season:        "2024",
			Status:        analysis.StatusProcessing,
			RunID:         runID,
			LastUpdatedAt: now,
		}, staleBefore)
		if err != nil {
			t.Fatalf("Claim(%s) error = %v", runID, err)
		}
		if won {
			wins++
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", wins)
	}
	state, _, err := repo.Get(context.Background(), "t-1", "2024")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if state.RunID != "run-a" {
		t.Fatalf("expected first claim to own the run, got run_id %q", state.RunID)
	}
}

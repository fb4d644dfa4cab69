package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/janhofer/linemates/internal/domain/analysis"
	"github.com/janhofer/linemates/internal/infrastructure/repository/memory"
	"github.com/janhofer/linemates/internal/platform/logging"
)

func seedMatrixGoals(t *testing.T, repo *memory.GoalEventRepository) {
	t.Helper()

	keller := "B. Keller"
	weber := "C. Weber"

	events := []analysis.GoalEvent{
		{GameID: "g-1", TeamID: "t-1", Season: "2024", GameDate: "2024-09-05", ScorerRawName: "M. Muster", ScorerDisplayName: "M. Muster", AssistRawName: &keller, AssistDisplayName: &keller, IsHome: true},
		{GameID: "g-1", TeamID: "t-1", Season: "2024", GameDate: "2024-09-05", ScorerRawName: "M. Muster", ScorerDisplayName: "M. Muster", AssistRawName: &keller, AssistDisplayName: &keller, IsHome: true},
		{GameID: "g-2", TeamID: "t-1", Season: "2024", GameDate: "2024-10-12", ScorerRawName: "M. Muster", ScorerDisplayName: "M. Muster", AssistRawName: &weber, AssistDisplayName: &weber, IsHome: false},
		{GameID: "g-2", TeamID: "t-1", Season: "2024", GameDate: "2024-10-12", ScorerRawName: "C. Weber", ScorerDisplayName: "C. Weber"},
		// Other scopes must never leak into the t-1/2024 matrix.
		{GameID: "g-9", TeamID: "t-2", Season: "2024", GameDate: "2024-09-05", ScorerRawName: "X. Fremd", ScorerDisplayName: "X. Fremd"},
		{GameID: "g-8", TeamID: "t-1", Season: "2023", GameDate: "2023-11-01", ScorerRawName: "M. Muster", ScorerDisplayName: "M. Muster", AssistRawName: &keller, AssistDisplayName: &keller},
	}
	if err := repo.InsertMany(context.Background(), events); err != nil {
		t.Fatalf("seed goal events: %v", err)
	}
}

func TestMatrixService_GetMatrixScopesAndSorts(t *testing.T) {
	t.Parallel()

	repo := memory.NewGoalEventRepository()
	seedMatrixGoals(t, repo)
	service := NewMatrixService(repo, logging.NewNop())

	matrix, err := service.GetMatrix(context.Background(), "t-1", "2024", analysis.MatrixFilter{})
	if err != nil {
		t.Fatalf("GetMatrix() error = %v", err)
	}

	if len(matrix.Combos) != 2 {
		t.Fatalf("GetMatrix() combos = %d, want 2", len(matrix.Combos))
	}
	first := matrix.Combos[0]
	if first.AssistRawName != "B. Keller" || first.ScorerRawName != "M. Muster" {
		t.Fatalf("GetMatrix() top combo = %s -> %s, want B. Keller -> M. Muster", first.AssistRawName, first.ScorerRawName)
	}
	if first.Total != 2 || first.HomeGoals != 2 || first.AwayGoals != 0 {
		t.Fatalf("GetMatrix() top combo counts = %d/%d/%d, want 2/2/0", first.Total, first.HomeGoals, first.AwayGoals)
	}
	second := matrix.Combos[1]
	if second.AssistRawName != "C. Weber" || second.Total != 1 || second.AwayGoals != 1 {
		t.Fatalf("GetMatrix() second combo = %+v", second)
	}

	if len(matrix.Solos) != 1 {
		t.Fatalf("GetMatrix() solos = %d, want 1", len(matrix.Solos))
	}
	if matrix.Solos[0].ScorerRawName != "C. Weber" || matrix.Solos[0].Total != 1 {
		t.Fatalf("GetMatrix() solo = %+v", matrix.Solos[0])
	}
}

func TestMatrixService_GetMatrixDateFilter(t *testing.T) {
	t.Parallel()

	repo := memory.NewGoalEventRepository()
	seedMatrixGoals(t, repo)
	service := NewMatrixService(repo, logging.NewNop())

	// Dotted provider-style dates are accepted and normalized.
	matrix, err := service.GetMatrix(context.Background(), "t-1", "2024", analysis.MatrixFilter{
		FromDate: "01.10.2024",
	})
	if err != nil {
		t.Fatalf("GetMatrix() error = %v", err)
	}

	if len(matrix.Combos) != 1 {
		t.Fatalf("GetMatrix() filtered combos = %d, want 1", len(matrix.Combos))
	}
	if matrix.Combos[0].AssistRawName != "C. Weber" {
		t.Fatalf("GetMatrix() filtered combo assist = %s, want C. Weber", matrix.Combos[0].AssistRawName)
	}
	if len(matrix.Solos) != 1 {
		t.Fatalf("GetMatrix() filtered solos = %d, want 1", len(matrix.Solos))
	}
}

func TestMatrixService_GetMatrixRejectsBadFilters(t *testing.T) {
	t.Parallel()

	service := NewMatrixService(memory.NewGoalEventRepository(), logging.NewNop())

	cases := []struct {
		name   string
		filter analysis.MatrixFilter
	}{
		{name: "garbage from date", filter: analysis.MatrixFilter{FromDate: "not-a-date"}},
		{name: "garbage to date", filter: analysis.MatrixFilter{ToDate: "31.02"}},
		{name: "inverted range", filter: analysis.MatrixFilter{FromDate: "2024-12-01", ToDate: "2024-01-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.GetMatrix(context.Background(), "t-1", "2024", tc.filter)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("GetMatrix(%s) error = %v, want ErrInvalidInput", tc.name, err)
			}
		})
	}
}

func TestMatrixService_GetMatrixEmptyScope(t *testing.T) {
	t.Parallel()

	service := NewMatrixService(memory.NewGoalEventRepository(), logging.NewNop())

	matrix, err := service.GetMatrix(context.Background(), "t-1", "2024", analysis.MatrixFilter{})
	if err != nil {
		t.Fatalf("GetMatrix() error = %v", err)
	}
	if len(matrix.Combos) != 0 || len(matrix.Solos) != 0 {
		t.Fatalf("GetMatrix() on empty store = %d combos, %d solos, want none", len(matrix.Combos), len(matrix.Solos))
	}
}

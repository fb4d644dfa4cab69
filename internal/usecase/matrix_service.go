package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/janhofer/linemates/internal/domain/analysis"
	"github.com/janhofer/linemates/internal/platform/dates"
	"github.com/janhofer/linemates/internal/platform/logging"
)

// MatrixService serves the aggregated scorer/assister view. It only reads;
// it may run concurrently with an active analysis and then reflects whatever
// has been ingested so far.
type MatrixService struct {
	goalRepo analysis.GoalEventRepository
	logger   *logging.Logger
}

func NewMatrixService(goalRepo analysis.GoalEventRepository, logger *logging.Logger) *MatrixService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatrixService{
		goalRepo: goalRepo,
		logger:   logger,
	}
}

func (s *MatrixService) GetMatrix(ctx context.Context, teamID, season string, filter analysis.MatrixFilter) (analysis.Matrix, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatrixService.GetMatrix")
	defer span.End()

	teamID, season, err := normalizeAnalysisKey(teamID, season)
	if err != nil {
		return analysis.Matrix{}, err
	}
	filter, err = normalizeMatrixFilter(filter)
	if err != nil {
		return analysis.Matrix{}, err
	}

	combos, err := s.goalRepo.AggregateCombos(ctx, teamID, season, filter)
	if err != nil {
		return analysis.Matrix{}, fmt.Errorf("aggregate combo goals team=%s season=%s: %w", teamID, season, err)
	}
	solos, err := s.goalRepo.AggregateSolos(ctx, teamID, season, filter)
	if err != nil {
		return analysis.Matrix{}, fmt.Errorf("aggregate solo goals team=%s season=%s: %w", teamID, season, err)
	}

	return analysis.Matrix{Combos: combos, Solos: solos}, nil
}

func normalizeMatrixFilter(filter analysis.MatrixFilter) (analysis.MatrixFilter, error) {
	out := analysis.MatrixFilter{}

	from := strings.TrimSpace(filter.FromDate)
	if from != "" {
		iso, ok := dates.ToISO(from)
		if !ok {
			return out, fmt.Errorf("%w: from date %q is not a valid date", ErrInvalidInput, from)
		}
		out.FromDate = iso
	}

	to := strings.TrimSpace(filter.ToDate)
	if to != "" {
		iso, ok := dates.ToISO(to)
		if !ok {
			return out, fmt.Errorf("%w: to date %q is not a valid date", ErrInvalidInput, to)
		}
		out.ToDate = iso
	}

	if out.FromDate != "" && out.ToDate != "" && out.FromDate > out.ToDate {
		return out, fmt.Errorf("%w: from date is after to date", ErrInvalidInput)
	}

	return out, nil
}

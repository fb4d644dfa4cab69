package httpapi

import (
	"fmt"
	"net/http"

	"github.com/janhofer/linemates/internal/domain/analysis"
	"github.com/janhofer/linemates/internal/usecase"
)

type chemistryPathParams struct {
	TeamID string `validate:"required,max=64"`
	Season string `validate:"required,max=32"`
}

type analysisStatusDTO struct {
	Status         string `json:"status"`
	HasRoster      bool   `json:"hasRoster"`
	GamesTotal     int    `json:"gamesTotal"`
	GamesProcessed int    `json:"gamesProcessed"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
}

type playerRefDTO struct {
	RawName     string  `json:"rawName"`
	DisplayName string  `json:"displayName"`
	PlayerID    *string `json:"playerId"`
}

type comboDTO struct {
	Scorer    playerRefDTO `json:"scorer"`
	Assister  playerRefDTO `json:"assister"`
	Total     int          `json:"total"`
	HomeGoals int          `json:"homeGoals"`
	AwayGoals int          `json:"awayGoals"`
}

type soloDTO struct {
	Scorer    playerRefDTO `json:"scorer"`
	Total     int          `json:"total"`
	HomeGoals int          `json:"homeGoals"`
	AwayGoals int          `json:"awayGoals"`
}

type matrixDTO struct {
	Combos []comboDTO `json:"combos"`
	Solos  []soloDTO  `json:"solos"`
}

func (h *Handler) GetChemistryStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChemistryStatus")
	defer span.End()

	params, err := h.chemistryParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.analysisService.GetStatus(ctx, params.TeamID, params.Season)
	if err != nil {
		h.logger.WarnContext(ctx, "get analysis status failed",
			"team_id", params.TeamID,
			"season", params.Season,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statusToDTO(status))
}

func (h *Handler) TriggerChemistryAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerChemistryAnalysis")
	defer span.End()

	params, err := h.chemistryParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status, err := h.analysisService.TriggerAnalysis(ctx, params.TeamID, params.Season)
	if err != nil {
		h.logger.ErrorContext(ctx, "trigger analysis failed",
			"team_id", params.TeamID,
			"season", params.Season,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, statusToDTO(status))
}

func (h *Handler) GetChemistryMatrix(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChemistryMatrix")
	defer span.End()

	params, err := h.chemistryParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	filter := analysis.MatrixFilter{
		FromDate: r.URL.Query().Get("from"),
		ToDate:   r.URL.Query().Get("to"),
	}

	matrix, err := h.matrixService.GetMatrix(ctx, params.TeamID, params.Season, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "get chemistry matrix failed",
			"team_id", params.TeamID,
			"season", params.Season,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matrixToDTO(matrix))
}

func (h *Handler) chemistryParams(r *http.Request) (chemistryPathParams, error) {
	params := chemistryPathParams{
		TeamID: r.PathValue("teamID"),
		Season: r.PathValue("season"),
	}
	if err := h.validator.Struct(params); err != nil {
		return chemistryPathParams{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return params, nil
}

func statusToDTO(status usecase.StatusView) analysisStatusDTO {
	return analysisStatusDTO{
		Status:         string(status.Status),
		HasRoster:      status.HasRoster,
		GamesTotal:     status.GamesTotal,
		GamesProcessed: status.GamesProcessed,
		ErrorMessage:   status.ErrorMessage,
	}
}

func matrixToDTO(matrix analysis.Matrix) matrixDTO {
	combos := make([]comboDTO, 0, len(matrix.Combos))
	for _, row := range matrix.Combos {
		combos = append(combos, comboDTO{
			Scorer: playerRefDTO{
				RawName:     row.ScorerRawName,
				DisplayName: row.ScorerDisplayName,
				PlayerID:    row.ScorerPlayerID,
			},
			Assister: playerRefDTO{
				RawName:     row.AssistRawName,
				DisplayName: row.AssistDisplayName,
				PlayerID:    row.AssistPlayerID,
			},
			Total:     row.Total,
			HomeGoals: row.HomeGoals,
			AwayGoals: row.AwayGoals,
		})
	}

	solos := make([]soloDTO, 0, len(matrix.Solos))
	for _, row := range matrix.Solos {
		solos = append(solos, soloDTO{
			Scorer: playerRefDTO{
				RawName:     row.ScorerRawName,
				DisplayName: row.ScorerDisplayName,
				PlayerID:    row.ScorerPlayerID,
			},
			Total:     row.Total,
			HomeGoals: row.HomeGoals,
			AwayGoals: row.AwayGoals,
		})
	}

	return matrixDTO{Combos: combos, Solos: solos}
}

package httpapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/janhofer/linemates/internal/platform/logging"
	"github.com/janhofer/linemates/internal/usecase"
)

type Handler struct {
	analysisService *usecase.AnalysisService
	matrixService   *usecase.MatrixService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	analysisService *usecase.AnalysisService,
	matrixService *usecase.MatrixService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		analysisService: analysisService,
		matrixService:   matrixService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

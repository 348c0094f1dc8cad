package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
)

// SummaryReader serves committed gameweek summaries.
type SummaryReader interface {
	Get(ctx context.Context, gameWeek int) (cohort.GameweekSummary, error)
	List(ctx context.Context, fromGameWeek, toGameWeek int) ([]cohort.GameweekSummary, error)
}

type Handler struct {
	summaries SummaryReader
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(summaries SummaryReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		summaries: summaries,
		logger:    logger,
		validator: validator.New(),
	}
}

type gameweekPathRequest struct {
	GameWeek int `validate:"min=1,max=38"`
}

type summaryRangeRequest struct {
	From int `validate:"min=1,max=38"`
	To   int `validate:"min=1,max=38,gtefield=From"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetGameweekSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekSummary")
	defer span.End()

	gameWeek, err := parseIntParam("gameweek", r.PathValue("gameweek"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, gameweekPathRequest{GameWeek: gameWeek}); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.summaries.Get(ctx, gameWeek)
	if err != nil {
		h.logger.WarnContext(ctx, "get gameweek summary failed", "game_week", gameWeek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryToDTO(summary))
}

func (h *Handler) ListGameweekSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameweekSummaries")
	defer span.End()

	query := r.URL.Query()
	from, err := parseIntParam("from", query.Get("from"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	to := from
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		if to, err = parseIntParam("to", raw); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	if err := h.validateRequest(ctx, summaryRangeRequest{From: from, To: to}); err != nil {
		writeError(ctx, w, err)
		return
	}

	summaries, err := h.summaries.List(ctx, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "list gameweek summaries failed", "from", from, "to", to, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]summaryDTO, 0, len(summaries))
	for _, item := range summaries {
		items = append(items, summaryToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func parseIntParam(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", usecase.ErrInvalidInput, name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

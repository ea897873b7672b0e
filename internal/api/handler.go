package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Reics/MAGI-01/internal/api/middleware"
	"github.com/Reics/MAGI-01/internal/models"
	"github.com/Reics/MAGI-01/internal/orchestrator"
	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"
)

// DebateRunner runs a full two-round debate for one directive.
type DebateRunner interface {
	Run(ctx context.Context, directive string) (*models.DebateSession, error)
	Roster() []models.AgentSpec
}

type Handler struct {
	runner DebateRunner
	logger *zerolog.Logger
}

func NewHandler(runner DebateRunner, logger *zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// POST /api/v1/debate
// Body: DebateRequest
// Returns: models.DebateSession
func (h *Handler) Debate(req *restful.Request, resp *restful.Response) {
	var debateRequest DebateRequest
	if err := req.ReadEntity(&debateRequest); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	directive := strings.TrimSpace(debateRequest.Directive)
	if directive == "" {
		middleware.HandleError(resp, errors.New("directive must not be empty"), http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("directive", directive).
		Msg("Start debate")

	ctx := req.Request.Context()
	session, err := h.runner.Run(ctx, directive)
	if err != nil {
		if errors.Is(err, orchestrator.ErrQuorumFailed) {
			h.logger.Error().Err(err).Msg("Debate aborted on first-round quorum failure")
			middleware.HandleError(resp, err, http.StatusServiceUnavailable)
			return
		}
		h.logger.Error().Err(err).Msg("Debate failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Float64("confidence", session.Report.AverageConfidence).
		Str("resolution", string(session.Report.Tier)).
		Msg("Debate complete")

	resp.WriteHeaderAndEntity(http.StatusOK, session)
}

// GET /api/v1/agents
func (h *Handler) Agents(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, h.runner.Roster())
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

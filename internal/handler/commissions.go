package handler

import (
	"context"
	"net/http"

	"github.com/psholiveira/barber-system/internal/apierror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/middleware"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecalcQueue accepts bulk recalculation jobs.
type RecalcQueue interface {
	EnqueueRecalculation(ctx context.Context, req dto.CommissionRecalcRequest) error
}

type CommissionsHandler struct {
	svc   service.CommissionService
	queue RecalcQueue
}

func NewCommissionsHandler(svc service.CommissionService, queue RecalcQueue) *CommissionsHandler {
	return &CommissionsHandler{svc: svc, queue: queue}
}

// List godoc
// @Summary Lista comissões (barbeiros veem apenas as próprias)
// @Tags commissions
// @Produce json
// @Security BearerAuth
// @Param barber query string false "Barbeiro"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Success 200 {object} dto.CommissionListResponse
// @Router /v1/commissions [get]
func (h *CommissionsHandler) List(c *gin.Context) {
	var filter dto.CommissionFilter
	if !bindQuery(c, &filter) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Preview godoc
// @Summary Calcula a comissão de um par barbeiro/serviço sem gravar
// @Tags commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CommissionPreviewRequest true "Par e preço"
// @Success 200 {object} dto.CommissionPreviewResponse
// @Router /v1/commissions/preview [post]
func (h *CommissionsHandler) Preview(c *gin.Context) {
	var req dto.CommissionPreviewRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ComputeForPair(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Recalculate godoc
// @Summary Recalcula a comissão de um atendimento com as regras atuais
// @Tags commissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do atendimento"
// @Success 200 {object} dto.CommissionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/service-records/{id}/commission [post]
func (h *CommissionsHandler) Recalculate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Recalculate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecalculateRange godoc
// @Summary Enfileira o recálculo das comissões de um período
// @Tags commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CommissionRecalcRequest true "Período"
// @Success 202
// @Failure 503 {object} apierror.APIError
// @Router /v1/commissions/recalculate [post]
func (h *CommissionsHandler) RecalculateRange(c *gin.Context) {
	var req dto.CommissionRecalcRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.To < req.From {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("to deve ser igual ou posterior a from"))
		return
	}
	if err := h.queue.EnqueueRecalculation(c.Request.Context(), req); err != nil {
		log.Warn().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("recalculation not queued")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Fila de processamento indisponível"))
		return
	}
	c.Status(http.StatusAccepted)
}

// ── Rules ────────────────────────────────────────────────────────────────────

func (h *CommissionsHandler) ListRules(c *gin.Context) {
	var barberID *uuid.UUID
	if raw := c.Query("barber"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("barber inválido"))
			return
		}
		barberID = &id
	}
	resp, err := h.svc.ListRules(c.Request.Context(), barberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveRule godoc
// @Summary Cria ou substitui a regra de um par barbeiro/serviço
// @Tags commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CommissionRuleRequest true "Regra"
// @Success 201 {object} dto.CommissionRuleResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/commission-rules [post]
func (h *CommissionsHandler) SaveRule(c *gin.Context) {
	var req dto.CommissionRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SaveRule(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommissionsHandler) UpdateRule(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CommissionRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRule(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommissionsHandler) DeactivateRule(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeactivateRule(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

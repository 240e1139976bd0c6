package handler

import (
	"net/http"

	"github.com/psholiveira/barber-system/internal/apierror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
)

type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// Open godoc
// @Summary Abre uma nova sessão de caixa
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenCashRequest true "Valor inicial"
// @Success 201 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/sessions [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenCashRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	resp, err := h.svc.Open(c.Request.Context(), actor.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Fecha a sessão informando o valor contado
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Param body body dto.CloseCashRequest true "Valor contado"
// @Success 200 {object} dto.CashSessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/sessions/{id}/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CloseCashRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	resp, err := h.svc.Close(c.Request.Context(), id, actor.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOpen returns the open session with its running balance.
func (h *CashHandler) GetOpen(c *gin.Context) {
	session, err := h.svc.GetOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, apierror.New("Nenhum caixa aberto"))
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), session.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Summary godoc
// @Summary Resumo do caixa aberto (open=false quando não há)
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OpenCashSummaryResponse
// @Router /v1/cash/summary [get]
func (h *CashHandler) Summary(c *gin.Context) {
	resp, err := h.svc.OpenSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Relatório de uma sessão de caixa
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da sessão"
// @Success 200 {object} dto.CashSessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cash/sessions/{id} [get]
func (h *CashHandler) Report(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns sessions newest first.
func (h *CashHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 20)
	resp, err := h.svc.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordEntry godoc
// @Summary Registra uma entrada ou saída manual
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CashEntryRequest true "Movimento"
// @Success 201 {object} dto.CashEntryResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/entries [post]
func (h *CashHandler) RecordEntry(c *gin.Context) {
	var req dto.CashEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.RecordEntry(c.Request.Context(), actor.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CashHandler) ListEntries(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListEntries(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

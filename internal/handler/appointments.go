package handler

import (
	"net/http"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
)

type AppointmentsHandler struct{ svc service.AppointmentService }

func NewAppointmentsHandler(svc service.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{svc: svc}
}

// Create godoc
// @Summary Agenda um horário
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AppointmentRequest true "Agendamento"
// @Success 201 {object} dto.AppointmentResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/appointments [post]
func (h *AppointmentsHandler) Create(c *gin.Context) {
	var req dto.AppointmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista agendamentos
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD"
// @Param barber query string false "Barbeiro"
// @Param status query string false "Status"
// @Success 200 {array} dto.AppointmentResponse
// @Router /v1/appointments [get]
func (h *AppointmentsHandler) List(c *gin.Context) {
	var filter dto.AppointmentFilter
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

// SetStatus godoc
// @Summary Altera o status de um agendamento (DONE só via atendimento)
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do agendamento"
// @Param body body dto.AppointmentStatusRequest true "Status"
// @Success 200 {object} dto.AppointmentResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/appointments/{id}/status [patch]
func (h *AppointmentsHandler) SetStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.AppointmentStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.SetStatus(c.Request.Context(), actor, id, model.AppointmentStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

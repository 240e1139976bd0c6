package handler

import (
	"net/http"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary godoc
// @Summary Faturamento do dia e do mês, pagamentos por forma e agenda de hoje
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardSummaryResponse
// @Router /v1/dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RevenueByMonth godoc
// @Summary Faturamento agregado por mês (gráfico)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param months query int false "Quantidade de meses (padrão 12, máx. 36)"
// @Success 200 {object} dto.RevenueByMonthResponse
// @Failure 400 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/dashboard/revenue/by-month [get]
func (h *DashboardHandler) RevenueByMonth(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var q dto.RevenueByMonthQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.RevenueByMonth(c.Request.Context(), actor, q.Months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

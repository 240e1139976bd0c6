package handler

import (
	"net/http"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
)

type RecordsHandler struct{ svc service.RecordService }

func NewRecordsHandler(svc service.RecordService) *RecordsHandler {
	return &RecordsHandler{svc: svc}
}

// Create godoc
// @Summary Registra um atendimento e seu pagamento numa única transação
// @Description Falha com 409 no_open_cash_session quando não há caixa aberto; nada é gravado.
// @Tags service-records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateServiceRecordRequest true "Atendimento"
// @Success 201 {object} dto.ServiceRecordResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/service-records [post]
func (h *RecordsHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRecordRequest
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
// @Summary Lista atendimentos (barbeiros veem apenas os próprios)
// @Tags service-records
// @Produce json
// @Security BearerAuth
// @Param barber query string false "Barbeiro"
// @Param service query string false "Serviço"
// @Param customer query string false "Cliente"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD"
// @Param page query int false "Página"
// @Param limit query int false "Itens por página"
// @Success 200 {object} dto.ServiceRecordListResponse
// @Router /v1/service-records [get]
func (h *RecordsHandler) List(c *gin.Context) {
	var filter dto.ServiceRecordFilter
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

func (h *RecordsHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecordsHandler) Today(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	resp, err := h.svc.Today(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Payments ─────────────────────────────────────────────────────────────────

type PaymentsHandler struct{ svc service.PaymentService }

func NewPaymentsHandler(svc service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{svc: svc}
}

// List godoc
// @Summary Lista pagamentos
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param cash_session query string false "Sessão de caixa"
// @Param method query string false "CASH | PIX | CARD"
// @Success 200 {object} dto.PaymentListResponse
// @Router /v1/payments [get]
func (h *PaymentsHandler) List(c *gin.Context) {
	var filter dto.PaymentFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

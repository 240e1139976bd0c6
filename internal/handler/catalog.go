package handler

import (
	"net/http"
	"strconv"

	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
)

type ServicesHandler struct{ svc service.CatalogService }

func NewServicesHandler(svc service.CatalogService) *ServicesHandler {
	return &ServicesHandler{svc: svc}
}

// List godoc
// @Summary Lista o catálogo de serviços
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Somente ativos"
// @Success 200 {array} dto.ServiceResponse
// @Router /v1/services [get]
func (h *ServicesHandler) List(c *gin.Context) {
	onlyActive := c.Query("active") == "true"
	resp, err := h.svc.List(c.Request.Context(), onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary Cria um serviço
// @Tags services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ServiceRequest true "Serviço"
// @Success 201 {object} dto.ServiceResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/services [post]
func (h *ServicesHandler) Create(c *gin.Context) {
	var req dto.ServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ServicesHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.ServiceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Customers ────────────────────────────────────────────────────────────────

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Search godoc
// @Summary Busca clientes por nome ou telefone
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param q query string false "Nome ou telefone"
// @Param limit query int false "Máximo de resultados"
// @Success 200 {array} dto.CustomerResponse
// @Router /v1/customers [get]
func (h *CustomersHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Create(c *gin.Context) {
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CustomersHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CustomersHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

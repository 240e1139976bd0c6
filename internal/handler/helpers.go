package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/psholiveira/barber-system/internal/apierror"
	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/middleware"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds query-string filters.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros inválidos: "+err.Error()))
		return false
	}
	return true
}

// respondError maps an application error to its HTTP status. Anything that
// is not a client error is logged and answered with a generic message.
func respondError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, apierror.New(message(err)))
	case apperror.KindNoOpenCashSession:
		c.JSON(http.StatusConflict, apierror.WithCode(message(err), apperror.KindNoOpenCashSession.String()))
	case apperror.KindInvalidState:
		c.JSON(http.StatusConflict, apierror.New(message(err)))
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, apierror.New(message(err)))
	case apperror.KindForbidden:
		c.JSON(http.StatusForbidden, apierror.New(message(err)))
	case apperror.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, apierror.New(message(err)))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Str("kind", apperror.KindOf(err).String()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}

// message returns the caller-facing text without the wrapped cause.
func message(err error) string {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// actorFrom builds the service Actor from the JWT claims.
func actorFrom(c *gin.Context) (service.Actor, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticação necessária"))
		return service.Actor{}, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Privileged: model.Role(claims.Role).IsPrivileged()}, true
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and limit, clamped to 1..100 with defaultLimit.
func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}

package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/zakareajob-cpu/zak-crm/internal/apierror"
	"github.com/zakareajob-cpu/zak-crm/internal/middleware"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Lenient numeric fields are typed any. Decoding them as json.Number keeps
	// every digit instead of rounding through float64.
	binding.EnableDecoderUseNumber = true

	// Lets tags like min=0 run against decimal.Decimal fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs the validator tags. On failure
// it has already written the response and the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// parseID reads a uuid path parameter, writing 400 when it is malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}

// writeError is the only place service errors become HTTP statuses.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(verr.Fields))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		e := apierror.New("internal server error")
		e.RequestID = c.GetString(middleware.RequestIDKey)
		c.JSON(http.StatusInternalServerError, e)
	}
}

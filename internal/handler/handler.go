package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// Context keys set by the auth middleware.
const (
	ContextUser  = "user"
	ContextToken = "token"
)

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUser); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextToken)
}

// Fail hands err to the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// FailBind reports a request that could not be bound. Validator failures
// are left for the validation middleware to render per field.
func FailBind(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		_ = c.Error(verrs).SetType(gin.ErrorTypeBind)
		c.Abort()
		return
	}
	Fail(c, apperrors.BadRequest("invalid request: "+err.Error(), err))
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, apperrors.BadRequest("invalid "+name, err))
		return 0, false
	}
	return id, true
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, NewMessageResponse(message, data))
}

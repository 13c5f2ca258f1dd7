package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/world-explorer/internal/pkg/errors"
)

// Response is the envelope of every explorer API reply
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Success replies 200 with data
func Success(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "", data)
}

// SuccessWithMessage replies 200 with data and a user facing message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{Code: apperrors.Success, Message: message, Data: data})
}

// Error replies with an arbitrary status and message
func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Response{Code: httpStatus, Message: message, Data: struct{}{}})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError maps err to its business code and status. Plain errors become 500.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := apperrors.ExtractCode(err)
	message := apperrors.GetMessage(code)
	if code == apperrors.ErrInternalServer {
		message = apperrors.FormatError(code, apperrors.GetDetails(err))
	}
	c.JSON(apperrors.GetHTTPStatus(code), Response{Code: code, Message: message, Data: struct{}{}})
}

// ErrorWithCode replies with the status and message registered for code
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.FormatError(code, details...),
		Data:    struct{}{},
	})
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business codes carried alongside the HTTP status so clients can
// branch without parsing message text.
const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeServerError = 500

	CodeUserNotFound        = 1001
	CodeStoreNotFound       = 1002
	CodeCouponNotFound      = 1003
	CodeCouponNotActive     = 1004
	CodeInsufficientPoints  = 1005
	CodeDuplicateReceipt    = 1006
	CodeAlreadyRedeemed     = 1007
	CodeSerialNotFound      = 1008
	CodeInvalidCredentials  = 1009
	CodeTransactionNotFound = 1010
	CodeConflict            = 1011
)

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"error_code,omitempty"`
	Field     string      `json:"field,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeParamError, message)
}

// FieldError reports a validation failure on one named field.
func FieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    CodeParamError,
		Message: message,
		Field:   field,
	})
}

// CodedFieldError additionally carries a stable machine code, e.g.
// INVALID_PHONE_NUMBER.
func CodedFieldError(c *gin.Context, field, errorCode, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:      CodeParamError,
		Message:   message,
		ErrorCode: errorCode,
		Field:     field,
	})
}

func ServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeServerError, message)
}

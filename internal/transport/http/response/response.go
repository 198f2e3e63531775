package response

import "github.com/gin-gonic/gin"

const (
	CodeOK              = 0
	CodeBadRequest      = 40000
	CodeIngestFailed    = 40001
	CodeNotFound        = 40400
	CodeNotReady        = 40901
	CodePayloadTooLarge = 41300
	CodeInternalServer  = 50000
	CodeUpstreamFailed  = 50200
	CodeUpstreamTimeout = 50400
)

type APIResponse struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:      code,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	})
}

// RequestIDKey is the gin context key the request-id middleware sets.
const RequestIDKey = "request_id"

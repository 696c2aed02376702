package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every non-2xx JSON reply. Only Error is always
// present.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Code    string   `json:"code,omitempty"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// AbortWithError writes an ErrorResponse and stops the handler chain.
func AbortWithError(c *gin.Context, status int, resp ErrorResponse) {
	c.AbortWithStatusJSON(status, resp)
}

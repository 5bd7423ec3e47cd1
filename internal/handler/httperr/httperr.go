// Package httperr defines the error envelope every API endpoint answers with.
// Handlers attach the original error to the gin context so the error
// middleware can log the cause while the client only sees the envelope.
package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the wire shape of an API error. Detail carries optional
// machine-readable context, e.g. the failure reason of a checkout.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// AbortWithError records err on the context for the logging middleware and
// writes the envelope to the client.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

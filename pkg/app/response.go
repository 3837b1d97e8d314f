// Package app provides shared HTTP response plumbing for the API routers.
package app

import (
	"net/http"

	"github.com/haierkeys/db-backup-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

// Res is the unified response structure: Code/Status/Msg/Data.
// Optional fields use omitempty and drop out of the payload when nil.
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{Ctx: ctx}
}

// ToResponse writes the unified Res for the given code object.
func (r *Response) ToResponse(codeObj *code.Code) {
	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Msg(),
		Data:    codeObj.Data(),
	}
	if details := codeObj.Details(); len(details) > 0 {
		content.Details = details
	}
	r.Ctx.JSON(codeObj.StatusCode(), content)
}

// ToResponseData is a shorthand for a success response with data.
func (r *Response) ToResponseData(data interface{}) {
	r.ToResponse(code.Success.WithData(data))
}

// GetRequestIP gets the request IP.
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

// NoRouteHandler returns 404 as a unified payload.
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Res{
			Code:    code.ErrorNotFound.Code(),
			Status:  false,
			Message: code.ErrorNotFound.Msg(),
		})
	}
}

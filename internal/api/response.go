// Package api holds the JSON envelope and request helpers shared by the
// cafe and farma HTTP handlers.
package api

import (
	"net/http"
	"strconv"

	"kasir-system/internal/apperr"
	"kasir-system/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    interface{}       `json:"data,omitempty"`
	Meta    interface{}       `json:"meta,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=10"`
}

// Normalize clamps the page to >= 1 and the page size to 1..100.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Meta(total int64) PageMeta {
	return PageMeta{Page: p.Page, PageSize: p.PageSize, Total: total}
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, successResponse(message, data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, successResponse(message, data))
}

func WithMeta(c *gin.Context, message string, data interface{}, meta interface{}) {
	resp := successResponse(message, data)
	resp.Meta = meta
	c.JSON(http.StatusOK, resp)
}

// Abort writes a bare error envelope and stops the handler chain.
func Abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, errorResponse(message))
}

// Fail maps a service error onto the envelope. Validation errors carry
// their field map; internal errors surface the raw message.
func Fail(c *gin.Context, err error) {
	code := apperr.HTTPStatus(err)
	resp := errorResponse(apperr.Message(err))
	resp.Errors = apperr.Fields(err)

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(code, resp)
}

// ParamID parses a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Field(name, "The "+name+" must be a positive integer.")
	}
	return id, nil
}

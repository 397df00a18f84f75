package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/hotelops/backend/internal/domain/shared"
	"github.com/hotelops/backend/internal/domain/shared/valueobject"
	"github.com/hotelops/backend/internal/infrastructure/logger"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
	"github.com/hotelops/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the correlation id assigned by the logging middleware
func getRequestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, getRequestID(c)))
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code and details; anything else is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, resp := dto.ErrorResponseFor(err, getRequestID(c))
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// bindJSON decodes the body and reports malformed JSON as BAD_REQUEST and
// failed binding rules as VALIDATION_ERROR with per-field details. An empty
// body is treated as {} so optional-body actions like close need no payload.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindQuery decodes query parameters into req
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindURI decodes path parameters into req
func (h *BaseHandler) bindURI(c *gin.Context, req any) bool {
	if err := c.ShouldBindUri(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("request validation failed", getRequestID(c), details))
		return
	}
	if isAmountError(err) {
		h.HandleError(c, shared.NewValidationError("%v", err))
		return
	}
	// Bodies without a Content-Length only hit the limit while decoding
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
			middleware.ErrCodeRequestTooLarge, "request body exceeds maximum allowed size", getRequestID(c)))
		return
	}
	h.BadRequest(c, "malformed request: "+err.Error())
}

// pathID parses the :id path parameter
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if !h.bindURI(c, &req) {
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}

// pathDate validates the :date path parameter (YYYY-MM-DD)
func (h *BaseHandler) pathDate(c *gin.Context) (string, bool) {
	var req dto.DateRequest
	if !h.bindURI(c, &req) {
		return "", false
	}
	return req.Date, true
}

// callerID returns the acting user. Routes that mutate state are guarded by
// middleware.RequireUser, so a missing identity here is a wiring error.
func (h *BaseHandler) callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "X-User-ID header is required")
		return uuid.Nil, false
	}
	return id, true
}

// isAmountError reports a well-formed JSON amount that Money refused
func isAmountError(err error) bool {
	return errors.Is(err, valueobject.ErrMoneyRange) ||
		errors.Is(err, valueobject.ErrMoneyFormat) ||
		errors.Is(err, valueobject.ErrMoneyScale)
}

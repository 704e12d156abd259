// Package handler exposes the workflow engine over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"familyhub_backend/internal/workflow/service"
	"familyhub_backend/internal/workflow/transport"
	"familyhub_backend/platform/httpkit"
	"familyhub_backend/platform/logger"
	"familyhub_backend/platform/validator"
)

// Syncer triggers a full import-and-reconcile cycle for a family. Implemented
// by an adapter over the order import pipeline.
type Syncer interface {
	Sync(ctx context.Context, familyID uuid.UUID) (transport.SyncResponse, error)
}

// Handler handles workflow HTTP requests.
type Handler struct {
	svc       *service.Service
	syncer    Syncer
	validator *validator.Validator
	log       *logger.Logger
}

// New creates a new workflow handler.
func New(svc *service.Service, syncer Syncer, v *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, syncer: syncer, validator: v, log: log}
}

// familyID resolves the tenant from the authenticated identity. Requests
// without a family context are rejected.
func familyID(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, false
	}
	fid := identity.FamilyID()
	if fid == nil {
		httpkit.Error(c, http.StatusForbidden, "no family context", nil)
		return uuid.Nil, false
	}
	return *fid, true
}

// ListStages handles GET /workflow/stages.
func (h *Handler) ListStages(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	stages, err := h.svc.ListStages(c.Request.Context(), fid)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stages)
}

// ReplaceStages handles PUT /workflow/stages.
func (h *Handler) ReplaceStages(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	var req transport.ReplaceStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	stages, err := h.svc.ReplaceStages(c.Request.Context(), fid, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stages)
}

// MoveItem handles POST /workflow/items/:orderId/move.
func (h *Handler) MoveItem(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	var req transport.MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	userID := httpkit.GetIdentity(c).UserID()
	item, err := h.svc.MoveStage(c.Request.Context(), fid, orderID, req.StageID, userID, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, item)
}

// UpdateItem handles PATCH /workflow/items/:orderId.
func (h *Handler) UpdateItem(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	var req transport.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), fid, orderID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, item)
}

// History handles GET /workflow/items/:orderId/history.
func (h *Handler) History(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	history, err := h.svc.History(c.Request.Context(), fid, orderID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, history)
}

// Board handles GET /workflow/board.
func (h *Handler) Board(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	var query transport.BoardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", nil)
		return
	}
	if err := h.validator.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	board, err := h.svc.GetBoard(c.Request.Context(), fid, query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, board)
}

// FilterOptions handles GET /workflow/board/filter-options.
func (h *Handler) FilterOptions(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	options, err := h.svc.GetFilterOptions(c.Request.Context(), fid)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, options)
}

// Sync handles POST /workflow/sync.
func (h *Handler) Sync(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	result, err := h.syncer.Sync(c.Request.Context(), fid)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

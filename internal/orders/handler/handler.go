// Package handler exposes the order cache over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"familyhub_backend/internal/orders/service"
	"familyhub_backend/internal/orders/transport"
	"familyhub_backend/platform/httpkit"
	"familyhub_backend/platform/logger"
)

// ImportEnqueuer queues an import cycle for background processing.
type ImportEnqueuer interface {
	EnqueueOrderImport(ctx context.Context, familyID uuid.UUID) error
}

// Handler handles order HTTP requests.
type Handler struct {
	svc      *service.Service
	importer *service.ImportService
	enqueuer ImportEnqueuer
	log      *logger.Logger
}

// New creates a new orders handler. The enqueuer is nil when no job queue is
// configured; imports then run synchronously in the request.
func New(svc *service.Service, importer *service.ImportService, enqueuer ImportEnqueuer, log *logger.Logger) *Handler {
	return &Handler{svc: svc, importer: importer, enqueuer: enqueuer, log: log}
}

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

// List handles GET /orders.
func (h *Handler) List(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	var req transport.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", nil)
		return
	}

	page, err := h.svc.List(c.Request.Context(), fid, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

// Get handles GET /orders/:id.
func (h *Handler) Get(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.svc.GetByID(c.Request.Context(), fid, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, order)
}

// Import handles POST /orders/import: a full import cycle. With a job queue
// configured the cycle is handed to the worker and the request returns
// immediately; otherwise it runs in the request.
func (h *Handler) Import(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueOrderImport(c.Request.Context(), fid); httpkit.HandleError(c, err) {
			return
		}
		httpkit.JSON(c, http.StatusAccepted, transport.ImportQueuedResponse{Queued: true})
		return
	}

	result, err := h.importer.Run(c.Request.Context(), fid, time.Time{})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ImportResponse{
		Fetched:       result.Fetched,
		Created:       result.Created,
		Updated:       result.Updated,
		Failed:        result.Failed,
		ItemsCreated:  result.ItemsCreated,
		ItemsMoved:    result.ItemsMoved,
		StagesCreated: result.StagesCreated,
	})
}

// Backfill handles POST /admin/orders/backfill-customization: re-extracts
// customization records from the cached raw metadata.
func (h *Handler) Backfill(c *gin.Context) {
	fid, ok := familyID(c)
	if !ok {
		return
	}

	updated, err := h.svc.BackfillCustomization(c.Request.Context(), fid)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.BackfillResponse{Updated: updated})
}

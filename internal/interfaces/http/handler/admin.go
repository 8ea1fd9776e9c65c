package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	loyaltyapp "github.com/loyalty/backend/internal/application/loyalty"
	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/infrastructure/monitor"
)

// AdminHandler exposes the operator surface: system stats, session state,
// spool monitor state, and test injection endpoints.
type AdminHandler struct {
	BaseHandler
	coordinator     *session.Coordinator
	monitor         *monitor.Monitor
	statsService    *loyaltyapp.StatsService
	purchaseService *loyaltyapp.PurchaseService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	coordinator *session.Coordinator,
	mon *monitor.Monitor,
	statsService *loyaltyapp.StatsService,
	purchaseService *loyaltyapp.PurchaseService,
) *AdminHandler {
	return &AdminHandler{
		coordinator:     coordinator,
		monitor:         mon,
		statsService:    statsService,
		purchaseService: purchaseService,
	}
}

// SessionStatusResponse describes the coordinator's current state
type SessionStatusResponse struct {
	State            string               `json:"state"`
	PendingScan      *session.PendingScan `json:"pending_scan"`
	DisplayConnected bool                 `json:"display_connected"`
	ControlConnected bool                 `json:"control_connected"`
}

// MonitorStatusResponse describes the spool monitor's current state
type MonitorStatusResponse struct {
	Enabled        bool   `json:"enabled"`
	Running        bool   `json:"running"`
	Path           string `json:"path"`
	ProcessedCount int    `json:"processed_count"`
}

// TestReceiptRequest carries raw receipt text for the injection endpoint
type TestReceiptRequest struct {
	Text string `json:"text" binding:"required"`
}

// TestScanRequest carries a barcode for the injection endpoint
type TestScanRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// Stats returns aggregate system figures
func (h *AdminHandler) Stats(c *gin.Context) {
	overview, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overview)
}

// SessionStatus returns the coordinator's state and peer connectivity
func (h *AdminHandler) SessionStatus(c *gin.Context) {
	state, pending, displayConnected, controlConnected := h.coordinator.Status()

	h.Success(c, SessionStatusResponse{
		State:            string(state),
		PendingScan:      pending,
		DisplayConnected: displayConnected,
		ControlConnected: controlConnected,
	})
}

// ResetSession forces the coordinator back to idle
func (h *AdminHandler) ResetSession(c *gin.Context) {
	if err := h.coordinator.Reset(); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"state": "idle"})
}

// MonitorStatus returns the spool monitor's state
func (h *AdminHandler) MonitorStatus(c *gin.Context) {
	cfg := h.monitor.Config()

	h.Success(c, MonitorStatusResponse{
		Enabled:        cfg.Enabled,
		Running:        h.monitor.Running(),
		Path:           cfg.Path,
		ProcessedCount: h.monitor.ProcessedCount(),
	})
}

// TestReceipt runs raw text through extraction and correlation as if it had
// arrived on the spool. Useful for verifying the pipeline without a printer.
func (h *AdminHandler) TestReceipt(c *gin.Context) {
	var req TestReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, result, err := h.monitor.Inject(c.Request.Context(), req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := gin.H{
		"receipt": record,
		"valid":   record.IsValid(),
		"matched": result != nil,
	}
	if result != nil {
		resp["matched_barcode"] = result.Scan.IdentifierToken
		resp["matched_at"] = result.MatchedAt
	}
	h.Success(c, resp)
}

// TestScan records a barcode observation as if the control peer had sent it
func (h *AdminHandler) TestScan(c *gin.Context) {
	var req TestScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.coordinator.RecordScan(req.Barcode); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"barcode": req.Barcode})
}

// Broadcast pushes a system status snapshot to both connected peers and
// returns the snapshot that was sent
func (h *AdminHandler) Broadcast(c *gin.Context) {
	state, pending, displayConnected, controlConnected := h.coordinator.Status()

	status := map[string]any{
		"state":             string(state),
		"display_connected": displayConnected,
		"control_connected": controlConnected,
		"monitor_running":   h.monitor.Running(),
		"processed_count":   h.monitor.ProcessedCount(),
	}
	if pending != nil {
		status["pending_barcode"] = pending.IdentifierToken
	}

	h.coordinator.BroadcastStatus(status)
	h.Success(c, status)
}

// RecentScans returns the latest barcode observations
func (h *AdminHandler) RecentScans(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	scans, err := h.purchaseService.RecentScans(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, scans)
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/session", h.SessionStatus)
		admin.POST("/session/reset", h.ResetSession)
		admin.GET("/monitor", h.MonitorStatus)
		admin.POST("/broadcast", h.Broadcast)
		admin.GET("/scans", h.RecentScans)
		admin.POST("/test/receipt", h.TestReceipt)
		admin.POST("/test/scan", h.TestScan)
	}
}

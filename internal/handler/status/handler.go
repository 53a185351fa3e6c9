// Package status serves the read-only HTTP surface of the filter: a status
// snapshot, the recent-decision journal, and a dry-run policy check. Nothing
// here mutates the filter; there is no remote control surface.
package status

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/TomasB/geoblock/internal/filter"
	"github.com/TomasB/geoblock/internal/policy"
	"github.com/gin-gonic/gin"
)

// CheckRequest represents the JSON body for a dry-run policy decision.
type CheckRequest struct {
	IP   string  `json:"ip" binding:"required"`
	Port *uint16 `json:"port"`
}

// CheckResponse represents the JSON response for a dry-run policy decision.
type CheckResponse struct {
	Action  string `json:"action"`
	Reason  string `json:"reason"`
	Country string `json:"country,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Snapshot describes the running filter for GET /api/v1/status.
type Snapshot struct {
	Running          bool     `json:"running"`
	BlockedCountries []string `json:"blocked_countries"`
	PortWindow       string   `json:"port_window"`
	QueueNum         uint16   `json:"queue"`
	GeoIPLoaded      bool     `json:"geoip_loaded"`
	CacheSize        int      `json:"cache_size"`
}

// Handler serves the status endpoints.
type Handler struct {
	engine   *policy.Engine
	journal  *filter.Journal
	snapshot func() Snapshot
}

// NewHandler creates a status handler over the live engine and journal.
func NewHandler(engine *policy.Engine, journal *filter.Journal, snapshot func() Snapshot) *Handler {
	return &Handler{engine: engine, journal: journal, snapshot: snapshot}
}

// Status handles GET /api/v1/status
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshot())
}

// Decisions handles GET /api/v1/decisions
func (h *Handler) Decisions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"decisions": h.journal.Recent(),
	})
}

// Check handles POST /api/v1/check. It evaluates the policy chain for an
// address and port without touching any live packet. The lookup goes through
// the live resolver, so repeated checks hit the country cache.
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CheckResponse{
			Error: "invalid request: " + err.Error(),
		})
		return
	}

	addr, err := netip.ParseAddr(req.IP)
	if err != nil {
		c.JSON(http.StatusBadRequest, CheckResponse{
			Error: "invalid IP address",
		})
		return
	}

	slog.Debug("dry-run check received", "ip", req.IP, "port", req.Port)

	var port uint16
	hasPort := req.Port != nil
	if hasPort {
		port = *req.Port
	}

	d := h.engine.Decide(addr, port, hasPort)
	c.JSON(http.StatusOK, CheckResponse{
		Action:  d.Action.String(),
		Reason:  d.Reason,
		Country: d.Country,
	})
}

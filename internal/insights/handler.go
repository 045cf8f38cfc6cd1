// HTTP transport for the insights service.
//
// Organisation-scoped routes expect an x-org-id header forwarded by the
// Gateway.
//
// Routes:
//
//	GET  /premiums                      → premium catalog
//	GET  /benchmarks                    → distribution, position and adjusted range
//	GET  /competitors/:id/scorecard     → six-axis comparison with one competitor
//	GET  /funnel?view=dashboard|report  → cached funnel report
//	POST /funnel/refresh                → recompute every funnel view now

package insights

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const orgIDKey = "orgID"

// Handler adapts Service to gin.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all insights routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/premiums", h.premiums)
	r.GET("/benchmarks", h.benchmarks)

	org := r.Group("", requireOrg)
	org.GET("/competitors/:id/scorecard", h.scorecard)
	org.GET("/funnel", h.funnel)
	org.POST("/funnel/refresh", h.refreshFunnel)
}

// requireOrg rejects requests without a valid x-org-id header.
func requireOrg(c *gin.Context) {
	orgID := c.GetHeader("x-org-id")
	if orgID == "" {
		jsonError(c, http.StatusUnauthorized, "missing x-org-id header")
		return
	}
	if _, err := uuid.Parse(orgID); err != nil {
		jsonError(c, http.StatusBadRequest, "x-org-id must be a UUID")
		return
	}
	c.Set(orgIDKey, orgID)
	c.Next()
}

func (h *Handler) premiums(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"premiums": h.svc.Premiums()})
}

// benchmarks handles GET /benchmarks?region=&role=&employmentType=&candidate=&premium=a&premium=b
func (h *Handler) benchmarks(c *gin.Context) {
	req := BenchmarkRequest{
		Region:         c.Query("region"),
		Role:           c.Query("role"),
		EmploymentType: c.Query("employmentType"),
		Premiums:       splitList(c.QueryArray("premium")),
	}
	if raw := c.Query("candidate"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "candidate must be a number")
			return
		}
		req.Candidate = &v
	}

	report, err := h.svc.Benchmark(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) scorecard(c *gin.Context) {
	report, err := h.svc.Scorecard(c.Request.Context(), c.GetString(orgIDKey), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) funnel(c *gin.Context) {
	report, err := h.svc.Funnel(c.Request.Context(), c.GetString(orgIDKey), c.Query("view"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) refreshFunnel(c *gin.Context) {
	reports, err := h.svc.RefreshFunnels(c.Request.Context(), c.GetString(orgIDKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"funnels": reports})
}

// fail maps service errors to HTTP status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(c, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, ErrNotFound):
		jsonError(c, http.StatusNotFound, "not found")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

func jsonError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

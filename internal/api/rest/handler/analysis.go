package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/contentiq/internal/analysis"
	"github.com/palemoky/contentiq/internal/database"
	apierrors "github.com/palemoky/contentiq/internal/errors"
)

// AnalysisHandler handles the estimate API
type AnalysisHandler struct {
	svc *analysis.Service
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *analysis.Service) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

type urlRequest struct {
	URL string `json:"url" form:"url"`
}

func bindURL(c *gin.Context) (string, bool) {
	var req urlRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, apierrors.InvalidRequest("Request body must be {\"url\": \"...\"}"))
		return "", false
	}
	return req.URL, true
}

// CreateAnalysis creates an analysis and starts it
// POST /analyses {"url": "..."} -> 202 with the analyzing record
func (h *AnalysisHandler) CreateAnalysis(c *gin.Context) {
	url, ok := bindURL(c)
	if !ok {
		return
	}

	a, err := h.svc.Analyze(c.Request.Context(), url)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", "/api/v1/analyses/"+a.ID)
	respondOK(c, http.StatusAccepted, formatAnalysis(a))
}

// GetAnalysis returns an analysis by ID
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, formatAnalysis(a))
}

// StartAnalysis (re)starts an analysis. Ignored while it is analyzing.
func (h *AnalysisHandler) StartAnalysis(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Start(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusAccepted, formatAnalysis(a))
}

// Estimate runs an analysis synchronously, waiting out the delay
// POST /estimate {"url": "..."} -> 200 with the complete record
func (h *AnalysisHandler) Estimate(c *gin.Context) {
	url, ok := bindURL(c)
	if !ok {
		return
	}

	a, err := h.svc.Estimate(c.Request.Context(), url)
	if err != nil {
		respondError(c, err)
		return
	}

	if a.State != database.StateComplete {
		respondError(c, fmt.Errorf("analysis %s ended %s: %s", a.ID, a.State, a.Error))
		return
	}

	respondOK(c, http.StatusOK, formatAnalysis(a))
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// AnalysisHandler serves /analyze and /report.
type AnalysisHandler struct {
	backend *mockapi.Backend
	log     logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(backend *mockapi.Backend, log logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{backend: backend, log: log}
}

// RiskAnalysis handles GET /analyze/risk-analysis.
func (h *AnalysisHandler) RiskAnalysis(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	analysis, err := h.backend.RiskAnalysis(c.Request.Context(), user)
	if err != nil {
		sendError(c, h.log, "Failed to perform risk analysis", err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// ScoreSummary handles GET /analyze/score-summary.
func (h *AnalysisHandler) ScoreSummary(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	summary, err := h.backend.ScoreSummary(c.Request.Context(), user)
	if err != nil {
		sendError(c, h.log, "Failed to get score summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UserReports handles GET /report/:user_id.
func (h *AnalysisHandler) UserReports(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	reports, err := h.backend.Reports(c.Request.Context(), user, c.Param("user_id"))
	if err != nil {
		sendError(c, h.log, "Failed to retrieve reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// MyReports handles GET /report/my-reports.
func (h *AnalysisHandler) MyReports(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	reports, err := h.backend.MyReports(c.Request.Context(), user)
	if err != nil {
		sendError(c, h.log, "Failed to retrieve your reports", err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// Comprehensive handles GET /report/comprehensive.
func (h *AnalysisHandler) Comprehensive(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	report, err := h.backend.Comprehensive(c.Request.Context(), user)
	if err != nil {
		sendError(c, h.log, "Failed to generate comprehensive report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

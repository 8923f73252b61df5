package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propwriter/server/config"
	"propwriter/server/internal/analysis"
	"propwriter/server/internal/database"
	"propwriter/server/internal/ingest"
)

var zipCodePattern = regexp.MustCompile(`^\d{5}$`)

type Handler struct {
	db       *database.Database
	analysis *analysis.Service
	ingester *ingest.Ingester
	config   *config.Config
	logger   *logrus.Logger
}

func NewHandler(db *database.Database, svc *analysis.Service, ingester *ingest.Ingester, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:       db,
		analysis: svc,
		ingester: ingester,
		config:   cfg,
		logger:   logger,
	}
}

// GetMarketAnalysis returns the market analysis for a ZIP code, optionally
// narrowed to a property type. No data for the ZIP is a 404, not an error.
func (h *Handler) GetMarketAnalysis(c *gin.Context) {
	zipCode := c.Param("zipCode")
	if !zipCodePattern.MatchString(zipCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zip code must be 5 digits"})
		return
	}

	propertyType := c.Query("propertyType")

	result, err := h.analysis.Analyze(zipCode, propertyType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to analyze market")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze market"})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no market data available"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunIngest triggers a full feed ingestion. The endpoint is protected by a
// shared bearer token and is meant for an external scheduler, not end users.
func (h *Handler) RunIngest(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	timeout := time.Duration(h.config.Ingest.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	report, err := h.ingester.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Market feed ingestion failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"recordCount":   report.RecordCount,
		"zipCount":      report.ZipCount,
		"duration":      report.Duration.String(),
		"failedBatches": report.FailedBatches,
	})
}

// GetHealth reports service liveness plus current store coverage.
func (h *Handler) GetHealth(c *gin.Context) {
	records, err := h.db.CountRecords()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count market records")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "degraded"})
		return
	}
	zips, err := h.db.CountZipCodes()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count zip codes")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "degraded"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"records":  records,
		"zipCodes": zips,
	})
}

func (h *Handler) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	expected := h.config.Ingest.AuthToken
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

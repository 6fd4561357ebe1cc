package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-label-detector/internal/config"
	"go-label-detector/internal/detector"
	apperrors "go-label-detector/internal/errors"
	"go-label-detector/internal/logger"
	"go-label-detector/pkg/models"
	"go-label-detector/pkg/validation"
)

// DetectionService is the surface the HTTP layer needs from the detector.
type DetectionService interface {
	DetectLabel(ctx context.Context, imageURL string) (*models.LabelDetectionResult, error)
	DetectLabelsInBatch(ctx context.Context, images []detector.ImageRef) map[string]models.LabelDetectionResult
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the gin router for the detection API.
func NewHandler(service DetectionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	validator := validation.NewURLValidator()

	r.GET("/health", healthCheck)
	r.POST("/detect", detectLabel(service, validator, cfg))
	r.POST("/detect/batch", detectBatch(service, validator, cfg))

	return r
}

func detectLabel(service DetectionService, validator *validation.URLValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.DetectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := validator.ValidateImageURL(req.URL); err != nil {
			respondError(c, apperrors.GetStatusCode(err), "invalid image URL", err)
			return
		}

		result, err := service.DetectLabel(ctx, req.URL)
		if err != nil {
			respondError(c, determineStatusCode(err), "label detection failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"is_product_label":   result.IsProductLabel,
			"confidence":         result.Confidence,
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("label detection request completed")

		c.JSON(http.StatusOK, result)
	}
}

func detectBatch(service DetectionService, validator *validation.URLValidator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BatchDetectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithField("ip", c.ClientIP()).Error("invalid batch request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		images := make([]detector.ImageRef, 0, len(req.Images))
		for _, img := range req.Images {
			if err := validator.ValidateImageURL(img.URL); err != nil {
				respondError(c, apperrors.GetStatusCode(err),
					fmt.Sprintf("invalid image URL for id %q", img.ID), err)
				return
			}
			images = append(images, detector.ImageRef{ID: img.ID, URL: img.URL})
		}

		results := service.DetectLabelsInBatch(ctx, images)

		logger.WithFields(logrus.Fields{
			"image_count":        len(images),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("batch detection request completed")

		c.JSON(http.StatusOK, models.BatchDetectResponse{Results: results})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

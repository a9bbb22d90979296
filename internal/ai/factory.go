package ai

import (
	"net/http"

	"github.com/RangerDjanger/BetterDay/internal/domain/coach"
	"github.com/RangerDjanger/BetterDay/pkg/config"
	"go.uber.org/zap"
)

// NewGenerator builds the coach generator from configuration. It returns nil
// when no API key is configured, which the coach service reports as
// coach.ErrNotConfigured on every request.
func NewGenerator(cfg config.CoachConfig, logger *zap.Logger) coach.Generator {
	if cfg.APIKey == "" {
		if logger != nil {
			logger.Warn("Coach API key not configured; coach responses are disabled")
		}
		return nil
	}

	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	if logger != nil {
		logger.Info("Coach generator configured",
			zap.String("base_url", cfg.BaseURL),
			zap.String("model", cfg.Model))
	}

	return NewClient(Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		HTTPClient:  httpClient,
	})
}

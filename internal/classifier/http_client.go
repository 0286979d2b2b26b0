package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	classifiererrors "github.com/AkshiGarg/nagarro-leave-manager/internal/classifier/errors"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL: os.Getenv("CLASSIFIER_URL"),
		Timeout: 10 * time.Second,
	}
	if v := os.Getenv("CLASSIFIER_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

type httpClassifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClassifier talks to the external language-understanding service.
func NewHTTPClassifier(cfg Config, logger ...*zap.Logger) Classifier {
	l := zap.L().Named("classifier.http")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("classifier.http")
	}
	return &httpClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: l,
	}
}

func (c *httpClassifier) Classify(ctx context.Context, utterance string) (*Result, error) {
	body, _ := json.Marshal(map[string]string{"utterance": utterance})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, classifiererrors.ErrClassifierUnavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("classifier request failed", zap.Error(err))
		return nil, classifiererrors.ErrClassifierUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("classifier returned non-ok status", zap.Int("status", resp.StatusCode))
		return nil, classifiererrors.ErrClassifierUnavailable
	}

	var wire struct {
		TopIntent  string       `json:"topIntent"`
		Confidence float64      `json:"confidence"`
		Entities   []wireEntity `json:"entities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		c.logger.Warn("classifier response decode failed", zap.Error(err))
		return nil, fmt.Errorf("decode classifier response: %w", classifiererrors.ErrClassifierUnavailable)
	}

	result := &Result{
		TopIntent:  parseIntent(wire.TopIntent),
		Confidence: wire.Confidence,
	}
	foldEntities(result, wire.Entities)

	c.logger.Debug("utterance classified",
		zap.String("intent", string(result.TopIntent)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("entity_count", len(wire.Entities)),
	)

	return result, nil
}

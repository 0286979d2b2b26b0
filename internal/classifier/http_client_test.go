package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AkshiGarg/nagarro-leave-manager/internal/classifier"
	classifiererrors "github.com/AkshiGarg/nagarro-leave-manager/internal/classifier/errors"

	"github.com/stretchr/testify/assert"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) (classifier.Classifier, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := classifier.NewHTTPClassifier(classifier.Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	return c, srv
}

func TestHTTPClassifier_Classify(t *testing.T) {
	t.Run("folds entities into typed fields", func(t *testing.T) {
		c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/classify", r.URL.Path)

			var req map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "I want to apply for a leave next week", req["utterance"])

			json.NewEncoder(w).Encode(map[string]any{
				"topIntent":  "leave_requests",
				"confidence": 0.93,
				"entities": []map[string]string{
					{"type": "action_types", "value": "apply for"},
					{"type": "daterange", "value": "next week"},
					{"type": "request_types", "value": "leave"},
					{"type": "sentiment", "value": "neutral"},
				},
			})
		})

		res, err := c.Classify(context.Background(), "I want to apply for a leave next week")

		assert.NoError(t, err)
		assert.Equal(t, classifier.IntentLeaveRequest, res.TopIntent)
		assert.Equal(t, classifier.ActionApply, res.Action)
		assert.Equal(t, "next week", res.DateRangePhrase)
		assert.Empty(t, res.DatePhrase)
		assert.True(t, res.WantsRequestType("leave"))
	})

	t.Run("unknown intent maps to none", func(t *testing.T) {
		c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"topIntent": "ChitChat", "confidence": 0.4})
		})

		res, err := c.Classify(context.Background(), "blah")

		assert.NoError(t, err)
		assert.Equal(t, classifier.IntentNone, res.TopIntent)
	})

	t.Run("non-ok status is classifier unavailable", func(t *testing.T) {
		c, _ := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.Classify(context.Background(), "hello")

		assert.True(t, errors.Is(err, classifiererrors.ErrClassifierUnavailable))
	})

	t.Run("unreachable service is classifier unavailable", func(t *testing.T) {
		c := classifier.NewHTTPClassifier(classifier.Config{
			BaseURL: "http://127.0.0.1:1",
			Timeout: 200 * time.Millisecond,
		})

		_, err := c.Classify(context.Background(), "hello")

		assert.True(t, errors.Is(err, classifiererrors.ErrClassifierUnavailable))
	})
}

package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
)

func geminiBody(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
	require.NoError(t, err)
	return body
}

func newTestOracle(t *testing.T, url string, timeout time.Duration) *GeminiOracle {
	t.Helper()
	o, err := NewGeminiOracle(GeminiConfig{
		APIKey:   "test-key",
		Model:    "test-model",
		Endpoint: url,
		Timeout:  timeout,
	}, zerolog.Nop())
	require.NoError(t, err)
	return o
}

var intake = model.TriageInput{SymptomsText: "chest pain", PainScore: 8, Age: 60, Language: model.LanguageEnglish}

func TestGeminiTriageSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "chest pain")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(geminiBody(t, validReply))
	}))
	defer srv.Close()

	res, err := newTestOracle(t, srv.URL, time.Second).Triage(context.Background(), intake)
	require.NoError(t, err)
	assert.Equal(t, model.ESIEmergent, res.ESILevel)
	assert.Equal(t, model.SourceOracle, res.Source)
}

func TestGeminiTriageNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
	}))
	defer srv.Close()

	_, err := newTestOracle(t, srv.URL, time.Second).Triage(context.Background(), intake)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestGeminiTriageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := newTestOracle(t, srv.URL, 50*time.Millisecond).Triage(context.Background(), intake)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGeminiTriageMalformedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(geminiBody(t, `{"esiLevel": "two"}`))
	}))
	defer srv.Close()

	_, err := newTestOracle(t, srv.URL, time.Second).Triage(context.Background(), intake)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestGeminiTriageNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := newTestOracle(t, srv.URL, time.Second).Triage(context.Background(), intake)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNewGeminiOracleRequiresKey(t *testing.T) {
	_, err := NewGeminiOracle(GeminiConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

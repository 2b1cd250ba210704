package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/utils"
)

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

func newTestSynthesizer(t *testing.T, maxChars int, handler http.Handler) *Synthesizer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)
	return newSynthesizer(client, maxChars, utils.NewTextSplitter(zap.NewNop()), zap.NewNop())
}

func TestSynthesize(t *testing.T) {
	var requests []speechRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("request path = %q, want /v1/audio/speech", r.URL.Path)
		}
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, req)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(mp3Frames(200))
	})
	synth := newTestSynthesizer(t, 4000, handler)

	result, err := synth.Synthesize(context.Background(), "A short update.", "tts-1", "echo")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("API calls = %d, want 1", len(requests))
	}
	req := requests[0]
	if req.Model != "tts-1" {
		t.Errorf("request model = %q, want tts-1", req.Model)
	}
	if req.Voice != "echo" {
		t.Errorf("request voice = %q, want echo", req.Voice)
	}
	if req.Input != "A short update." {
		t.Errorf("request input = %q, want the episode text", req.Input)
	}
	if req.ResponseFormat != "mp3" {
		t.Errorf("request response_format = %q, want mp3", req.ResponseFormat)
	}
	if result.MIMEType != "audio/mpeg" {
		t.Errorf("MIMEType = %q, want audio/mpeg", result.MIMEType)
	}
	if len(result.Audio) != 200*417 {
		t.Errorf("audio length = %d, want %d", len(result.Audio), 200*417)
	}
	if result.DurationSeconds == nil || *result.DurationSeconds != 5 {
		t.Errorf("DurationSeconds = %v, want 5", result.DurationSeconds)
	}
}

func TestSynthesizeChunksLongText(t *testing.T) {
	var inputs []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req speechRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		inputs = append(inputs, req.Input)
		w.Write(mp3Frames(100))
	})
	synth := newTestSynthesizer(t, 20, handler)

	result, err := synth.Synthesize(context.Background(), "First sentence. Second sentence.", "tts-1", "alloy")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("API calls = %d, want 2 (inputs %q)", len(inputs), inputs)
	}
	if inputs[0] != "First sentence." || inputs[1] != "Second sentence." {
		t.Errorf("chunk inputs = %q, want the two sentences", inputs)
	}
	// Two chunk streams concatenate into one 200 frame MP3.
	if len(result.Audio) != 200*417 {
		t.Errorf("audio length = %d, want %d", len(result.Audio), 200*417)
	}
	if result.DurationSeconds == nil || *result.DurationSeconds != 5 {
		t.Errorf("DurationSeconds = %v, want 5", result.DurationSeconds)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	synth := newTestSynthesizer(t, 4000, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected API call for empty text")
	}))

	if _, err := synth.Synthesize(context.Background(), "   \n  ", "tts-1", "echo"); err == nil {
		t.Fatal("Synthesize() error = nil, want error for empty text")
	}
}

func TestSynthesizeAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	})
	synth := newTestSynthesizer(t, 4000, handler)

	if _, err := synth.Synthesize(context.Background(), "Some text.", "tts-1", "echo"); err == nil {
		t.Fatal("Synthesize() error = nil, want API error")
	}
}

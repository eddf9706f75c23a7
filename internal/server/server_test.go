// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/refcheck/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRunner replays events, or blocks emitting status events until the
// run's context ends when endless is set.
type fakeRunner struct {
	mu      sync.Mutex
	events  []types.Event
	endless bool
	model   string
	data    []byte
	done    chan struct{}
}

func (f *fakeRunner) Start(ctx context.Context, model string, data []byte) <-chan types.Event {
	f.mu.Lock()
	f.model, f.data = model, data
	f.mu.Unlock()

	out := make(chan types.Event)
	go func() {
		defer close(out)
		if f.endless {
			defer close(f.done)
			for {
				select {
				case out <- types.StatusEvent("working"):
					time.Sleep(5 * time.Millisecond)
				case <-ctx.Done():
					return
				}
			}
		}
		for _, ev := range f.events {
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *fakeRunner) got() (string, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.model, f.data
}

func newTestServer(t *testing.T, runner Runner, cfg types.ServerConfig) *httptest.Server {
	t.Helper()
	models := []types.ModelConfig{
		{Name: "gemini-1.5-pro", Provider: types.ProviderGemini},
		{Name: "deepseek-chat", Provider: types.ProviderDeepSeek},
	}
	s := New(runner, models, "gemini-1.5-pro", cfg, nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "paper.pdf")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// readFrames parses SSE "data: " frames into events with raw payloads.
func readFrames(t *testing.T, r io.Reader) []map[string]json.RawMessage {
	t.Helper()
	var frames []map[string]json.RawMessage
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, "data: "), "unexpected line %q", line)
		var frame map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}

func frameType(f map[string]json.RawMessage) string {
	var s string
	_ = json.Unmarshal(f["type"], &s)
	return s
}

// --- Simple routes ---

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, types.ServerConfig{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestModels(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, types.ServerConfig{})

	resp, err := http.Get(ts.URL + "/models")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got struct {
		Default string              `json:"default"`
		Models  []types.ModelConfig `json:"models"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "gemini-1.5-pro", got.Default)
	require.Len(t, got.Models, 2)
	assert.Equal(t, "deepseek-chat", got.Models[1].Name)
}

// --- Streaming ---

func TestStreamVerify(t *testing.T) {
	runner := &fakeRunner{events: []types.Event{
		types.StatusEvent("Using model: deepseek-chat"),
		types.ReferenceEvent(types.NewReference("[1] A. Author, Title, 2020.")),
		types.SummaryEvent(types.Summary{Total: 1, NotFound: 1}),
		types.EndEvent("Verification process complete."),
	}}
	ts := newTestServer(t, runner, types.ServerConfig{})

	body, ct := multipartBody(t, map[string]string{"model_name": "deepseek-chat"}, []byte("%PDF-1.4 fake"))
	resp, err := http.Post(ts.URL+"/stream-verify/", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := readFrames(t, resp.Body)
	require.Len(t, frames, 4)
	assert.Equal(t, []string{"status", "reference", "summary", "end"},
		[]string{frameType(frames[0]), frameType(frames[1]), frameType(frames[2]), frameType(frames[3])})

	var ref map[string]any
	require.NoError(t, json.Unmarshal(frames[1]["payload"], &ref))
	assert.Equal(t, "Unprocessed", ref["status"])
	assert.Contains(t, ref, "verified_doi")
	assert.Nil(t, ref["verified_doi"])

	model, data := runner.got()
	assert.Equal(t, "deepseek-chat", model)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
}

func TestStreamVerify_DefaultModel(t *testing.T) {
	runner := &fakeRunner{events: []types.Event{types.EndEvent("done")}}
	ts := newTestServer(t, runner, types.ServerConfig{})

	body, ct := multipartBody(t, nil, []byte("%PDF"))
	resp, err := http.Post(ts.URL+"/stream-verify/", ct, body)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	model, _ := runner.got()
	assert.Equal(t, "gemini-1.5-pro", model)
}

func TestStreamVerify_UploadErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   types.ServerConfig
		file  []byte
		fails string
	}{
		{name: "missing file", file: nil, fails: "Failed to read uploaded file:"},
		{name: "too large", cfg: types.ServerConfig{MaxUploadBytes: 64}, file: bytes.Repeat([]byte("x"), 4096), fails: "Failed to read uploaded file:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			ts := newTestServer(t, runner, tt.cfg)

			body, ct := multipartBody(t, map[string]string{"model_name": "gemini-1.5-pro"}, tt.file)
			resp, err := http.Post(ts.URL+"/stream-verify/", ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()

			frames := readFrames(t, resp.Body)
			require.Len(t, frames, 1)
			assert.Equal(t, "error", frameType(frames[0]))

			var msg types.Message
			require.NoError(t, json.Unmarshal(frames[0]["payload"], &msg))
			assert.Contains(t, msg.Message, tt.fails)
			_, data := runner.got()
			assert.Nil(t, data)
		})
	}
}

func TestStreamVerify_ClientDisconnectCancelsRun(t *testing.T) {
	runner := &fakeRunner{endless: true, done: make(chan struct{})}
	ts := newTestServer(t, runner, types.ServerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	body, ct := multipartBody(t, nil, []byte("%PDF"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+"/stream-verify/", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", ct)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	// Read one frame, then hang up.
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "data: "))
	cancel()
	resp.Body.Close()

	select {
	case <-runner.done:
	case <-time.After(3 * time.Second):
		t.Fatal("run was not cancelled after the client disconnected")
	}
}

// --- CORS ---

func TestCORS(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, types.ServerConfig{AllowOrigins: []string{"http://localhost:3000"}})

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
		wantCreds  string
	}{
		{name: "preflight allowed", method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantAllow: "http://localhost:3000", wantCreds: "true"},
		{name: "preflight other origin", method: http.MethodOptions, origin: "http://evil.example", wantStatus: http.StatusForbidden},
		{name: "simple allowed", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllow: "http://localhost:3000", wantCreds: "true"},
		{name: "simple other origin", method: http.MethodGet, origin: "http://evil.example", wantStatus: http.StatusForbidden},
		{name: "no origin", method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+"/healthz", nil)
			require.NoError(t, err)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantAllow, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, resp.Header.Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, types.ServerConfig{AllowOrigins: []string{"*"}})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://app.example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"), "credentials never paired with any origin")
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{}, types.ServerConfig{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://app.example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, types.StatusEvent("hello")))
	assert.Equal(t, "data: {\"type\":\"status\",\"payload\":{\"message\":\"hello\"}}\n\n", buf.String())
}

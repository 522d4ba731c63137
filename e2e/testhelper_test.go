package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/songlesson/api/internal/auth"
	"github.com/songlesson/api/internal/client"
	"github.com/songlesson/api/internal/config"
	"github.com/songlesson/api/internal/server"
	"github.com/songlesson/api/internal/service"
	"github.com/songlesson/api/internal/store"
	ws "github.com/songlesson/api/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

// fakeSuno stands in for the music provider. Jobs are unknown until
// completed by the test.
type fakeSuno struct {
	mu          sync.Mutex
	nextID      int
	submitFails bool
	submissions []map[string]interface{}
	completed   map[string]string
	statusCalls int
	server      *httptest.Server
}

func newFakeSuno(t *testing.T) *fakeSuno {
	t.Helper()
	f := &fakeSuno{completed: map[string]string{}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSuno) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/generate":
		if f.submitFails {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"code":503,"msg":"unavailable"}`))
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.submissions = append(f.submissions, body)
		f.nextID++
		_, _ = w.Write([]byte(`{"code":200,"msg":"success","data":{"taskId":"task-` + strconv.Itoa(f.nextID) + `"}}`))

	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/generate/record-info":
		f.statusCalls++
		taskID := r.URL.Query().Get("taskId")
		url, ok := f.completed[taskID]
		if !ok {
			_, _ = w.Write([]byte(`{"code":404,"msg":"task not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"msg":"success","data":{"data":[{"audio_url":"` + url + `"}],"callbackType":"complete","task_id":"` + taskID + `"}}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeSuno) complete(taskID, audioURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[taskID] = audioURL
}

func (f *fakeSuno) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	store store.Store
	suno  *fakeSuno
	hub   *ws.Hub
}

type appOptions struct {
	authEnabled bool
}

// setupApp builds the real router with a memory store, the offline lyrics
// generator and a fake music provider.
func setupApp(t *testing.T) *testApp {
	return setupAppWith(t, appOptions{})
}

func setupAppWith(t *testing.T, opts appOptions) *testApp {
	t.Helper()

	cfg := &config.Config{
		Auth:      config.AuthConfig{Enabled: opts.authEnabled, JWTSecret: testJWTSecret},
		RateLimit: config.RateLimitConfig{SongsPerHour: 10000, UploadsPerHour: 10000},
		Upload:    config.UploadConfig{MaxSize: 1024 * 1024},
		Database:  config.DatabaseConfig{Driver: "memory"},
	}

	suno := newFakeSuno(t)
	st := store.NewMemory()
	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	groqClient := client.NewGroqClient(&config.GroqConfig{}) // no API key → offline lyrics
	sunoClient := client.NewSunoClient(&config.SunoConfig{
		APIKey:      "test-key",
		BaseURL:     suno.server.URL,
		Model:       "V3_5",
		CallbackURL: "http://localhost/api/songs/callback",
	})

	audio := service.NewAudioService(sunoClient, st, hub)
	songs := service.NewSongService(st, service.NewLyricsService(groqClient, "West African"), audio)
	documents := service.NewDocumentService(st, nil)

	var verifier auth.Verifier
	if opts.authEnabled {
		verifier = auth.Chain{auth.NewHMACVerifier(testJWTSecret)}
	}

	app := server.New(server.Deps{
		Config:    cfg,
		Songs:     songs,
		Audio:     audio,
		Documents: documents,
		Hub:       hub,
		Verifier:  verifier,
		Health: func() fiber.Map {
			return fiber.Map{"store": "memory", "services": fiber.Map{"groq": false, "suno": true, "r2": false}}
		},
	})

	return &testApp{app: app, store: st, suno: suno, hub: hub}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	token, err := auth.NewHMACVerifier(testJWTSecret).Issue("test-user-123", "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// doUpload posts a multipart file to the upload endpoint.
func doUpload(t *testing.T, app *fiber.App, filename, contentType string, data []byte, title string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the error envelope code.
func assertErrorCode(t *testing.T, body map[string]interface{}, expected string) {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	if errObj["code"] != expected {
		t.Errorf("expected error code %q, got %v", expected, errObj["code"])
	}
}

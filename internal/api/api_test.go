package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/proofsheet/proofsheet-api/internal/archive"
	"github.com/proofsheet/proofsheet-api/internal/dispatch"
	"github.com/proofsheet/proofsheet-api/internal/domain"
	"github.com/proofsheet/proofsheet-api/internal/events"
	"github.com/proofsheet/proofsheet-api/internal/session"
)

// stubHandle is a TaskHandle whose state tests flip directly.
type stubHandle struct {
	itemID  uuid.UUID
	running bool
	done    bool
	result  *domain.Image
	err     error
	started time.Time
}

func (h *stubHandle) ItemID() uuid.UUID { return h.itemID }
func (h *stubHandle) Running() bool     { return h.running && !h.done }
func (h *stubHandle) Done() bool        { return h.done }

func (h *stubHandle) Cancel() bool {
	if h.running || h.done {
		return false
	}
	h.done = true
	h.err = dispatch.ErrCancelled
	return true
}

func (h *stubHandle) Await(timeout time.Duration) (*domain.Image, error, bool) {
	if !h.done {
		return nil, nil, false
	}
	return h.result, h.err, true
}

func (h *stubHandle) ProcessingStartedAt() time.Time    { return h.started }
func (h *stubHandle) MarkProcessingStarted(t time.Time) { h.started = t }

// stubDispatcher hands out stubHandles keyed by item id.
type stubDispatcher struct {
	handles map[uuid.UUID]*stubHandle
}

func (d *stubDispatcher) Submit(req dispatch.Request) (session.TaskHandle, error) {
	h := &stubHandle{itemID: req.ItemID}
	d.handles[req.ItemID] = h
	return h, nil
}

type testServer struct {
	router     http.Handler
	session    *session.Session
	dispatcher *stubDispatcher
	outputDir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	outputDir := t.TempDir()
	dispatcher := &stubDispatcher{handles: make(map[uuid.UUID]*stubHandle)}
	sess := session.New(
		session.DefaultConfig(),
		dispatcher,
		archive.New(outputDir),
		events.NewBuffer(0),
		logger,
	)

	return &testServer{
		router:     NewRouter(sess, logger),
		session:    sess,
		dispatcher: dispatcher,
		outputDir:  outputDir,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return ts.do(t, method, path, body, "application/json")
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out),
		"response body: %s", rec.Body.String())
	return out
}

// enqueueItems submits a generation batch and returns the created ids.
func (ts *testServer) enqueueItems(t *testing.T, promptText string) []string {
	t.Helper()

	rec := ts.doJSON(t, http.MethodPost, "/api/generations",
		CreateGenerationRequest{Prompt: promptText})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decodeResponse[EnqueueResponse](t, rec)
	require.NotEmpty(t, resp.ItemIDs)
	return resp.ItemIDs
}

// completeItem drives the stub handle for the item to success and runs a
// reconciliation pass through the API.
func (ts *testServer) completeItem(t *testing.T, id string) {
	t.Helper()

	itemID, err := uuid.Parse(id)
	require.NoError(t, err)

	h, ok := ts.dispatcher.handles[itemID]
	require.True(t, ok, "no handle for item %s", id)
	h.done = true
	h.result = domain.NewImage(encodePNG(t), "image/png")

	rec := ts.doJSON(t, http.MethodPost, "/api/poll", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeResponse[PollResponse](t, rec).Changed)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartUpload builds a multipart body with the given PNG files and
// instruction field.
func multipartUpload(t *testing.T, instruction string, filenames ...string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, name := range filenames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(encodePNG(t))
		require.NoError(t, err)
	}
	if instruction != "" {
		require.NoError(t, writer.WriteField("instruction", instruction))
	}
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

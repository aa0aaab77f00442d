package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestCreateGenerations(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "A cat in a hat; A dog on a log")
	assert.Len(t, ids, 2)

	rec := ts.do(t, http.MethodGet, "/api/queue", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	queue := decodeResponse[QueueResponse](t, rec)
	require.Len(t, queue.Items, 2)
	assert.Equal(t, ids[0], queue.Items[0].ID)
	assert.Equal(t, "text_to_image", queue.Items[0].Kind)
	assert.Equal(t, "generating", queue.Items[0].Status)
	assert.Equal(t, ids[0], queue.SelectedID)
	assert.Equal(t, 2, queue.Outstanding)
}

func TestCreateGenerationsRejectsBadInput(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	// Malformed JSON.
	rec := ts.do(t, http.MethodPost, "/api/generations",
		strings.NewReader("{not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty prompt fails validation.
	rec = ts.doJSON(t, http.MethodPost, "/api/generations",
		CreateGenerationRequest{Prompt: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing usable after splitting.
	rec = ts.doJSON(t, http.MethodPost, "/api/generations",
		CreateGenerationRequest{Prompt: "hi; ; x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was enqueued by any of those.
	queueRec := ts.do(t, http.MethodGet, "/api/queue", nil, "")
	queue := decodeResponse[QueueResponse](t, queueRec)
	assert.Empty(t, queue.Items)
}

func TestCreateTransforms(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	body, contentType := multipartUpload(t, "make it warmer", "one.png", "two.png")

	rec := ts.do(t, http.MethodPost, "/api/transforms", body, contentType)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	resp := decodeResponse[EnqueueResponse](t, rec)
	assert.Equal(t, 2, resp.Count)

	queueRec := ts.do(t, http.MethodGet, "/api/queue", nil, "")
	queue := decodeResponse[QueueResponse](t, queueRec)
	require.Len(t, queue.Items, 2)
	assert.Equal(t, "image_transform", queue.Items[0].Kind)
	assert.Equal(t, "one.png", queue.Items[0].OriginalFilename)
	require.NotNil(t, queue.Items[0].Source)
	assert.Equal(t, "image/png", queue.Items[0].Source.MIMEType)
}

func TestCreateTransformsWithoutFiles(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	body, contentType := multipartUpload(t, "make it warmer")

	rec := ts.do(t, http.MethodPost, "/api/transforms", body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetItemLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "A lighthouse at dusk")
	id := ids[0]

	// Still generating: no image to serve yet.
	rec := ts.do(t, http.MethodGet, "/api/items/"+id+"/image", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.completeItem(t, id)

	rec = ts.do(t, http.MethodGet, "/api/items/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	item := decodeResponse[ItemResponse](t, rec)
	assert.Equal(t, "ready", item.Status)
	require.NotNil(t, item.Result)
	assert.Equal(t, "image/png", item.Result.MIMEType)
	assert.Equal(t, 2, item.Result.Width)

	// Raw image bytes with the right content type.
	rec = ts.do(t, http.MethodGet, "/api/items/"+id+"/image", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	// Text items have no source image.
	rec = ts.do(t, http.MethodGet, "/api/items/"+id+"/source", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemIDValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/items/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/items/00000000-0000-0000-0000-000000000001", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAcceptItem(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "A lighthouse at dusk")
	id := ids[0]

	// Accepting before completion conflicts.
	rec := ts.doJSON(t, http.MethodPost, "/api/items/"+id+"/accept", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	ts.completeItem(t, id)

	rec = ts.doJSON(t, http.MethodPost, "/api/items/"+id+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse[AcceptResponse](t, rec)
	require.NotEmpty(t, resp.Path)

	// The image landed on disk.
	saved, err := os.ReadFile(resp.Path)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
	assert.Equal(t, ts.outputDir, filepath.Dir(resp.Path))

	// Accepted items leave the queue.
	rec = ts.do(t, http.MethodGet, "/api/items/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	statsRec := ts.do(t, http.MethodGet, "/api/queue/stats", nil, "")
	stats := decodeResponse[StatsResponse](t, statsRec)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 1, stats.Generated)
	assert.Equal(t, 0, stats.QueueLength)
}

func TestRejectAndRetry(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "A lighthouse at dusk; A harbor at dawn")

	// Retry only applies to failed items.
	rec := ts.doJSON(t, http.MethodPost, "/api/items/"+ids[0]+"/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Reject the first item.
	rec = ts.doJSON(t, http.MethodPost, "/api/items/"+ids[0]+"/reject", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/items/"+ids[0], nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	statsRec := ts.do(t, http.MethodGet, "/api/queue/stats", nil, "")
	stats := decodeResponse[StatsResponse](t, statsRec)
	assert.Equal(t, 1, stats.Rejected)
}

func TestSkipAndDelete(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "First prompt text; Second prompt text")

	rec := ts.doJSON(t, http.MethodPost, "/api/items/"+ids[0]+"/skip", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	queueRec := ts.do(t, http.MethodGet, "/api/queue", nil, "")
	queue := decodeResponse[QueueResponse](t, queueRec)
	require.Len(t, queue.Items, 2)
	assert.Equal(t, ids[1], queue.Items[0].ID)
	assert.Equal(t, ids[0], queue.Items[1].ID)

	rec = ts.do(t, http.MethodDelete, "/api/items/"+ids[0], nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	queueRec = ts.do(t, http.MethodGet, "/api/queue", nil, "")
	queue = decodeResponse[QueueResponse](t, queueRec)
	assert.Len(t, queue.Items, 1)
}

func TestRefineItem(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "A lighthouse at dusk")
	ts.completeItem(t, ids[0])

	rec := ts.doJSON(t, http.MethodPost, "/api/items/"+ids[0]+"/refine",
		RefineRequest{Instruction: "more dramatic clouds"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	item := decodeResponse[ItemResponse](t, rec)
	assert.NotEqual(t, ids[0], item.ID)
	assert.Equal(t, "image_transform", item.Kind)
	assert.Equal(t, "generating", item.Status)
	require.NotNil(t, item.Source)

	// The original item is gone.
	getRec := ts.do(t, http.MethodGet, "/api/items/"+ids[0], nil, "")
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestSelectionEndpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ids := ts.enqueueItems(t, "First prompt text; Second prompt text; Third prompt text")

	rec := ts.do(t, http.MethodGet, "/api/selection", nil, "")
	sel := decodeResponse[SelectionResponse](t, rec)
	assert.Equal(t, ids[0], sel.SelectedID)
	assert.Equal(t, 0, sel.Index)
	assert.Equal(t, 3, sel.Total)

	rec = ts.doJSON(t, http.MethodPost, "/api/selection/next", nil)
	sel = decodeResponse[SelectionResponse](t, rec)
	assert.Equal(t, ids[1], sel.SelectedID)
	assert.Equal(t, 1, sel.Index)

	rec = ts.doJSON(t, http.MethodPost, "/api/selection",
		SetSelectionRequest{ID: ids[2]})
	require.Equal(t, http.StatusOK, rec.Code)
	sel = decodeResponse[SelectionResponse](t, rec)
	assert.Equal(t, ids[2], sel.SelectedID)

	// Next clamps at the end.
	rec = ts.doJSON(t, http.MethodPost, "/api/selection/next", nil)
	sel = decodeResponse[SelectionResponse](t, rec)
	assert.Equal(t, ids[2], sel.SelectedID)

	rec = ts.doJSON(t, http.MethodPost, "/api/selection/previous", nil)
	sel = decodeResponse[SelectionResponse](t, rec)
	assert.Equal(t, ids[1], sel.SelectedID)

	// Selecting an unknown item is a 404.
	rec = ts.doJSON(t, http.MethodPost, "/api/selection",
		SetSelectionRequest{ID: "00000000-0000-0000-0000-000000000001"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Item-scoped select endpoint.
	rec = ts.doJSON(t, http.MethodPost, "/api/items/"+ids[0]+"/select", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetLogs(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.enqueueItems(t, "A lighthouse at dusk")

	rec := ts.do(t, http.MethodGet, "/api/logs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decodeResponse[[]ActivityEntryResponse](t, rec)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1].Message, "Submitted")
}

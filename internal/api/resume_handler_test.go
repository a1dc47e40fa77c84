package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/tasks"
)

func TestSaveResume(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t, "user-1")
	ts.do(t, http.MethodPut, "/v1/sessions/"+id+"/profile/fullName", "user-1", `{"value":"Ada Lovelace"}`)

	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "user-1", `{"name":"Engineering CV"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved savedResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "Engineering CV", saved.Name)
	assert.True(t, saved.PreviewPending)

	require.Len(t, ts.queue.tasks, 1)
	payload, err := tasks.ParsePreviewRenderPayload(ts.queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, saved.ID, payload.ResumeID)
	assert.Equal(t, uint(1), payload.OwnerID)
	assert.NotEmpty(t, payload.CorrelationID)

	rec, err := ts.store.Get(context.Background(), 1, saved.ID)
	require.NoError(t, err)
	assert.Contains(t, string(rec.Data), `"fullName":"Ada Lovelace"`)
	assert.Contains(t, string(rec.Data), `"template":"modern"`)
}

func TestSaveResume_Rejections(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t, "user-1")

	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "user-1", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "", `{"name":"CV"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/sessions/missing/save", "user-1", `{"name":"CV"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, ts.queue.tasks)
}

func TestSaveResume_EnqueueFailureStillSaves(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.queue.err = errors.New("redis down")
	id := ts.createSession(t, "user-1")

	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "user-1", `{"name":"CV"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var saved savedResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.False(t, saved.PreviewPending)

	records, err := ts.store.ListByOwner(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestListAndLoadResumes(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t, "user-1")

	ts.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields/summary", "user-1", `{"value":"first"}`)
	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "user-1", `{"name":"v1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var first savedResumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	ts.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields/summary", "user-1", `{"value":"second"}`)
	w = ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/save", "user-1", `{"name":"v2"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// 只有第一份已生成预览页。
	ts.objects.objects[tasks.PreviewObjectKey(1, first.ID)] = []byte("<html></html>")

	w = ts.do(t, http.MethodGet, "/v1/resumes", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []resumeListItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 2)
	assert.Equal(t, "v2", list.Items[0].Name)
	assert.Empty(t, list.Items[0].PreviewURL)
	assert.Equal(t, "v1", list.Items[1].Name)
	assert.Equal(t, "https://signed.example.test/resume-previews/1/"+uintString(first.ID)+".html", list.Items[1].PreviewURL)

	w = ts.do(t, http.MethodGet, "/v1/resumes", "user-2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	fresh := ts.createSession(t, "user-1")
	w = ts.do(t, http.MethodPost, "/v1/sessions/"+fresh+"/load/"+uintString(first.ID), "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	loaded := decodeSession(t, w)
	assert.Equal(t, "first", loaded.Document.Summary)
	assert.Equal(t, first.ID, loaded.LoadedFrom)

	w = ts.do(t, http.MethodPost, "/v1/sessions/"+fresh+"/load/"+uintString(first.ID), "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetResume(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	good, err := ts.store.Insert(ctx, persistence.Record{OwnerID: 1, Name: "legacy", Data: []byte(`{"fullName":"Old","design":"classic"}`)})
	require.NoError(t, err)
	corrupt, err := ts.store.Insert(ctx, persistence.Record{OwnerID: 1, Name: "broken", Data: []byte(`[1,2,3]`)})
	require.NoError(t, err)

	w := ts.do(t, http.MethodGet, "/v1/resumes/"+uintString(good.ID), "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp resumeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Old", resp.Document.FullName)
	assert.Equal(t, "classic", string(resp.Document.Template))

	w = ts.do(t, http.MethodGet, "/v1/resumes/"+uintString(corrupt.ID), "user-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/resumes/"+uintString(good.ID), "user-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/v1/resumes/zero", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

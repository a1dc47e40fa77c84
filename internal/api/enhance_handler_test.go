package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhanceSession_WritesBackSummary(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t, "user-1")
	ts.do(t, http.MethodPut, "/v1/sessions/"+id+"/fields/summary", "user-1", `{"value":"i write code"}`)
	ts.enhancer.result = "  Software engineer focused on reliable backend systems.  "

	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", "user-1", `{"kind":"summary"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "i write code", resp.Original)
	assert.Equal(t, "  Software engineer focused on reliable backend systems.  ", resp.Improved)
	assert.Equal(t, resp.Improved, resp.Session.Document.Summary)
	assert.Equal(t, []string{"summary:i write code"}, ts.enhancer.calls)
}

func TestEnhanceSession_Failures(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createSession(t, "user-1")
	ts.do(t, http.MethodPut, "/v1/sessions/"+id+"/lists/experience/0", "user-1", `{"value":"did stuff"}`)

	ts.enhancer.err = errors.New("upstream 500")
	w := ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", "user-1", `{"kind":"experience","index":0}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	ts.enhancer.err = nil
	ts.enhancer.result = "   "
	w = ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", "user-1", `{"kind":"experience","index":0}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", "user-1", `{"kind":"experience","index":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/sessions/"+id+"/enhance", "user-1", `{"kind":"hobbies"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown enhance kind")

	w = ts.do(t, http.MethodGet, "/v1/sessions/"+id, "user-1", nil)
	assert.Equal(t, []string{"did stuff"}, decodeSession(t, w).Document.Experience)
}

func TestEnhanceContent(t *testing.T) {
	ts := newTestServer(t, nil)

	ts.enhancer.result = "Improved text\n"
	w := ts.do(t, http.MethodPost, "/v1/enhance-content", "user-1", `{"content":"text","type":"skills"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"improved":"Improved text\n"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/v1/enhance-content", "user-1", `{"content":"   ","type":"skills"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/v1/enhance-content", "user-1", `{"content":"text","type":"poem"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.enhancer.err = errors.New("quota exceeded")
	w = ts.do(t, http.MethodPost, "/v1/enhance-content", "user-1", `{"content":"text","type":"summary"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to enhance content"}`, w.Body.String())
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func TestEnhanceHandler_RateLimit(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	h := NewEnhanceHandler(nil, &fakeEnhancer{}, counter, 2, 0, nil)

	ctx := context.Background()
	assert.True(t, h.allow(ctx, 1))
	assert.True(t, h.allow(ctx, 1))
	assert.False(t, h.allow(ctx, 1))
	assert.True(t, h.allow(ctx, 2), "limits are per user")

	down := NewEnhanceHandler(nil, &fakeEnhancer{}, &fakeCounter{err: errors.New("redis down")}, 2, 0, nil)
	assert.True(t, down.allow(ctx, 1), "counter failures do not block")
}

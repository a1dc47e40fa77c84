package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeBuilder/internal/auth"
	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/enhance"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/session"
)

// 测试令牌：user-<n> 对应用户 n。
type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*auth.TokenClaims, error) {
	switch token {
	case "user-1":
		return &auth.TokenClaims{UserID: 1, TokenType: auth.TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"}}, nil
	case "user-2":
		return &auth.TokenClaims{UserID: 2, TokenType: auth.TokenTypeAccess, RegisteredClaims: jwt.RegisteredClaims{ID: "jti-2"}}, nil
	default:
		return nil, errors.New("invalid token")
	}
}

type fakeBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (b *fakeBlacklist) Revoke(_ context.Context, claims *auth.TokenClaims) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.revoked == nil {
		b.revoked = map[string]bool{}
	}
	b.revoked[claims.ID] = true
	return nil
}

func (b *fakeBlacklist) IsRevoked(_ context.Context, claims *auth.TokenClaims) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[claims.ID], nil
}

type fakeEnhancer struct {
	result string
	err    error
	calls  []string
}

func (f *fakeEnhancer) Enhance(_ context.Context, text string, kind enhance.Kind) (string, error) {
	f.calls = append(f.calls, string(kind)+":"+text)
	return f.result, f.err
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

// fakeObjects 同时充当头像存储与预览链接生成。
type fakeObjects struct {
	objects map[string][]byte
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	f.objects[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeObjects) ObjectURL(objectKey string) string {
	return "https://cdn.example.test/resumes/" + objectKey
}

func (f *fakeObjects) DeleteObject(_ context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	delete(f.objects, objectKey)
	return nil
}

func (f *fakeObjects) ObjectExists(_ context.Context, objectKey string) (bool, error) {
	_, ok := f.objects[objectKey]
	return ok, nil
}

func (f *fakeObjects) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://signed.example.test/" + objectKey, nil
}

type fakeScanner struct{ err error }

func (f fakeScanner) Scan(r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	return f.err
}

type testServer struct {
	router    *gin.Engine
	sessions  *session.Registry
	store     *persistence.GormStore
	enhancer  *fakeEnhancer
	queue     *fakeQueue
	objects   *fakeObjects
	blacklist *fakeBlacklist
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:api_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Enhance: config.EnhanceConfig{Timeout: 5 * time.Second},
		Upload:  config.UploadConfig{MaxBytes: 1 << 20},
		Worker:  config.WorkerConfig{MaxRetry: 3, PreviewURLTTL: time.Minute},
	}
}

func newTestServer(t *testing.T, scanner VirusScanner) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		sessions:  session.NewRegistry(time.Hour, 0, logger),
		store:     persistence.NewGormStore(newTestDB(t)),
		enhancer:  &fakeEnhancer{},
		queue:     &fakeQueue{},
		objects:   newFakeObjects(),
		blacklist: &fakeBlacklist{},
	}

	ts.router = NewRouter(logger)
	RegisterRoutes(ts.router, Dependencies{
		Config:    testConfig(),
		Logger:    logger,
		Sessions:  ts.sessions,
		Resumes:   persistence.NewAdapter(ts.store),
		Enhancer:  ts.enhancer,
		Auth:      fakeValidator{},
		Blacklist: ts.blacklist,
		Queue:     ts.queue,
		Images:    ts.objects,
		Previews:  ts.objects,
		Scanner:   scanner,
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// createSession 新建会话并返回其 id。
func (ts *testServer) createSession(t *testing.T, token string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/v1/sessions", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionResponse {
	t.Helper()
	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

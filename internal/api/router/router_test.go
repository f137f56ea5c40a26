package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-router/config"
	"student-router/internal/api/handler"
	"student-router/internal/api/middleware"
	"student-router/internal/assignment"
	"student-router/internal/repository"
	"student-router/internal/service"
	"student-router/pkg/badgerdb"
	"student-router/pkg/jwt"
	"student-router/pkg/metrics"
)

const testPassword = "correct horse"

// newTestServer 完整装配：内存 BadgerDB + 真实 Service / Handler / 中间件
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080, BodyLimit: 1 << 20, CORS: config.CORSConfig{AllowOrigins: []string{"*"}}},
		Auth: config.AuthConfig{
			JWTSecret:         "router-test-secret-key",
			AccessTokenTTL:    time.Hour,
			AdminUser:         "admin",
			AdminPasswordHash: string(hash),
		},
		Schedule: config.ScheduleConfig{
			Capacities: config.CapacityConfig{
				Class:       map[string]int{"sparta": 1, "athens": 40},
				Recitations: map[string]int{"corinth": 40, "thebes": 40},
				TA:          map[string]int{"woods": 16},
			},
			Recitations: map[string]config.RecitationSection{
				"corinth": {Day: "A"},
				"thebes":  {Day: "B"},
			},
		},
	}

	db, err := badgerdb.Open(&config.BadgerConfig{InMemory: true}, nil)
	require.NoError(t, err)
	repo := repository.NewRepository(repository.NewStudentBadgerRepo(db), db.Close)
	t.Cleanup(func() { _ = repo.Close() })

	sched, err := assignment.NewSchedule(cfg.Schedule)
	require.NoError(t, err)
	engine := assignment.NewEngine(sched)

	logger := zap.NewNop()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New(nil)
	svc := service.NewService(cfg, repo, engine, jwtMgr, nil, m, logger)
	auth := middleware.NewAuthenticator(jwtMgr, nil, logger)
	h := handler.NewHandler(svc, auth.Authenticate)

	r, err := Setup(cfg, h, auth, nil, m, logger)
	require.NoError(t, err)
	return r
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func spartaOnly(id string) string {
	return `{"id":"` + id + `","availability":{"class":["sparta"],"recitations":["corinth","thebes"],"ta":["woods"]}}`
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := do(r, "POST", "/api/v1/admin/login", `{"username":"admin","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func TestRouter_SpartaScenario(t *testing.T) {
	r := newTestServer(t)

	// 容量 1：第 1、2 人成功（软超额 1），第 3 人 class 不可行
	for _, id := range []string{"s1", "s2"} {
		w := do(r, "POST", "/api/v1/assign", spartaOnly(id), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Contains(t, w.Body.String(), `"class":"sparta"`)
		require.Contains(t, w.Body.String(), `"created":true`)
	}

	w := do(r, "POST", "/api/v1/assign", spartaOnly("s3"), "")
	require.Equal(t, http.StatusConflict, w.Code)
	require.JSONEq(t, `{"ok":false,"reason":"no_feasible","details":{"where":"class"}}`, w.Body.String())

	// 重复提交返回原分配
	w = do(r, "POST", "/api/v1/assign", `{"id":" S1 ","availability":{"class":["athens"]}}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"created":false`)
	require.Contains(t, w.Body.String(), `"class":"sparta"`)

	w = do(r, "GET", "/api/v1/counts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var counts assignment.Counts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &counts))
	require.Equal(t, 2, counts.Class["sparta"])
	require.Equal(t, 2, counts.Recitations["corinth"])
}

func TestRouter_AdminFlow(t *testing.T) {
	r := newTestServer(t)

	w := do(r, "POST", "/api/v1/assign", spartaOnly("alice"), "")
	require.Equal(t, http.StatusOK, w.Code)

	// 未认证访问管理端
	require.Equal(t, http.StatusUnauthorized, do(r, "GET", "/api/v1/admin/roster", "", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(r, "GET", "/api?action=roster", "", "").Code)

	// 错误密码
	w = do(r, "POST", "/api/v1/admin/login", `{"username":"admin","password":"nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, r)

	w = do(r, "GET", "/api/v1/admin/roster", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":"alice"`)

	w = do(r, "GET", "/api?action=roster", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, "PATCH", "/api/v1/admin/students/alice", `{"locked":true,"notes":"checked"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"locked":true`)

	w = do(r, "GET", "/api/v1/admin/audit", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"total":1,"violations":[]}`, w.Body.String())

	w = do(r, "GET", "/api/v1/admin/export", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotZero(t, w.Body.Len())

	w = do(r, "DELETE", "/api/v1/admin/students/alice", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = do(r, "DELETE", "/api/v1/admin/students/alice", "", token)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "GET", "/api/v1/counts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "sparta")

	// 删除后可重新分配
	w = do(r, "POST", "/api/v1/assign", spartaOnly("alice"), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"created":true`)
}

func TestRouter_ActionDispatchDelete(t *testing.T) {
	r := newTestServer(t)
	token := login(t, r)

	w := do(r, "POST", "/api?action=assign", spartaOnly("bob"), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, "POST", "/api?action=delete", `{"id":"bob"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "POST", "/api?action=delete", `{"id":"bob"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_OpsEndpoints(t *testing.T) {
	r := newTestServer(t)

	w := do(r, "GET", "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	do(r, "GET", "/api/v1/schedule", "", "")
	w = do(r, "GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "student_router_http_requests_total")
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

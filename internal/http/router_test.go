package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/examgenius-backend/internal/data/cache"
	"github.com/yungbote/examgenius-backend/internal/data/repos"
	"github.com/yungbote/examgenius-backend/internal/data/repos/testutil"
	types "github.com/yungbote/examgenius-backend/internal/domain"
	httpH "github.com/yungbote/examgenius-backend/internal/http/handlers"
	httpMW "github.com/yungbote/examgenius-backend/internal/http/middleware"
	"github.com/yungbote/examgenius-backend/internal/services"
)

type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newAPI(t *testing.T, opts ...func(*RouterConfig)) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	topicRepo := repos.NewTopicRepo(db, log)
	questionRepo := repos.NewQuestionRepo(db, log)
	sectionRepo := repos.NewSectionRepo(db, log)
	testRepo := repos.NewTestRepo(db, log)
	attemptRepo := repos.NewAttemptRepo(db, log)
	answerRepo := repos.NewAnswerRepo(db, log)

	authService := services.NewAuthService(db, log, userRepo, services.AuthConfig{
		JWTSecretKey: "router-secret",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
	}, nil)
	catalog := services.NewCatalogService(db, log, testRepo, attemptRepo, cache.NewMemory(), time.Minute)
	attempts := services.NewAttemptService(db, log, testRepo, attemptRepo, answerRepo, services.TimingConfig{}, nil)
	admin := services.NewAdminService(db, log, userRepo, topicRepo, questionRepo, sectionRepo, testRepo, attemptRepo, answerRepo, catalog)

	rc := RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService),
		AuthLimiter:    httpMW.NewRateLimiter(log, httpMW.RateLimitConfig{Name: "auth", Window: time.Minute, Max: 5, Message: "slow down"}),
		HealthHandler:  httpH.NewHealthHandler(nil),
		AuthHandler:    httpH.NewAuthHandler(authService),
		UserHandler:    httpH.NewUserHandler(services.NewUserService(db, log, userRepo)),
		TestHandler:    httpH.NewTestHandler(catalog),
		AttemptHandler: httpH.NewAttemptHandler(attempts),
		AdminHandler:   httpH.NewAdminHandler(admin),
	}
	for _, opt := range opts {
		opt(&rc)
	}
	return &apiFixture{db: db, router: NewRouter(rc)}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doWithHeaders(t, method, path, token, body, nil)
}

func (f *apiFixture) doWithHeaders(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func (f *apiFixture) register(t *testing.T, email string) string {
	t.Helper()
	rec := f.do(t, nethttp.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     "Router User",
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != nethttp.StatusCreated {
		t.Fatalf("register: got=%d body=%s", rec.Code, rec.Body.String())
	}
	return decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

func (f *apiFixture) login(t *testing.T, email string) string {
	t.Helper()
	rec := f.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret123"})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("login: got=%d body=%s", rec.Code, rec.Body.String())
	}
	return decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

func TestHealthRoutes(t *testing.T) {
	f := newAPI(t)
	for _, path := range []string{"/healthcheck", "/health", "/api/health"} {
		rec := f.do(t, nethttp.MethodGet, path, "", nil)
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("%s: got=%d", path, rec.Code)
		}
		body := decode[map[string]any](t, rec)
		require.Equal(t, "OK", body["status"])
		require.Equal(t, "connected", body["database"])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPI(t)

	rec := f.do(t, nethttp.MethodGet, "/api/tests", "", nil)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	body := decode[map[string]string](t, rec)
	require.Equal(t, "no_token", body["code"])
	require.NotEmpty(t, body["error"])

	rec = f.do(t, nethttp.MethodGet, "/api/tests", "garbage", nil)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decode[map[string]string](t, rec)["code"])
}

func TestAttemptFlowOverHTTP(t *testing.T) {
	f := newAPI(t)
	token := f.register(t, "flow@example.com")
	test, qs := testutil.SeedTest(t, context.Background(), f.db, "HTTP Basics", 2)

	rec := f.do(t, nethttp.MethodGet, "/api/tests", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	listed := decode[struct {
		Tests []map[string]any `json:"tests"`
	}](t, rec)
	require.Len(t, listed.Tests, 1)

	rec = f.do(t, nethttp.MethodPost, "/api/attempts", token, map[string]any{"test_id": test.ID})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	started := decode[services.StartedAttempt](t, rec)
	require.Equal(t, 2, started.TotalQuestions)
	for _, q := range started.Questions {
		require.Empty(t, q.CorrectOption)
	}

	path := "/api/attempts/" + started.AttemptID.String()
	rec = f.do(t, nethttp.MethodPost, path+"/answer", token, map[string]any{
		"question_id": qs[0].ID, "selected_option": "A", "time_taken_seconds": 5,
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	require.True(t, decode[services.SubmitResult](t, rec).IsCorrect)

	rec = f.do(t, nethttp.MethodPost, path+"/answer", token, map[string]any{
		"question_id": qs[1].ID, "selected_option": "Z",
	})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	require.Equal(t, "validation_error", decode[map[string]string](t, rec)["code"])

	rec = f.do(t, nethttp.MethodPost, path+"/finish", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	finished := decode[struct {
		Score      float64 `json:"score"`
		Status     string  `json:"status"`
		Statistics struct {
			TotalQuestions int     `json:"total_questions"`
			Correct        int     `json:"correct_answers"`
			Unanswered     int     `json:"unanswered"`
			TotalMarks     float64 `json:"total_marks"`
		} `json:"statistics"`
	}](t, rec)
	require.Equal(t, types.AttemptCompleted, finished.Status)
	require.Equal(t, 50.0, finished.Score)
	require.Equal(t, 2, finished.Statistics.TotalQuestions)
	require.Equal(t, 1, finished.Statistics.Correct)
	require.Equal(t, 1, finished.Statistics.Unanswered)
	require.Equal(t, 1.0, finished.Statistics.TotalMarks)

	rec = f.do(t, nethttp.MethodGet, path+"/report", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = f.do(t, nethttp.MethodGet, "/api/attempts/not-a-uuid/report", token, nil)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = f.do(t, nethttp.MethodGet, "/api/attempts", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	list := decode[struct {
		Attempts []map[string]any `json:"attempts"`
	}](t, rec)
	require.Len(t, list.Attempts, 1)
}

func TestAdminRoutes(t *testing.T) {
	f := newAPI(t)
	userToken := f.register(t, "plain@example.com")
	f.register(t, "boss@example.com")
	if err := f.db.Model(&types.User{}).Where("email = ?", "boss@example.com").Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}
	adminToken := f.login(t, "boss@example.com")

	rec := f.do(t, nethttp.MethodGet, "/api/admin/topics", userToken, nil)
	require.Equal(t, nethttp.StatusForbidden, rec.Code)
	require.Equal(t, "forbidden", decode[map[string]string](t, rec)["code"])

	upload := []map[string]any{
		{"topic": "Go", "question_text": "What is a goroutine?", "options": map[string]string{"A": "thread", "B": "fn", "C": "chan", "D": "lock"}, "correct_option": "A"},
		{"topic": "SQL", "question_text": "What is an index?", "options": map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}, "correct_option": "c"},
	}
	rec = f.do(t, nethttp.MethodPost, "/api/admin/questions/upload", adminToken, upload)
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	uploaded := decode[struct {
		Count     int                         `json:"count"`
		Questions []services.UploadedQuestion `json:"questions"`
	}](t, rec)
	require.Equal(t, 2, uploaded.Count)

	rec = f.do(t, nethttp.MethodPost, "/api/admin/questions/upload", adminToken, map[string]string{"not": "an array"})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = f.do(t, nethttp.MethodGet, "/api/admin/topics", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	topics := decode[struct {
		Topics []map[string]any `json:"topics"`
	}](t, rec)
	require.Len(t, topics.Topics, 2)

	rec = f.do(t, nethttp.MethodGet, "/api/admin/questions?topic_id=nope", adminToken, nil)
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = f.do(t, nethttp.MethodGet, "/api/admin/questions?limit=1", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	page := decode[services.QuestionPage](t, rec)
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Questions, 1)

	rec = f.do(t, nethttp.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	f := newAPI(t)
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = f.do(t, nethttp.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "whatever"})
	}
	require.Equal(t, nethttp.StatusTooManyRequests, last.Code)
	body := decode[httpMW.RateLimitBody](t, last)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", body.Type)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestAuthRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	loginCodes := func(f *apiFixture) []int {
		codes := make([]int, 0, 8)
		for i := 0; i < 8; i++ {
			rec := f.doWithHeaders(t, nethttp.MethodPost, "/api/auth/login", "",
				map[string]string{"email": "nobody@example.com", "password": "whatever"},
				map[string]string{"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i+1)})
			codes = append(codes, rec.Code)
		}
		return codes
	}

	codes := loginCodes(newAPI(t))
	require.Equal(t, nethttp.StatusTooManyRequests, codes[5], "codes=%v", codes)
	require.Equal(t, nethttp.StatusTooManyRequests, codes[7], "codes=%v", codes)

	// httptest requests arrive from 192.0.2.1; trusting it makes each forwarded client distinct.
	codes = loginCodes(newAPI(t, func(rc *RouterConfig) {
		rc.TrustedProxies = []string{"192.0.2.0/24"}
	}))
	require.NotContains(t, codes, nethttp.StatusTooManyRequests)
}

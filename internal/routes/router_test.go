package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buddhist-lent/pledgeboard/internal/api"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/config"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/metrics"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/services"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	handler http.Handler
	deps    *api.Dependencies
	store   *storage.LocalStore
}

func newServer(t *testing.T) *server {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, err := db.WrapORM(gdb)
	require.NoError(t, err)

	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:                 "test",
		ListCacheTTL:           time.Minute,
		JWTSecret:              "test-secret",
		TokenTTL:               time.Hour,
		SessionTTL:             time.Hour,
		ResetTTL:               time.Hour,
		CookieName:             "session_id",
		AppBaseURL:             "https://lent.example",
		CORSOrigins:            []string{"https://lent.example"},
		AuthRatePerSecond:      100,
		AuthRateBurst:          100,
		UploadURLPath:          "/uploads",
		MaxImageSide:           64,
		MaxUploadBytes:         1 << 20,
		DashboardInMemoryLimit: 5000,
		OrphanSweepInterval:    time.Hour,
		OrphanGracePeriod:      time.Hour,
	}

	deps, err := api.InitDependencies(cfg, api.Infrastructure{
		DB:      gdb,
		SQL:     sqlDB,
		Cache:   common.NewCacheService(time.Minute, time.Minute),
		Store:   store,
		Mailer:  services.LogMailer{},
		Metrics: metrics.NewMetricsRegistry(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	return &server{handler: NewRouter(deps, time.Now()), deps: deps, store: store}
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	cookie      *http.Cookie
}

func (s *server) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(req.method, req.path, req.body)
	if req.contentType != "" {
		r.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

func (s *server) json(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	return s.do(t, request{method: method, path: path, body: rdr, contentType: "application/json", token: token})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *server) seedUser(t *testing.T, email string, role constants.Role) *gormModels.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &gormModels.User{Name: email, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, s.deps.Repo.Users.Create(context.Background(), u))
	return u
}

func (s *server) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.json(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (s *server) seedGroup(t *testing.T, name string) *gormModels.Group {
	t.Helper()
	g := &gormModels.Group{Name: name}
	require.NoError(t, s.deps.Repo.Groups.Create(context.Background(), g))
	return g
}

func participantBody(first string, groupID uint) map[string]any {
	return map[string]any{
		"prefix":             "นาย",
		"firstName":          first,
		"lastName":           "Jaidee",
		"birthday":           "1985-04-13",
		"province":           "Bangkok",
		"phoneNumber":        "0812345678",
		"alcoholConsumption": string(constants.ConsumptionNeverDrank),
		"groupId":            groupID,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	img.Set(2, 2, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func formReturnMultipart(t *testing.T, phone string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"organizationName": "Wat Phra Singh",
		"organizationType": "temple",
		"firstName":        "Anan",
		"lastName":         "Saetang",
		"province":         "Chiang Mai",
		"phoneNumber":      phone,
		"signerCount":      "12",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, name := range []string{"image1", "image2"} {
		fw, err := mw.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write(pngBytes(t))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/v1/participants", "/api/v1/me", "/api/v1/users", "/api/v1/dashboard/summary"} {
		rec := s.do(t, request{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, request{method: http.MethodGet, path: "/api/v1/participants", token: "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/groups"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_SessionCookieLoginAndLogout(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "member@example.com", constants.RoleMember)

	rec := s.json(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "member@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/me", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, rec, &me)
	assert.Equal(t, "member@example.com", me.Email)
	assert.Equal(t, "member", me.Role)

	rec = s.do(t, request{method: http.MethodPost, path: "/api/v1/auth/logout", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/me", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginWithWrongPassword(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "member@example.com", constants.RoleMember)

	rec := s.json(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "member@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, constants.MsgInvalidCredentials, env.Message)
}

func TestRouter_FormReturnWithNineDigitPhoneIsRejected(t *testing.T) {
	s := newServer(t)

	body, contentType := formReturnMultipart(t, "053123456")
	rec := s.do(t, request{method: http.MethodPost, path: "/api/v1/form-returns", body: body, contentType: contentType})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var data api.ErrorData
	decode(t, rec, &data)
	assert.Equal(t, constants.ErrCodeValidation, data.Code)
	assert.True(t, data.Fields.Has("phoneNumber"))

	count, err := s.deps.Repo.FormReturns.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	objs, err := s.store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, objs)
}

func TestRouter_FormReturnImagesAreServed(t *testing.T) {
	s := newServer(t)

	body, contentType := formReturnMultipart(t, "0531234567")
	rec := s.do(t, request{method: http.MethodPost, path: "/api/v1/form-returns", body: body, contentType: contentType})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Image1URL string `json:"image1Url"`
	}
	decode(t, rec, &created)
	require.True(t, strings.HasPrefix(created.Image1URL, "/uploads/form-returns/"), created.Image1URL)

	rec = s.do(t, request{method: http.MethodGet, path: created.Image1URL})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = s.do(t, request{method: http.MethodGet, path: "/uploads/form-returns/"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdminRoleToggle(t *testing.T) {
	s := newServer(t)
	admin := s.seedUser(t, "admin@example.com", constants.RoleAdmin)
	target := s.seedUser(t, "target@example.com", constants.RoleMember)
	s.seedUser(t, "member@example.com", constants.RoleMember)

	adminToken := s.login(t, "admin@example.com")
	memberToken := s.login(t, "member@example.com")

	rec := s.json(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/%d/role", target.ID), adminToken, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Role string `json:"role"`
	}
	decode(t, rec, &updated)
	assert.Equal(t, "admin", updated.Role)

	rec = s.json(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/%d/role", admin.ID), memberToken, map[string]string{"role": "member"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := s.deps.Repo.Users.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleAdmin, stored.Role)

	rec = s.json(t, http.MethodPatch, fmt.Sprintf("/api/v1/users/%d/role", admin.ID), adminToken, map[string]string{"role": "member"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_GroupDeleteBlockedWhileInUse(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@example.com", constants.RoleAdmin)
	token := s.login(t, "admin@example.com")

	rec := s.json(t, http.MethodPost, "/api/v1/groups", token, map[string]string{"name": "Wat Suthat"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var group struct {
		ID uint `json:"id"`
	}
	decode(t, rec, &group)

	rec = s.json(t, http.MethodPost, "/api/v1/participants", "", participantBody("Somchai", group.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.json(t, http.MethodDelete, fmt.Sprintf("/api/v1/groups/%d", group.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var data api.ErrorData
	env := decode(t, rec, &data)
	assert.Equal(t, constants.ErrCodeGroupInUse, data.Code)
	assert.Equal(t, constants.MsgGroupInUse, env.Message)

	rec = s.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/v1/groups/%d", group.ID)})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ParticipantSearchSecondPage(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "member@example.com", constants.RoleMember)
	token := s.login(t, "member@example.com")
	g := s.seedGroup(t, "Temple")

	var somchaiIDs []uint
	for i := 0; i < 25; i++ {
		rec := s.json(t, http.MethodPost, "/api/v1/participants", "", participantBody("Somchai", g.ID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var p struct {
			ID uint `json:"id"`
		}
		decode(t, rec, &p)
		somchaiIDs = append(somchaiIDs, p.ID)
	}
	for i := 0; i < 5; i++ {
		rec := s.json(t, http.MethodPost, "/api/v1/participants", "", participantBody("Malee", g.ID))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(t, request{
		method: http.MethodGet,
		path:   "/api/v1/participants?search=Somchai&page=2&limit=10&sort=firstName&order=asc",
		token:  token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list struct {
		Items []struct {
			ID        uint   `json:"id"`
			FirstName string `json:"firstName"`
		} `json:"items"`
		Pagination struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			TotalItems int64 `json:"totalItems"`
			TotalPages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	decode(t, rec, &list)

	assert.EqualValues(t, 25, list.Pagination.TotalItems)
	assert.Equal(t, 2, list.Pagination.Page)
	assert.Equal(t, 10, list.Pagination.Limit)
	assert.Equal(t, 3, list.Pagination.TotalPages)
	require.Len(t, list.Items, 10)

	got := make([]uint, len(list.Items))
	for i, item := range list.Items {
		assert.Equal(t, "Somchai", item.FirstName)
		got[i] = item.ID
	}
	assert.Equal(t, somchaiIDs[10:20], got)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/participants?page=abc", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ExportSelectedParticipants(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "member@example.com", constants.RoleMember)
	token := s.login(t, "member@example.com")
	g := s.seedGroup(t, "Temple")

	var ids []uint
	for _, name := range []string{"Somchai", "Malee", "Niran"} {
		rec := s.json(t, http.MethodPost, "/api/v1/participants", "", participantBody(name, g.ID))
		require.Equal(t, http.StatusCreated, rec.Code)
		var p struct {
			ID uint `json:"id"`
		}
		decode(t, rec, &p)
		ids = append(ids, p.ID)
	}

	rec := s.do(t, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/participants/export?format=csv&ids=%d", ids[1]),
		token:  token,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")

	body := strings.TrimPrefix(rec.Body.String(), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Malee")

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/participants/export?format=pdf", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/groups/export", token: token})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_HealthCheck(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, request{method: http.MethodGet, path: "/healthCheck"})
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status   string                    `json:"status"`
		Services map[string]map[string]any `json:"services"`
	}
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Contains(t, health.Services, "database")
	assert.Contains(t, health.Services, "cache")
}

func TestRouter_AdminJobs(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "admin@example.com", constants.RoleAdmin)
	token := s.login(t, "admin@example.com")

	rec := s.json(t, http.MethodPost, "/api/v1/admin/jobs/sweep-orphans", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/admin/jobs/status", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		Jobs []struct {
			Name    string     `json:"name"`
			LastRun *time.Time `json:"lastRun"`
		} `json:"jobs"`
	}
	decode(t, rec, &status)
	require.Len(t, status.Jobs, 2)
	assert.Equal(t, "orphan_sweep", status.Jobs[0].Name)
	assert.NotNil(t, status.Jobs[0].LastRun)
}

func TestRouter_MalformedBodiesGetFixedMessages(t *testing.T) {
	s := newServer(t)

	truncated := "--xyz\r\nContent-Disposition: form-data; name=\"organizationName\"\r\n\r\nWat"
	rec := s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/form-returns",
		body:        strings.NewReader(truncated),
		contentType: "multipart/form-data; boundary=xyz",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec, nil)
	assert.Equal(t, "Malformed multipart body", env.Message)
	assert.NotContains(t, rec.Body.String(), "multipart:")
	assert.NotContains(t, rec.Body.String(), "EOF")

	rec = s.do(t, request{
		method:      http.MethodPost,
		path:        "/api/v1/participants",
		body:        strings.NewReader(`{"firstName": `),
		contentType: "application/json",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decode(t, rec, nil)
	assert.Equal(t, "Malformed JSON body", env.Message)
	assert.NotContains(t, rec.Body.String(), "unexpected")

	s.seedUser(t, "member@example.com", constants.RoleMember)
	token := s.login(t, "member@example.com")
	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/participants/abc", token: token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `invalid id "abc"`, decode(t, rec, nil).Message)
}

func TestRouter_DashboardFilters(t *testing.T) {
	s := newServer(t)
	s.seedUser(t, "member@example.com", constants.RoleMember)
	token := s.login(t, "member@example.com")
	temple := s.seedGroup(t, "Temple")
	school := s.seedGroup(t, "School")

	for i, g := range []uint{temple.ID, temple.ID, school.ID} {
		rec := s.json(t, http.MethodPost, "/api/v1/participants", "", participantBody(fmt.Sprintf("Somchai%d", i), g))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var out struct {
		Total   int64 `json:"total"`
		ByGroup []struct {
			Label string `json:"label"`
			Count int64  `json:"count"`
		} `json:"byGroup"`
	}
	rec := s.do(t, request{method: http.MethodGet, path: "/api/v1/dashboard/participants", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.EqualValues(t, 3, out.Total)

	rec = s.do(t, request{method: http.MethodGet, path: fmt.Sprintf("/api/v1/dashboard/participants?groupId=%d", school.ID), token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &out)
	assert.EqualValues(t, 1, out.Total)
	require.Len(t, out.ByGroup, 1)
	assert.Equal(t, "School", out.ByGroup[0].Label)

	rec = s.do(t, request{method: http.MethodGet, path: "/api/v1/dashboard/participants?groupId=abc", token: token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

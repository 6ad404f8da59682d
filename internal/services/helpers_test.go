package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"buddhist-lent/pledgeboard/internal/aggregate"
	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/metrics"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type testEnv struct {
	db       *gorm.DB
	store    *storage.LocalStore
	cache    *common.ListCache
	mailer   *fakeMailer
	metrics  *metrics.MetricsRegistry
	repos    testRepos
	auth     *AuthService
	users    *UserService
	people   *ParticipantService
	forms    *FormReturnService
	groups   *GroupService
	uploader *storage.Uploader
}

type testRepos struct {
	users        *repositories.UserRepository
	groups       *repositories.GroupRepository
	participants *repositories.ParticipantRepository
	forms        *repositories.FormReturnRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	store, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	cacheSvc := common.NewCacheService(time.Minute, time.Minute)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	listCache := common.NewListCache(cacheSvc, time.Minute, reg)
	uploader := storage.NewUploader(store, 64)
	mailer := &fakeMailer{}

	env := &testEnv{
		db:       gdb,
		store:    store,
		cache:    listCache,
		mailer:   mailer,
		metrics:  reg,
		uploader: uploader,
		repos: testRepos{
			users:        repositories.NewUserRepository(gdb),
			groups:       repositories.NewGroupRepository(gdb),
			participants: repositories.NewParticipantRepository(gdb),
			forms:        repositories.NewFormReturnRepository(gdb),
		},
	}

	env.auth = NewAuthService(
		env.repos.users,
		common.NewSessionService(cacheSvc, time.Hour),
		auth.NewTokenService([]byte("test-secret"), time.Hour, cacheSvc),
		mailer,
		reg,
		AuthConfig{ResetTTL: time.Hour, AppBaseURL: "https://lent.example", BcryptCost: bcrypt.MinCost},
	)
	env.users = NewUserService(env.repos.users, uploader)
	env.people = NewParticipantService(env.repos.participants, env.repos.groups, listCache, reg)
	env.forms = NewFormReturnService(env.repos.forms, uploader, listCache, reg)
	env.groups = NewGroupService(env.repos.groups, listCache, reg)
	return env
}

func (e *testEnv) seedUser(t *testing.T, email string, role constants.Role) *gormModels.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &gormModels.User{Name: email, Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, e.repos.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seedGroup(t *testing.T, name string) *gormModels.Group {
	t.Helper()
	g := &gormModels.Group{Name: name}
	require.NoError(t, e.repos.groups.Create(context.Background(), g))
	return g
}

func (e *testEnv) storedKeys(t *testing.T) []string {
	t.Helper()
	objs, err := e.store.List(context.Background(), "")
	require.NoError(t, err)
	keys := make([]string, len(objs))
	for i, o := range objs {
		keys[i] = o.Key
	}
	return keys
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	img.Set(1, 1, color.NRGBA{G: 180, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func requireServiceError(t *testing.T, err error, status int, code string) *ServiceError {
	t.Helper()
	require.Error(t, err)
	se, ok := AsServiceError(err)
	require.True(t, ok, "expected ServiceError, got %v", err)
	require.Equal(t, status, se.Status)
	require.Equal(t, code, se.Code)
	return se
}

func bucketOf(label string, count int64) aggregate.Bucket {
	return aggregate.Bucket{Label: label, Count: count}
}

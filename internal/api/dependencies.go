package api

import (
	"errors"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/config"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/jobs"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/services"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Users        *repositories.UserRepository
	Groups       *repositories.GroupRepository
	Participants *repositories.ParticipantRepository
	FormReturns  *repositories.FormReturnRepository
	Stats        *repositories.StatsRepository
}

type Services struct {
	Cache        common.CacheInterface
	ListCache    *common.ListCache
	Sessions     *common.SessionService
	Tokens       *auth.TokenService
	Uploader     *storage.Uploader
	Auth         *services.AuthService
	Users        *services.UserService
	Participants *services.ParticipantService
	FormReturns  *services.FormReturnService
	Groups       *services.GroupService
	Dashboard    *services.DashboardService
}

type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Repo     *Repositories
	Services *Services
	Jobs     *jobs.Jobs
	Metrics  *metrics.MetricsRegistry
}

// Infrastructure is what main opens before wiring: connections, cache,
// storage backend and mailer.
type Infrastructure struct {
	DB      *gorm.DB
	SQL     *sqlx.DB
	Cache   common.CacheInterface
	Store   storage.ImageStore
	Mailer  services.Mailer
	Metrics *metrics.MetricsRegistry
}

func InitDependencies(cfg *config.Config, infra Infrastructure) (*Dependencies, error) {
	if infra.DB == nil || infra.Cache == nil || infra.Store == nil || infra.Mailer == nil {
		return nil, errors.New("database, cache, image store and mailer are required")
	}

	repos := &Repositories{
		Users:        repositories.NewUserRepository(infra.DB).WithCaseInsensitiveSearch(cfg.SearchCaseInsensitive),
		Groups:       repositories.NewGroupRepository(infra.DB).WithCaseInsensitiveSearch(cfg.SearchCaseInsensitive),
		Participants: repositories.NewParticipantRepository(infra.DB).WithCaseInsensitiveSearch(cfg.SearchCaseInsensitive),
		FormReturns:  repositories.NewFormReturnRepository(infra.DB).WithCaseInsensitiveSearch(cfg.SearchCaseInsensitive),
	}
	if infra.SQL != nil {
		repos.Stats = repositories.NewStatsRepository(infra.SQL)
	}

	listCache := common.NewListCache(infra.Cache, cfg.ListCacheTTL, infra.Metrics)
	sessions := common.NewSessionService(infra.Cache, cfg.SessionTTL)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL, infra.Cache)
	uploader := storage.NewUploader(infra.Store, cfg.MaxImageSide)

	svcs := &Services{
		Cache:     infra.Cache,
		ListCache: listCache,
		Sessions:  sessions,
		Tokens:    tokens,
		Uploader:  uploader,
		Auth: services.NewAuthService(repos.Users, sessions, tokens, infra.Mailer, infra.Metrics, services.AuthConfig{
			ResetTTL:   cfg.ResetTTL,
			AppBaseURL: cfg.AppBaseURL,
		}),
		Users:        services.NewUserService(repos.Users, uploader),
		Participants: services.NewParticipantService(repos.Participants, repos.Groups, listCache, infra.Metrics),
		FormReturns:  services.NewFormReturnService(repos.FormReturns, uploader, listCache, infra.Metrics),
		Groups:       services.NewGroupService(repos.Groups, listCache, infra.Metrics),
		Dashboard: services.NewDashboardService(
			repos.Participants,
			repos.FormReturns,
			repos.Groups,
			repos.Users,
			repos.Stats,
			listCache,
			cfg.DashboardInMemoryLimit,
		),
	}

	return &Dependencies{
		Config:   cfg,
		DB:       infra.DB,
		Repo:     repos,
		Services: svcs,
		Jobs: jobs.NewJobs(infra.Store, repos.FormReturns, repos.Users, infra.Metrics, jobs.Config{
			SweepInterval: cfg.OrphanSweepInterval,
			GracePeriod:   cfg.OrphanGracePeriod,
			ResetTTL:      cfg.ResetTTL,
		}),
		Metrics: infra.Metrics,
	}, nil
}

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devconnector-api/internal/application"
	"github.com/oksasatya/devconnector-api/internal/container"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/archive"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/github"
	"github.com/oksasatya/devconnector-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/devconnector-api/internal/interface/http"
	"github.com/oksasatya/devconnector-api/internal/interface/middleware"
	"github.com/oksasatya/devconnector-api/internal/router/modules"
	"github.com/oksasatya/devconnector-api/pkg/helpers"
)

// Services bundles the use cases the HTTP modules call.
type Services struct {
	Auth     *application.AuthService
	Profiles *application.ProfileService
	Posts    *application.PostService
	Accounts *application.AccountService
}

// BuildServices wires the application services from the container singletons.
// Optional integrations are attached only when their client is configured.
func BuildServices() Services {
	cfg := container.GetConfig()
	repos := container.GetRepositories()
	common := application.Common{Logger: container.GetLogger(), StoreTimeout: cfg.StoreTimeout}

	var mail application.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		mail = pub
	}
	var index application.ProfileIndexer
	if es := container.GetES(); es != nil {
		index = search.NewProfileIndex(es, cfg.ESProfilesIndex)
	}

	auth := application.NewAuthService(common, repos.Users, helpers.PasswordHasher{}, container.GetJWT(), mail, cfg.AppName)

	profiles := application.NewProfileService(common, repos.Profiles, repos.Users)
	profiles.Index = index
	profiles.GitHub = github.NewClient(cfg.GitHubAPIURL, cfg.GitHubClientID, cfg.GitHubClientSecret)
	profiles.Redis = container.GetRedis()
	profiles.CacheTTL = cfg.GitHubCacheTTL

	accounts := application.NewAccountService(common, repos.Users, repos.Profiles, repos.Posts)
	accounts.Index = index
	accounts.Mail = mail
	accounts.AppName = cfg.AppName
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		accounts.Archiver = archive.NewGCSArchiver(gcs, cfg.GCSBucket, cfg.GCSArchivePrefix)
	}

	return Services{
		Auth:     auth,
		Profiles: profiles,
		Posts:    application.NewPostService(common, repos.Posts, repos.Users),
		Accounts: accounts,
	}
}

// InitModules builds handlers for svc and registers every module with r.
// Call once during startup.
func InitModules(r *Registry, svc Services) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	guards := modules.Guards{
		Auth:    middleware.Auth(container.GetJWT()),
		PerUser: middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil),
	}
	credentialLimit := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	r.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(),
		middleware.AnyAllow(middleware.AllowPaths("/api/debug/vars"), middleware.AllowPrivateIP())))

	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Auth, logger, cookies), guards, credentialLimit))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger, cookies), guards, credentialLimit))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(svc.Profiles, svc.Accounts, logger, cookies), guards))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(svc.Posts, logger), guards))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), nil)))
	}
}

// NewEngine returns a gin engine with the global middleware every deployment uses.
func NewEngine(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RealIP())
	r.Use(extra...)
	return r
}

package router

import (
	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/container"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/internal/infrastructure/cache"
	"github.com/soundclone/soundclone-api/internal/infrastructure/identity"
	"github.com/soundclone/soundclone-api/internal/infrastructure/notify"
	pginfra "github.com/soundclone/soundclone-api/internal/infrastructure/postgres"
	"github.com/soundclone/soundclone-api/internal/infrastructure/search"
	"github.com/soundclone/soundclone-api/internal/infrastructure/storage"
	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
	"github.com/soundclone/soundclone-api/internal/router/modules"
	"github.com/soundclone/soundclone-api/pkg/helpers"
)

// Services are the application services behind the HTTP handlers.
type Services struct {
	Auth     *application.AuthService
	Password *application.PasswordService
	Catalog  *application.CatalogService
	Likes    *application.LikeService
	Library  *application.LibraryService
	Users    *application.UserService
	Search   *application.SearchService
	Sessions repo.SessionStore
}

// BuildServices wires repositories and adapters from the container.
// Optional adapters are only attached when their client is configured.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := pginfra.NewStore(container.GetPGPool())
	rdb := container.GetRedis()
	sessions := cache.NewSessionStore(rdb)

	var objects repo.ObjectStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		objects = storage.NewGCSStore(gcs, cfg.GCSBucket)
	}
	var index application.SearchIndex
	if es := container.GetES(); es != nil {
		index = search.NewESIndex(es, cfg.ESSongsIndex, cfg.ESArtistsIndex)
	}
	var pub notify.Publisher
	if rp := container.GetRabbitPub(); rp != nil {
		pub = rp
	}
	notifier := notify.NewEmailNotifier(cfg, pub, logger)
	var google application.IdentityVerifier
	if cfg.GoogleClientID != "" {
		google = identity.NewGoogleVerifier(cfg.GoogleClientID)
	}

	return Services{
		Auth:     application.NewAuthService(store, sessions, container.GetJWT(), notifier, google, logger, cfg.VerifyEmailURL, cfg.SessionTTL),
		Password: application.NewPasswordService(store, cache.NewOTPStore(rdb), sessions, notifier, logger, cfg.OTPTTL, cfg.OTPCooldown),
		Catalog:  application.NewCatalogService(store, objects, index, logger),
		Likes:    application.NewLikeService(store, logger),
		Library:  application.NewLibraryService(store, logger),
		Users:    application.NewUserService(store, sessions, logger),
		Search:   application.NewSearchService(store, index, logger),
		Sessions: sessions,
	}
}

// InitModules builds every feature module and adds it to the registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	svc := BuildServices()

	guard := modules.Guard{
		Auth: middleware.Auth(svc.Sessions, container.GetJWT()),
	}
	if rdb := container.GetRedis(); rdb != nil {
		guard.Redis = rdb
	}

	errs := handlers.Errors{Logger: container.GetLogger(), Production: cfg.IsProduction()}
	url := handlers.URLResolver(svc.Catalog.URL)
	maxUpload := cfg.MaxUploadBytes()
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewDebugModule(guard, cfg.DebugMetricsEnabled))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, svc.Password, cookies, errs), guard))
	r.Add(modules.NewCatalogModule(
		handlers.NewSongHandler(svc.Catalog, svc.Likes, url, maxUpload, errs),
		handlers.NewArtistHandler(svc.Catalog, svc.Library, url, maxUpload, errs),
		handlers.NewGenreHandler(svc.Catalog, errs),
		guard,
	))
	r.Add(modules.NewLibraryModule(handlers.NewLibraryHandler(svc.Library, url, errs), guard))
	r.Add(modules.NewSearchModule(handlers.NewSearchHandler(svc.Search, url, errs), guard))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, errs), guard))
}

// Package app assembles the services and the HTTP router.
package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"theknife/internal/config"
	"theknife/internal/middleware"
	"theknife/internal/modules/catalog"
	"theknife/internal/modules/favorite"
	"theknife/internal/modules/feed"
	"theknife/internal/modules/owner"
	"theknife/internal/modules/review"
	"theknife/internal/pkg/assoc"
	jwtsvc "theknife/internal/pkg/jwt"
	"theknife/internal/pkg/serial"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger
	JWT    *jwtsvc.Service

	Catalog   *catalog.Service
	Owners    *owner.Service
	Favorites *favorite.Service
	Reviews   *review.Service
	Feed      *feed.Hub

	queue  *serial.Queue
	stores *Stores
}

// New builds every service on stores and loads their state. All mutations
// share one queue.
func New(ctx context.Context, cfg *config.Config, stores *Stores, log *zap.Logger) (*App, error) {
	q := serial.NewQueue()
	a := &App{
		Config: cfg,
		Log:    log,
		JWT:    jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		queue:  q,
		stores: stores,
	}

	a.Catalog = catalog.NewService(stores.Catalog, q, log)
	a.Owners = owner.NewService(assoc.New("ownership", stores.Owners, q, log), a.Catalog, log)
	a.Favorites = favorite.NewService(assoc.New("favorites", stores.Favorites, q, log), a.Catalog, log)
	a.Feed = feed.NewHub(a.Owners, log)
	a.Reviews = review.NewService(stores.Reviews, a.Owners, a.Catalog, a.Feed, q, log)

	loaders := []func(context.Context) error{
		a.Catalog.Load,
		a.Owners.Load,
		a.Favorites.Load,
		a.Reviews.Load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			q.Close()
			return nil, err
		}
	}
	return a, nil
}

// Router returns the API wrapped in CORS.
func (a *App) Router() http.Handler {
	r := gin.New()
	r.Use(middleware.RequestLogger(a.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	catalogHandler := catalog.NewHandler(a.Catalog, a.Reviews, a.Owners, a.Favorites)
	ownerHandler := owner.NewHandler(a.Owners, a.Reviews)
	favoriteHandler := favorite.NewHandler(a.Favorites)
	reviewHandler := review.NewHandler(a.Reviews, a.Favorites)
	feedHandler := feed.NewHandler(a.Feed, a.JWT, a.Config.CORSOrigins)

	v1 := r.Group("/api/v1")
	feedHandler.RegisterRoutes(v1)

	public := v1.Group("")
	public.Use(middleware.OptionalAuth(a.JWT))
	{
		catalogHandler.RegisterRoutes(public)
		reviewHandler.RegisterRoutes(public, nil, nil)
	}

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(a.JWT))
	{
		favoriteHandler.RegisterRoutes(protected)
		reviewHandler.RegisterRoutes(nil, protected, nil)
	}

	owners := v1.Group("")
	owners.Use(middleware.JWTAuth(a.JWT), middleware.OwnerOnly())
	{
		ownerHandler.RegisterRoutes(owners)
		reviewHandler.RegisterRoutes(nil, nil, owners)
	}

	return middleware.CORS(a.Config.CORSOrigins).Handler(r)
}

// Close drains the write queue, then releases the stores.
func (a *App) Close() error {
	a.queue.Close()
	return a.stores.Close()
}

package main

import (
	"context"
	"fmt"
	"net/http"

	"campusexplorer/buildings"
	"campusexplorer/config"
	"campusexplorer/db"
	"campusexplorer/editor"
	"campusexplorer/globals"
	"campusexplorer/live"
	"campusexplorer/maps"
	"campusexplorer/models"
	"campusexplorer/mq"
	"campusexplorer/ratelim"
	"campusexplorer/rdx"
	"campusexplorer/routes"
	"campusexplorer/tours"
	"campusexplorer/users"
	"campusexplorer/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type stores struct {
	buildings buildings.Store
	tours     tours.Store
	users     users.Store
}

// app is the wired service. close releases everything build opened, in
// reverse order.
type app struct {
	router  *httprouter.Router
	catalog *buildings.Catalog
	hub     *live.Hub
	editor  *editor.Editor
	limiter *ratelim.RateLimiter
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i](ctx)
	}
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory stores; data is lost on restart")
		return stores{
			buildings: buildings.NewMemoryStore(),
			tours:     tours.NewMemoryStore(),
			users:     users.NewMemoryStore(),
		}, func(context.Context) error { return nil }, nil

	case config.DriverMongo:
		if _, err := db.Connect(ctx, cfg.Mongo); err != nil {
			return stores{}, nil, err
		}
		bs := buildings.NewMongoStore(db.BuildingsCollection)
		ts := tours.NewMongoStore(db.ToursCollection)
		us := users.NewMongoStore(db.UserCollection)
		for _, ix := range []interface{ EnsureIndexes(context.Context) error }{bs, ts, us} {
			if err := ix.EnsureIndexes(ctx); err != nil {
				_ = db.Disconnect(context.Background())
				return stores{}, nil, err
			}
		}
		log.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))
		return stores{buildings: bs, tours: ts, users: us}, db.Disconnect, nil
	}
	return stores{}, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func build(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	st, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStores)

	surface := maps.Surface{Width: cfg.Map.Width, Height: cfg.Map.Height}
	if !surface.Valid() {
		a.close(ctx)
		return nil, fmt.Errorf("invalid map surface %gx%g", surface.Width, surface.Height)
	}

	a.catalog = buildings.NewCatalog(st.buildings, buildings.Options{
		PlaceholderImage:     cfg.PlaceholderImage,
		PlaceholderFloorPlan: cfg.PlaceholderFloorPlan,
	}, log.Named("buildings"))
	a.editor = editor.New(a.catalog, surface, cfg.CommitTimeout, log.Named("editor"))
	a.hub = live.NewHub(log.Named("live"))
	go a.hub.Run()
	a.closers = append(a.closers, func(context.Context) error { a.hub.Stop(); return nil })

	if cfg.Redis.Enabled() {
		if err := a.wireRedis(ctx, cfg, log); err != nil {
			a.close(ctx)
			return nil, err
		}
	} else {
		a.catalog.WithNotifier(mq.Fanout{a.hub, a.editor})
	}

	if cfg.SeedBuildings {
		created, skipped, err := a.catalog.Seed(ctx, buildings.SeedBuildings)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("seed buildings: %w", err)
		}
		log.Info("seeded buildings", zap.Int("created", created), zap.Int("skipped", skipped))
	}
	if err := a.editor.Load(ctx); err != nil {
		log.Warn("editor could not load positions", zap.Error(err))
	}

	directory := users.NewDirectory(st.users, cfg.AutoCreateOwners, log.Named("users"))
	tourService := tours.NewService(st.tours, directory, a.catalog, cfg.PlaceholderImage, log.Named("tours"))

	a.limiter = ratelim.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	a.router = setupRouter(routes.Deps{
		Buildings: buildings.NewHandlers(a.catalog, log),
		Tours:     tours.NewHandlers(tourService, log),
		Maps:      maps.NewHandlers(cfg.Map.Image, surface, a.catalog, tourService, log),
		Hub:       a.hub,
		Editor:    a.editor,
		Log:       log,
	}, a.limiter)
	return a, nil
}

// wireRedis puts the list cache in front of the catalog and routes catalog
// events through pub/sub, so every instance's viewers and editors hear about
// changes made on any instance.
func (a *app) wireRedis(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	conn, err := rdx.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return conn.Close() })

	a.catalog.WithCache(rdx.NewCache(conn, cfg.CacheTTL, log.Named("cache")))
	a.catalog.WithNotifier(mq.NewPublisher(conn, globals.CatalogEventsChannel, log.Named("mq")))

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done, err := mq.Subscribe(subCtx, conn, globals.CatalogEventsChannel, log.Named("mq"), func(event models.CatalogEvent) {
		mq.Fanout{a.hub, a.editor}.Notify(subCtx, event)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe %s: %w", globals.CatalogEventsChannel, err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		cancel()
		<-done
		return nil
	})
	log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	return nil
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "status": "ok"})
}

func setupRouter(d routes.Deps, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, d, rateLimiter)
	return router
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/lintang-b-s/rodroute/docs"
	"github.com/lintang-b-s/rodroute/pkg/config"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/engine/rod"
	"github.com/lintang-b-s/rodroute/pkg/kv"
	"github.com/lintang-b-s/rodroute/pkg/limit"
	"github.com/lintang-b-s/rodroute/pkg/logger"
	"github.com/lintang-b-s/rodroute/pkg/rating"
	"github.com/lintang-b-s/rodroute/pkg/server/rest"
	"github.com/lintang-b-s/rodroute/pkg/server/rest/service"
	"github.com/lintang-b-s/rodroute/pkg/snap"
	"github.com/lintang-b-s/rodroute/pkg/storage"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile = flag.String("config", "config.yaml", "yaml config file, created with the defaults when missing")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides the config file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

type locatorCloser interface {
	rod.EdgeLocator
	Close() error
}

type noopCloser struct {
	*snap.RoadSnapper
}

func (noopCloser) Close() error { return nil }

//	@title			rodroute API
//	@version		1.0
//	@description	recreational walking route generator on openstreetmap data. Pareto frontier dijkstra over enjoyment and length

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("engine stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gf, err := storage.LoadGraphFile(cfg.Data.GraphFile)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	graph, err := gf.Graph()
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	lg.Info("graph loaded", zap.Int("nodes", graph.NumNodes()), zap.Int("edges", graph.NumEdges()))
	recordMemProfile(memprofile, "load_graph")

	store, err := rating.OpenStore(cfg.Data.PebbleDir, lg.Named("rating"))
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := store.LoadInto(graph); err != nil {
		return err
	}

	locator, err := newLocator(ctx, cfg.Data, graph, lg)
	if err != nil {
		return err
	}
	defer locator.Close()

	router := rod.NewRouter(graph, locator, cfg.Routing.Hyperparameters(), lg.Named("rod"))

	hits := limit.NewLimit(graph, cfg.Routing.LimitFactor, lg.Named("limit"))
	defer hits.Close()

	updater := rating.NewUpdater(store, cfg.Rating.Influence, cfg.Rating.QueueSize, lg.Named("rating"))
	updater.Start(ctx)
	defer updater.Close()

	routeSvc := service.NewRouteService(router, hits, updater, lg.Named("service"))
	recordMemProfile(memprofile, "service_init")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost%s/swagger/doc.json", cfg.Server.ListenAddr)),
	))

	rest.RodRouter(r, routeSvc, m, lg.Named("rest"))

	srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: r}
	errc := make(chan error, 1)
	go func() {
		lg.Info("server started", zap.String("addr", cfg.Server.ListenAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// newLocator builds the nearest edge index. The h3 index is read from badger, where
// cmd/preprocessing left it, and rebuilt when empty.
func newLocator(ctx context.Context, data config.DataConfig, graph *datastructure.ApplicationGraph, lg *zap.Logger) (locatorCloser, error) {
	if data.Snapper == "h3" {
		db, err := badger.Open(badger.DefaultOptions(data.BadgerDir).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		kvDB, err := kv.NewKVDB(db, lg.Named("kv"))
		if err != nil {
			db.Close()
			return nil, err
		}
		empty, err := kvDB.Empty()
		if err != nil {
			kvDB.Close()
			return nil, err
		}
		if empty {
			lg.Info("h3 edge index is empty, building it")
			if err := kvDB.BuildH3IndexedEdges(ctx, graph); err != nil {
				kvDB.Close()
				return nil, err
			}
		}
		return kvDB, nil
	}

	snapper := snap.NewRoadSnapper(lg.Named("snap"))
	if err := snapper.BuildRoadSnapper(graph); err != nil {
		return nil, err
	}
	return noopCloser{snapper}, nil
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		path := strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}

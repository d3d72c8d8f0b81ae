package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/lintang-b-s/rodroute/pkg/config"
	"github.com/lintang-b-s/rodroute/pkg/kv"
	"github.com/lintang-b-s/rodroute/pkg/logger"
	"github.com/lintang-b-s/rodroute/pkg/osmparser"
	"github.com/lintang-b-s/rodroute/pkg/storage"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "yaml config file, created with the defaults when missing")
	mapFile    = flag.String("f", "gent.osm.pbf", "openstreeetmap file buat graph jalan kaki")
	outFile    = flag.String("o", "", "graph output file, defaults to data.graph_file of the config")
	buildH3    = flag.Bool("h3", false, "also build the badger h3 edge index")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		// ./bin/rodroute-preprocessing -cpuprofile=rodcpu.prof -memprofile=rodmem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cfg.Data.GraphFile
	if *outFile != "" {
		out = *outFile
	}

	lg.Info("reading osm file", zap.String("file", *mapFile))
	gf, err := osmparser.NewOSMParser(lg.Named("osm")).Parse(ctx, *mapFile)
	if err != nil {
		lg.Fatal("failed to parse osm file", zap.Error(err))
	}
	recordMemProfile(memprofile, "parsing_osm_data")

	graph, err := gf.Graph()
	if err != nil {
		lg.Fatal("parsed graph is invalid", zap.Error(err))
	}

	lg.Info("saving graph", zap.String("file", out))
	if err := storage.SaveGraphFile(out, gf); err != nil {
		lg.Fatal("failed to save graph", zap.Error(err))
	}

	if *buildH3 {
		db, err := badger.Open(badger.DefaultOptions(cfg.Data.BadgerDir).WithLogger(nil))
		if err != nil {
			lg.Fatal("failed to open badger", zap.Error(err))
		}
		kvDB, err := kv.NewKVDB(db, lg.Named("kv"))
		if err != nil {
			db.Close()
			lg.Fatal("failed to create kv db", zap.Error(err))
		}
		defer kvDB.Close()

		if err := db.DropAll(); err != nil {
			lg.Fatal("failed to clear old h3 index", zap.Error(err))
		}
		if err := kvDB.BuildH3IndexedEdges(ctx, graph); err != nil {
			lg.Fatal("failed to build h3 index", zap.Error(err))
		}
	}
	recordMemProfile(memprofile, "finish_preprocessing")

	fmt.Printf("\nwalking graph ready: %d nodes, %d edges, %d pois\n", graph.NumNodes(), graph.NumEdges(), len(gf.Pois))
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

package main

import (
	"flag"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/landmark"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/logger"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	osmFile   = flag.String("osm_file", pkg.DEFAULT_OSM_FILE, "openstreetmap extract of the region (.osm.pbf, .osm or .osm.bz2)")
	graphFile = flag.String("graph_file", pkg.DEFAULT_GRAPH_FILE, "output road graph snapshot")

	landmarkFile = flag.String("landmark_file", "", "if set, also precompute the ALT landmark tables into this file")
	landmarks    = flag.Int("landmarks", 16, "number of ALT landmark directions")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	osmParser := osmparser.NewOSMParser()
	graph, err := osmParser.Parse(*osmFile, logger)
	if err != nil {
		logger.Fatal("failed to parse openstreetmap file", zap.String("osm_file", *osmFile), zap.Error(err))
	}

	if err := graph.WriteGraph(*graphFile); err != nil {
		logger.Fatal("failed to write road graph", zap.String("graph_file", *graphFile), zap.Error(err))
	}

	if *landmarkFile != "" {
		lm := landmark.NewLandmark()
		if err := lm.PreprocessALT(*landmarks, graph, logger); err != nil {
			logger.Fatal("failed to compute landmarks", zap.Error(err))
		}
		if err := lm.WriteLandmark(*landmarkFile); err != nil {
			logger.Fatal("failed to write landmarks", zap.String("landmark_file", *landmarkFile), zap.Error(err))
		}
	}

	logger.Sugar().Infof("Preprocessing completed successfully, graph written to %s", *graphFile)
}

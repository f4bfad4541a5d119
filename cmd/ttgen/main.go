package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campusforge/timetable-engine/internal/dispatch"
	"github.com/campusforge/timetable-engine/internal/engine"
	"github.com/campusforge/timetable-engine/internal/models"
	"github.com/campusforge/timetable-engine/internal/repository"
	"github.com/campusforge/timetable-engine/pkg/cache"
	"github.com/campusforge/timetable-engine/pkg/config"
	"github.com/campusforge/timetable-engine/pkg/database"
	"github.com/campusforge/timetable-engine/pkg/export"
	"github.com/campusforge/timetable-engine/pkg/logger"
	"github.com/campusforge/timetable-engine/pkg/storage"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "JSON snapshot file; loads from Postgres when empty")
	persist := flag.Bool("persist", false, "replace the stored timetable with the generated entries")
	writeArtifacts := flag.Bool("export", false, "render CSV/PDF artifacts for the run")
	async := flag.Bool("async", false, "run through the dispatch queue instead of inline")
	useRedis := flag.Bool("redis", false, "with -async, keep job state in Redis")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	metrics := engine.NewMetrics()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, metrics, logr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.RunTimeout)
	defer cancel()

	var db *sqlx.DB
	if *snapshotPath == "" || *persist {
		db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
	}

	var snap *models.Snapshot
	if *snapshotPath != "" {
		snap, err = loadSnapshotFile(*snapshotPath)
	} else {
		snap, err = repository.NewSnapshotRepository(db).LoadSnapshot(ctx)
	}
	if err != nil {
		logr.Sugar().Fatalw("failed to load snapshot", "error", err)
	}

	engineCfg := engine.Config{
		UltraFast:              cfg.Scheduler.UltraFast,
		SkipFacultySchedules:   cfg.Scheduler.SkipFacultySchedules,
		SkipOverworkCheck:      cfg.Scheduler.SkipOverworkCheck,
		GreedySuccessThreshold: cfg.Scheduler.GreedySuccessThreshold,
		MaxLabsPerDay:          cfg.Scheduler.MaxLabsPerDay,
		OverworkThresholdHours: cfg.Scheduler.OverworkThresholdHours,
		OddLabPolicy:           engine.OddLabPolicy(cfg.Scheduler.OddLabPolicy),
		SolverBudget:           cfg.Scheduler.SolverBudget,
	}
	coordinator := engine.NewCoordinator(engineCfg, logr, metrics)

	var result *models.RunResult
	if *async {
		result, err = runQueued(ctx, cfg, logr, coordinator, db, snap, *useRedis, *persist)
	} else {
		result, err = coordinator.Run(ctx, snap)
		if err == nil && *persist {
			err = repository.NewTimetableRepository(db).Replace(ctx, groupIDs(snap), result.Entries)
		}
	}
	if err != nil {
		logr.Sugar().Fatalw("generation failed", "error", err)
	}

	printSummary(result)

	if *writeArtifacts {
		if err := writeRunArtifacts(cfg, logr, snap, result); err != nil {
			logr.Sugar().Fatalw("artifact export failed", "error", err)
		}
	}
}

// runQueued routes the snapshot through the dispatcher and polls until the
// job settles. The poll deadline is padded past the run timeout so a
// truncated-but-finished run still reports instead of racing the worker.
func runQueued(ctx context.Context, cfg *config.Config, logr *zap.Logger, coordinator *engine.Coordinator, db *sqlx.DB, snap *models.Snapshot, useRedis, persist bool) (*models.RunResult, error) {
	var store dispatch.JobStore
	if useRedis {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close() //nolint:errcheck
		store = dispatch.NewRedisStore(client, cfg.Queue.ResultTTL)
	} else {
		store = dispatch.NewMemoryStore(cfg.Queue.ResultTTL)
	}

	var persister dispatch.Persister
	if persist {
		persister = repository.NewTimetableRepository(db)
	}

	d := dispatch.New(coordinator, store, persister, logr, dispatch.Config{
		Workers:    cfg.Queue.WorkerConcurrency,
		MaxRetries: cfg.Queue.WorkerRetries,
		RunTimeout: cfg.Scheduler.RunTimeout,
	})
	d.Start(context.Background())
	defer d.Stop()

	job, err := d.Submit(ctx, snap)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.RunTimeout+30*time.Second)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("run job %s did not settle before the deadline", job.ID)
		case <-ticker.C:
		}

		current, err := d.Status(waitCtx, job.ID)
		if err != nil {
			return nil, err
		}
		switch current.Status {
		case models.RunJobStatusFinished:
			return current.Result, nil
		case models.RunJobStatusFailed:
			msg := "run job failed"
			if current.ErrorMessage != nil {
				msg = *current.ErrorMessage
			}
			return nil, fmt.Errorf("run job %s: %s", job.ID, msg)
		}
	}
}

func loadSnapshotFile(path string) (*models.Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	snap := &models.Snapshot{}
	if err := json.Unmarshal(payload, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}
	return snap, nil
}

func writeRunArtifacts(cfg *config.Config, logr *zap.Logger, snap *models.Snapshot, result *models.RunResult) error {
	store, err := storage.NewLocalStorage(cfg.Export.StorageDir)
	if err != nil {
		return err
	}
	if deleted, err := store.CleanupOlderThan(cfg.Export.SignedURLTTL); err != nil {
		logr.Sugar().Warnw("artifact cleanup failed", "error", err)
	} else if len(deleted) > 0 {
		logr.Sugar().Infow("stale artifacts removed", "count", len(deleted))
	}

	writer := export.NewWriter(store, nil, cfg.Export.Formats, logr)
	if cfg.Export.SignedURLSecret != "" {
		signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
		writer = export.NewWriter(store, signer, cfg.Export.Formats, logr)
	}

	artifacts, err := writer.WriteRun(snap, result)
	if err != nil {
		return err
	}
	fmt.Printf("artifacts (%d):\n", len(artifacts))
	for _, artifact := range artifacts {
		fmt.Printf("  %s", store.Path(artifact.Path))
		if artifact.Token != "" {
			fmt.Printf("  token=%s", artifact.Token)
		}
		fmt.Println()
	}
	return nil
}

func printSummary(result *models.RunResult) {
	fmt.Printf("run %s: %s\n", result.RunID, result.State)
	fmt.Printf("  placed    %d/%d (%.0f%%) via %s\n",
		result.PlacedCount, result.TotalCount, result.PlacementRatio()*100, result.Method)
	fmt.Printf("  success   %t  truncated %t\n", result.Success, result.Truncated)
	fmt.Printf("  timings   eligibility=%s planning=%s greedy=%s ilp=%s validation=%s total=%s\n",
		result.Timings.Eligibility, result.Timings.Planning, result.Timings.Greedy,
		result.Timings.ILP, result.Timings.Validation, result.Timings.Total)
	if len(result.Warnings) > 0 {
		fmt.Printf("  warnings (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Printf("    [%s] %s\n", warning.Code, warning.Message)
		}
	}
	if len(result.Unplaced) > 0 {
		fmt.Printf("  unplaced (%d):\n", len(result.Unplaced))
		for _, session := range result.Unplaced {
			fmt.Printf("    session %d course %s group %s (%dh): %s\n",
				session.SessionID, session.CourseID, session.GroupID, session.Duration, session.Reason)
		}
	}
}

func serveMetrics(addr string, metrics *engine.Metrics, logr *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logr.Sugar().Infow("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logr.Sugar().Warnw("metrics server stopped", "error", err)
	}
}

func groupIDs(snap *models.Snapshot) []string {
	ids := make([]string, 0, len(snap.Groups))
	for _, group := range snap.Groups {
		ids = append(ids, group.ID)
	}
	return ids
}

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-drillfix/internal/modules/drillfix"
	"github.com/yungbote/neurobridge-drillfix/internal/observability"
	"github.com/yungbote/neurobridge-drillfix/internal/platform/blobstore"
	"github.com/yungbote/neurobridge-drillfix/internal/platform/logger"
)

var version = "dev"

type options struct {
	drills    string
	structure string
	out       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("drillfix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.drills, "drills", "data/drills.json", "drills dataset (path or gs://bucket/key)")
	fs.StringVar(&opts.structure, "exercice-structure", "data/exercice_structure.json", "exercise structure dataset (path or gs://bucket/key)")
	fs.StringVar(&opts.out, "out", "data/fsi_drill_format_patch.json", "patch output (path or gs://bucket/key)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	log, err := logger.FromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 1
	}
	defer log.Sync()
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	ctx := context.Background()
	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "drillfix",
		Version:     version,
		RunID:       runID,
	})
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	store := blobstore.New(log)
	defer store.Close()

	pf, err := repair(ctx, log, store, opts)
	if err != nil {
		log.Error("drillfix failed", "error", err)
		fmt.Fprintf(stderr, "drillfix: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %d drill patches to %s\n", pf.DrillsPatched, opts.out)
	fmt.Fprintf(stdout, "Total considered: %d, fallback used: %d\n", pf.DrillsTotalConsidered, pf.PatchedViaExerciseFallback)
	return 0
}

func repair(ctx context.Context, log *logger.Logger, store *blobstore.Store, opts options) (drillfix.PatchFile, error) {
	rules, err := drillfix.LoadRules()
	if err != nil {
		return drillfix.PatchFile{}, err
	}

	loadCtx, span := observability.StartSpan(ctx, "drillfix.load")
	drills, err := load(loadCtx, store, opts.drills, drillfix.DecodeDrills)
	if err != nil {
		span.End()
		return drillfix.PatchFile{}, err
	}
	structure, err := load(loadCtx, store, opts.structure, drillfix.DecodeExerciseStructure)
	span.SetAttributes(attribute.Int("drillfix.drills", len(drills)))
	span.End()
	if err != nil {
		return drillfix.PatchFile{}, err
	}

	_, span = observability.StartSpan(ctx, "drillfix.index")
	idx, err := drillfix.BuildIndex(structure)
	if err != nil {
		span.End()
		return drillfix.PatchFile{}, fmt.Errorf("%s: %w", opts.structure, err)
	}
	stats := idx.Stats()
	span.SetAttributes(
		attribute.Int("drillfix.exercises", stats.Exercises),
		attribute.Int("drillfix.candidates", stats.Candidates),
	)
	span.End()
	metrics := observability.NewRunMetrics()
	metrics.IndexExercises.Set(float64(stats.Exercises))
	metrics.IndexSkipped.Set(float64(stats.ExercisesSkipped))
	metrics.Candidates.Set(float64(stats.Candidates))
	log.Info("reference index built",
		"exercises", stats.Exercises,
		"exercises_skipped", stats.ExercisesSkipped,
		"candidates", stats.Candidates,
	)

	pf, _ := drillfix.NewRepairer(log, rules).WithMetrics(metrics).Run(ctx, drills, idx)

	var buf bytes.Buffer
	if err := drillfix.EncodePatchFile(&buf, pf); err != nil {
		return drillfix.PatchFile{}, err
	}
	writeCtx, span := observability.StartSpan(ctx, "drillfix.write", attribute.Int("drillfix.bytes", buf.Len()))
	defer span.End()
	if err := store.WriteAtomic(writeCtx, opts.out, &buf); err != nil {
		return drillfix.PatchFile{}, fmt.Errorf("write %s: %w", opts.out, err)
	}
	writeMetrics(writeCtx, log, store, metrics)
	return pf, nil
}

// writeMetrics exports the run counters when DRILLFIX_METRICS_FILE is set.
// The patch is already written, so a failure here only warns.
func writeMetrics(ctx context.Context, log *logger.Logger, store *blobstore.Store, m *observability.RunMetrics) {
	loc := observability.MetricsFile()
	if loc == "" {
		return
	}
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		log.Warn("render metrics failed", "error", err)
		return
	}
	if err := store.WriteAtomic(ctx, loc, &buf); err != nil {
		log.Warn("write metrics failed", "path", loc, "error", err)
	}
}

func load[T any](ctx context.Context, store *blobstore.Store, loc string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := store.Open(ctx, loc)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", loc, err)
	}
	defer rc.Close()
	v, err := decode(rc)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", loc, err)
	}
	return v, nil
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docnav/internal/browser"
	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/metrics"
	"github.com/dgallion1/docnav/internal/navtree"
	"github.com/dgallion1/docnav/internal/output"
	"github.com/dgallion1/docnav/internal/replay"
	"github.com/dgallion1/docnav/internal/source"
)

// Session is a live environment that holds resources until closed.
type Session interface {
	collector.Environment
	Close()
}

// Launcher opens a Session on a navigator target.
type Launcher func(ctx context.Context, target browser.Target, log *slog.Logger) (Session, error)

// BrowserLauncher returns a Launcher that starts Chrome with opts.
func BrowserLauncher(opts browser.Options) Launcher {
	return func(ctx context.Context, target browser.Target, log *slog.Logger) (Session, error) {
		s, err := browser.Open(ctx, target, opts, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Worker processes a single collection job.
type Worker struct {
	launch  Launcher
	cfg     config.Config
	stats   *metrics.RunStats
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewWorker(launch Launcher, cfg config.Config, stats *metrics.RunStats, log *slog.Logger) *Worker {
	return &Worker{
		launch:  launch,
		cfg:     cfg,
		stats:   stats,
		log:     log,
		backoff: Backoff,
	}
}

// Process runs the job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)

	switch job.Kind {
	case KindBrowser:
		w.processBrowser(ctx, job, log)
	case KindDocument:
		w.processDocument(ctx, job, log)
	default:
		job.AddError(fmt.Sprintf("unknown job kind %q", job.Kind))
		job.SetStatus(StatusFailed, "queued")
	}
}

func (w *Worker) processBrowser(ctx context.Context, job *Job, log *slog.Logger) {
	cfg := w.cfg.WithTarget(job.URL, job.RootTitle, job.Scope)
	target := cfg.Target()
	log = log.With("url", target.URL)

	// Phase 1: Launch
	job.SetStatus(StatusLaunching, "launching")
	var sess Session
	var err error
	for attempt := range MaxRetries {
		job.SetAttempt(attempt + 1)
		sess, err = w.launch(ctx, target, log)
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable navigation error", "attempt", attempt, "error", err)
		job.AddWarning(fmt.Sprintf("attempt %d: %s", attempt+1, err))
		select {
		case <-time.After(w.backoff(attempt)):
			continue
		case <-ctx.Done():
			err = ctx.Err()
		}
		break
	}
	if err != nil {
		w.fail(job, log, "launching", fmt.Errorf("launch: %w", err))
		return
	}
	defer sess.Close()

	cc := cfg.Collector()
	cc.RootTitle = cfg.TreeTitle()
	cc.RootURL = target.URL
	cc.Filter = cfg.ScopeFilter().Predicate()
	if job.MaxCycles > 0 {
		cc.MaxCycles = job.MaxCycles
	}

	w.collect(ctx, job, log, sess, cc)
}

func (w *Worker) processDocument(ctx context.Context, job *Job, log *slog.Logger) {
	log = log.With("filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := source.ForFile(job.Filename)
	if err != nil {
		w.fail(job, log, "parsing", err)
		return
	}
	listing, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(job, log, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	if job.Title != "" {
		listing.Title = job.Title
	}
	log.Info("parsed document", "items", len(listing.Items), "collapsed", len(listing.Collapsed))

	cc := replay.CollectorConfig(w.cfg.Collector(), listing)
	w.collect(ctx, job, log, replay.NewWindow(listing, w.cfg.ReplayViewport), cc)
}

// collect runs the collector against env and records the outcome.
func (w *Worker) collect(ctx context.Context, job *Job, log *slog.Logger, env collector.Environment, cc collector.Config) {
	// Phase 2: Collect
	job.SetStatus(StatusCollecting, "collecting")
	cc.OnCycle = job.RecordCycle
	start := time.Now()

	res, err := collector.New(env, cc, log).Collect(ctx)
	if err != nil {
		w.fail(job, log, "collecting", fmt.Errorf("collect: %w", err))
		w.record(metrics.Run{Duration: time.Since(start), Reason: "failed"})
		return
	}

	// Phase 3: Write
	job.SetStatus(StatusBuilding, "writing")
	outPath := filepath.Join(w.cfg.OutputDir, job.ID+".json")
	if err := output.WriteFile(outPath, res.Tree); err != nil {
		log.Error("write failed", "error", err)
		job.AddError(fmt.Sprintf("write: %s", err))
		outPath = ""
	}
	job.SetResult(res, outPath)
	w.record(metrics.Run{
		Duration: res.Stats.Duration,
		Cycles:   res.Stats.Cycles,
		Items:    res.Stats.Items,
		Reason:   string(res.Stats.Reason),
	})

	log.Info("collection complete",
		"items", res.Stats.Items,
		"nodes", navtree.Count(res.Tree),
		"cycles", res.Stats.Cycles,
		"reason", res.Stats.Reason,
		"output", outPath,
	)

	if res.Incomplete() || outPath == "" {
		if res.Incomplete() {
			job.AddWarning(fmt.Sprintf("reached maximum cycle limit (%d), result may be incomplete", cc.MaxCycles))
		}
		job.SetStatus(StatusPartial, "done")
		return
	}
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) fail(job *Job, log *slog.Logger, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
}

func (w *Worker) record(run metrics.Run) {
	if w.stats != nil {
		w.stats.Record(run)
	}
}

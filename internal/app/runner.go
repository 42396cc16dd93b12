package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"barcache/internal/cache"
	"barcache/internal/provider"
)

const heartbeatInterval = 30 * time.Second

// Runner loads every configured ticker through the cache, a bounded number
// at a time. Each ticker's own load stays sequential.
type Runner struct {
	cfg    *Config
	loader *cache.Loader
	vendor provider.Vendor
	log    *slog.Logger

	now       func() time.Time
	heartbeat time.Duration
}

// NewRunner wires a Runner.
func NewRunner(cfg *Config, loader *cache.Loader, v provider.Vendor, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, loader: loader, vendor: v, log: log, now: time.Now, heartbeat: heartbeatInterval}
}

// Run loads all tickers and writes the run report. A failing ticker is
// recorded and does not stop the others; only context cancellation aborts.
func (r *Runner) Run(ctx context.Context, tickers []string) (*Report, error) {
	start, end, err := r.cfg.Window(r.now())
	if err != nil {
		return nil, err
	}
	report := &Report{
		RunID:     uuid.NewString(),
		Vendor:    r.vendor.Name(),
		Interval:  provider.StandardizeInterval(r.cfg.Interval),
		Start:     start.Format(time.DateOnly),
		End:       end.Format(time.DateOnly),
		StartedAt: r.now().UTC(),
	}
	log := r.log.With("run_id", report.RunID)
	log.Info("run start", "tickers", len(tickers), "vendor", report.Vendor, "interval", report.Interval,
		"start", report.Start, "end", report.End, "workers", r.cfg.Workers)

	var (
		mu     sync.Mutex
		done   int
		failed int
	)
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go r.runHeartbeat(hbCtx, len(tickers), &mu, &done, &failed, log)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, ticker := range tickers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.loadTicker(gctx, ticker, start, end)
			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failed++
				log.Error("ticker failed", "ticker", ticker, "error", err)
				report.Failed = append(report.Failed, failedEntry{Ticker: ticker, Reason: err.Error()})
				return nil
			}
			report.Success = append(report.Success, res)
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}
	stopHeartbeat()

	sort.Slice(report.Success, func(i, j int) bool { return report.Success[i].Ticker < report.Success[j].Ticker })
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Ticker < report.Failed[j].Ticker })
	report.FinishedAt = r.now().UTC()

	if err := writeRunReport(r.cfg.ReportPath(), report); err != nil {
		log.Warn("could not write run report", "error", err)
	} else {
		log.Info("run report saved", "path", r.cfg.ReportPath())
	}
	log.Info("summary", "total_bars", report.TotalBars(), "success", len(report.Success), "failed", len(report.Failed),
		"elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	if len(report.Failed) > 0 {
		log.Info("summary failed", "count", len(report.Failed), "reasons", joinFailedReasons(report.Failed))
	}
	return report, runErr
}

func (r *Runner) loadTicker(ctx context.Context, ticker string, start, end time.Time) (TickerResult, error) {
	if r.cfg.ValidateTickers {
		status, err := r.vendor.ValidateTicker(ctx, ticker)
		switch status {
		case provider.TickerNotFound:
			return TickerResult{}, fmt.Errorf("ticker not found at %s", r.vendor.Name())
		case provider.TickerVendorError:
			return TickerResult{}, fmt.Errorf("validate ticker: %w", err)
		}
	}

	bars, st, err := r.loader.LoadWithStats(ctx, r.vendor, cache.Request{
		Ticker:   ticker,
		Interval: r.cfg.Interval,
		Start:    start,
		End:      end,
	})
	if err != nil {
		var fe *cache.FetchError
		if errors.As(err, &fe) {
			return TickerResult{}, fmt.Errorf("fetch %s: %w", fe.Range, fe.Err)
		}
		return TickerResult{}, err
	}
	res := TickerResult{Ticker: ticker, Bars: len(bars), Fetched: st.Fetched, Written: st.Written}
	if len(bars) > 0 {
		res.First = bars[0].Time().Format(time.RFC3339)
		res.Last = bars[len(bars)-1].Time().Format(time.RFC3339)
	}
	return res, nil
}

func (r *Runner) runHeartbeat(ctx context.Context, total int, mu *sync.Mutex, done, failed *int, log *slog.Logger) {
	if r.heartbeat <= 0 {
		return
	}
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mu.Lock()
			d, f := *done, *failed
			mu.Unlock()
			log.Info("heartbeat", "done", d, "total", total, "success", d-f, "failed", f)
		}
	}
}

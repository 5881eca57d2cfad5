package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/khoshoo3/internal/cli"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/location"
	"github.com/julianstephens/khoshoo3/internal/logger"
	"github.com/julianstephens/khoshoo3/internal/scheduler"
	"github.com/julianstephens/khoshoo3/internal/silence"
)

// DaemonCmd runs the periodic prayer check until interrupted
type DaemonCmd struct{}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := scheduler.New()
	if err != nil {
		return err
	}
	if err := registerJobs(ctx, sched); err != nil {
		return err
	}

	fmt.Printf("%s daemon started (backend %s, every %s)\n", constants.AppName, ctx.DND.Name(), constants.CheckInterval)
	return runDaemon(runCtx, sched, constants.JobReportInterval)
}

// runDaemon blocks until ctx is done and the scheduler has shut down,
// which waits for a check that is still running. The DND backend stays
// open throughout; main closes it once the command returns.
func runDaemon(ctx context.Context, sched *scheduler.Scheduler, reportEvery time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		reportJobs(gctx, sched, reportEvery)
		return nil
	})

	err := g.Wait()
	logger.Info("Shutting down daemon")
	logJobs(sched)
	return err
}

func reportJobs(ctx context.Context, sched *scheduler.Scheduler, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logJobs(sched)
		}
	}
}

// logJobs writes one line of run statistics per job
func logJobs(sched *scheduler.Scheduler) {
	jobs := sched.GetJobs()
	ids := lo.Keys(jobs)
	slices.Sort(ids)
	for _, id := range ids {
		job := jobs[id]
		logger.Info("Job status",
			"id", id, "status", job.Status, "runs", job.RunCount, "errors", job.ErrorCount,
			"last_error", job.LastError, "next_run", job.NextRun.Format(time.RFC3339))
	}
}

func registerJobs(ctx *cli.Context, sched *scheduler.Scheduler) error {
	err := sched.AddSingletonJob(
		constants.PrayerCheckJobID,
		constants.PrayerCheckJobName,
		"Toggle DND around prayer times",
		fmt.Sprintf("every %s", constants.CheckInterval),
		gocron.DurationJob(constants.CheckInterval),
		func(jobCtx context.Context) error {
			res, err := ctx.Tracker.Check(jobCtx)
			if err != nil {
				if errors.Is(err, silence.ErrPermissionDenied) {
					logger.Warn("DND permission missing, retrying next tick", "backend", ctx.DND.Name())
				}
				return err
			}
			logger.Info(describe(res))
			return nil
		},
		true,
	)
	if err != nil {
		return err
	}

	if ctx.Locator == nil || ctx.Locator.Name() == string(constants.LocationStatic) {
		return nil
	}
	return sched.AddSingletonJob(
		constants.LocationRefreshJobID,
		constants.LocationRefreshJobName,
		"Refresh the stored location",
		fmt.Sprintf("every %s", constants.LocationRefreshInterval),
		gocron.DurationJob(constants.LocationRefreshInterval),
		func(jobCtx context.Context) error {
			return refreshLocation(jobCtx, ctx)
		},
		true,
	)
}

// refreshLocation stores a new fix; a missing fix keeps the previous one
func refreshLocation(ctx context.Context, appCtx *cli.Context) error {
	locateCtx, cancel := context.WithTimeout(ctx, constants.LocateTimeout)
	defer cancel()

	fix, err := appCtx.Locator.Locate(locateCtx)
	if errors.Is(err, location.ErrNoFix) {
		logger.Info("No location fix, keeping stored location", "provider", appCtx.Locator.Name())
		return nil
	}
	if err != nil {
		return err
	}
	if err := appCtx.Tracker.UpdateLocation(fix.Latitude, fix.Longitude); err != nil {
		return err
	}
	logger.Info("Location updated", "fix", fix.String())
	return nil
}

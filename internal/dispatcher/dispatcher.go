// Package dispatcher runs the external scanner binary against each
// enumerated target in sequence and collects its raw output into the result
// log.
package dispatcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/datastore"
	"github.com/aleister1102/trufflex/internal/models"

	"github.com/rs/zerolog"
)

const stderrExcerptLimit = 2048

// Dispatcher shells out to the scanner once per target. Targets run one at
// a time: the scanner saturates memory and network on its own, and findings
// stay grouped per target in the result log.
type Dispatcher struct {
	config    config.ScannerConfig
	token     string
	runner    Runner
	resultLog *datastore.ResultLog
	memGuard  *memoryGuard
	logger    zerolog.Logger
}

// NewDispatcher creates a Dispatcher. The token is forwarded to git scans
// when non-empty; a nil runner selects the real subprocess runner.
func NewDispatcher(
	cfg config.ScannerConfig,
	githubToken string,
	runner Runner,
	resultLog *datastore.ResultLog,
	logger zerolog.Logger,
) *Dispatcher {
	if runner == nil {
		runner = NewExecRunner()
	}
	componentLogger := logger.With().Str("component", "Dispatcher").Logger()
	return &Dispatcher{
		config:    cfg,
		token:     githubToken,
		runner:    runner,
		resultLog: resultLog,
		memGuard:  newMemoryGuard(cfg.SystemMemThreshold, componentLogger),
		logger:    componentLogger,
	}
}

// Dispatch scans every target in order. A target whose scan cannot run is
// recorded and skipped; only context cancellation or a result log write
// failure aborts the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []models.ScanTarget) (models.ScanStats, error) {
	stats := models.ScanStats{}
	if len(targets) == 0 {
		d.logger.Info().Msg("No targets to scan")
		return stats, nil
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if i > 0 {
			d.interScanDelay(ctx, target)
		}
		d.memGuard.wait(ctx)

		stats.Attempted++
		if err := d.scanTarget(ctx, target); err != nil {
			var outErr *common.OutputError
			if errors.As(err, &outErr) {
				return stats, err
			}
			d.logger.Error().Err(err).Str("target", target.ID()).Msg("Scan failed, continuing with remaining targets")
			stats.SkippedTargets = append(stats.SkippedTargets, target.ID())
			continue
		}
		stats.Succeeded++
	}

	d.logger.Info().
		Int("attempted", stats.Attempted).
		Int("succeeded", stats.Succeeded).
		Int("skipped", len(stats.SkippedTargets)).
		Msg("Dispatch finished")
	return stats, nil
}

// scanTarget runs one scanner invocation and appends its stdout to the
// result log. Exit status alone never fails a target that produced output.
func (d *Dispatcher) scanTarget(ctx context.Context, target models.ScanTarget) error {
	inv := d.buildInvocation(target)
	d.logger.Info().Str("target", target.ID()).Str("kind", string(target.Kind)).Msg("Scanning target")
	d.logger.Debug().Str("binary", inv.Binary).Strs("args", inv.Args).Msg("Scanner invocation")

	runCtx := ctx
	if d.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(d.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	result, err := d.runner.Run(runCtx, inv)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = common.WrapError(common.ErrScannerUnavailable, inv.Binary)
		}
		return common.NewDispatchError(target.ID(), "scanner could not be launched", err)
	}

	output := bytes.TrimSpace(result.Stdout)
	if runCtx.Err() == context.DeadlineExceeded && len(output) == 0 {
		return common.NewDispatchError(target.ID(),
			fmt.Sprintf("scan timed out after %ds without output", d.config.TimeoutSeconds), runCtx.Err())
	}

	if result.ExitCode != 0 {
		if len(output) == 0 {
			return common.NewDispatchError(target.ID(),
				fmt.Sprintf("scanner exited with code %d and produced no output: %s",
					result.ExitCode, excerpt(result.Stderr)), nil)
		}
		d.logger.Warn().
			Int("exit_code", result.ExitCode).
			Str("target", target.ID()).
			Str("stderr", excerpt(result.Stderr)).
			Msg("Scanner exited non-zero but produced output, keeping findings")
	} else if len(result.Stderr) > 0 {
		d.logger.Debug().Str("target", target.ID()).Str("stderr", excerpt(result.Stderr)).Msg("Scanner stderr")
	}

	if len(output) == 0 {
		d.logger.Debug().Str("target", target.ID()).Msg("Scan produced no findings")
		return nil
	}

	// Stdout only: stderr carries progress and warnings, not findings, and
	// would corrupt the line-delimited JSON stream.
	if err := d.resultLog.Append(result.Stdout); err != nil {
		return common.NewOutputError(d.resultLog.Path(), err)
	}
	if err := d.resultLog.Sync(); err != nil {
		return common.NewOutputError(d.resultLog.Path(), err)
	}

	d.logger.Debug().Str("target", target.ID()).Int("bytes", len(output)).Msg("Appended scanner output to result log")
	return nil
}

// buildInvocation translates a target into the scanner's argv.
func (d *Dispatcher) buildInvocation(target models.ScanTarget) Invocation {
	binary := d.config.BinaryPath
	if binary == "" {
		binary = config.DefaultScannerBinary
	}

	if target.Kind == models.TargetKindDocker {
		args := []string{"docker", "--image", target.Reference, "--json"}
		if d.config.OnlyVerified {
			args = append(args, "--only-verified")
		}
		if d.config.NoUpdate {
			args = append(args, "--no-update")
		}
		return Invocation{Binary: binary, Args: args}
	}

	args := []string{"github", "--repo=" + target.RepoURL}
	if d.token != "" {
		args = append(args, "--token="+d.token)
	}
	args = append(args, "--json")
	return Invocation{Binary: binary, Args: args}
}

// interScanDelay spaces consecutive docker scans so tag sweeps do not hammer
// the registry.
func (d *Dispatcher) interScanDelay(ctx context.Context, target models.ScanTarget) {
	if target.Kind != models.TargetKindDocker || d.config.TagScanDelayMS <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(d.config.TagScanDelayMS) * time.Millisecond):
	}
}

// excerpt trims stderr for logging; the scanner's stderr can run to
// megabytes of progress output.
func excerpt(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if len(s) <= stderrExcerptLimit {
		return s
	}
	return s[:stderrExcerptLimit] + "...(truncated)"
}

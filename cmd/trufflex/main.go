package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/credentials"
	"github.com/aleister1102/trufflex/internal/datastore"
	"github.com/aleister1102/trufflex/internal/dispatcher"
	"github.com/aleister1102/trufflex/internal/dockerhub"
	"github.com/aleister1102/trufflex/internal/enumerator"
	"github.com/aleister1102/trufflex/internal/githubapi"
	"github.com/aleister1102/trufflex/internal/logger"
	"github.com/aleister1102/trufflex/internal/models"
	"github.com/aleister1102/trufflex/internal/reporter"

	"github.com/rs/zerolog"
)

func main() {
	fmt.Println("Trufflex scanner starting...")

	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}
	if gCfg == nil {
		log.Fatalf("[FATAL] Main: Loaded configuration is nil, though no error was reported. This should not happen.")
	}

	applyFlagOverrides(gCfg, flags)

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().Str("mode", string(flags.Mode)).Msg("Configuration loaded and validated")

	if flags.AllTags && !flags.Mode.IsDocker() {
		zLogger.Warn().Msg("--all-tags only affects docker modes and is ignored here")
	}

	// Ctrl+C stops between targets; findings already synced to the result
	// log survive and still reach the spreadsheet.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, stopping after the current scan...")
		cancel()
	}()

	if err := run(ctx, gCfg, flags, zLogger); err != nil {
		zLogger.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}
}

// applyFlagOverrides lets command-line flags win over config file values.
func applyFlagOverrides(gCfg *config.GlobalConfig, flags AppFlags) {
	if flags.OutputFile != "" {
		gCfg.OutputConfig.ReportFile = flags.OutputFile
	}
	if flags.LogLevel != "" {
		gCfg.LogConfig.LogLevel = flags.LogLevel
	}
}

// run executes the full pipeline: enumerate targets, dispatch the scanner
// per target, aggregate the result log, write the spreadsheet. The returned
// error is fatal; per-target failures are absorbed into the summary instead.
func run(ctx context.Context, gCfg *config.GlobalConfig, flags AppFlags, zLogger zerolog.Logger) (runErr error) {
	startTime := time.Now()
	sessionID := startTime.Format("20060102-150405")
	summary := models.NewRunSummary(sessionID, string(flags.Mode), targetSource(flags))

	// The summary line is emitted on every exit path, failures included.
	defer func() {
		if runErr != nil {
			summary.Status = models.RunStatusFailed
		}
		summary.Duration = time.Since(startTime)
		logSummary(zLogger, summary)
	}()

	creds, credErr := credentials.Load(flags.CredentialsFile, zLogger)
	if credErr != nil {
		zLogger.Warn().Err(credErr).Msg("Credentials file could not be used, credential-based modes are unavailable")
	}

	githubClient, err := githubapi.NewClient(gCfg.GitHubConfig, creds.GitHubToken, zLogger)
	if err != nil {
		return err
	}
	dockerClient, err := dockerhub.NewClient(gCfg.DockerHubConfig, zLogger)
	if err != nil {
		return err
	}

	enum := enumerator.NewEnumerator(githubClient, dockerClient, creds, gCfg.OutputConfig, zLogger)
	result, err := enumerate(ctx, enum, flags)
	if err != nil {
		return err
	}
	summary.EnumStats = result.Stats

	enumEvent := zLogger.Info().
		Int("targets", result.Stats.Emitted).
		Int("duplicates", result.Stats.Duplicates)
	if len(result.Stats.SkippedInputs) > 0 {
		enumEvent = enumEvent.Strs("skipped_inputs", result.Stats.SkippedInputs)
	}
	enumEvent.Msg("Enumeration finished")

	if len(result.Targets) == 0 {
		summary.Status = models.RunStatusNoTargets
		zLogger.Warn().Msg("No scan targets were produced, the spreadsheet will contain only the header row")
	}

	resultLog, err := datastore.NewResultLog(gCfg.OutputConfig, zLogger)
	if err != nil {
		return err
	}

	// The scanner only receives the token for own-account scans; list and
	// profile scans cover public repositories and run unauthenticated.
	githubToken := ""
	if flags.Mode == ModeGitOwn {
		githubToken = creds.GitHubToken
	}

	disp := dispatcher.NewDispatcher(gCfg.ScannerConfig, githubToken, nil, resultLog, zLogger)
	scanStats, dispatchErr := disp.Dispatch(ctx, result.Targets)
	summary.ScanStats = scanStats

	if err := resultLog.Close(); err != nil {
		zLogger.Warn().Err(err).Str("path", resultLog.Path()).Msg("Result log close failed")
	}

	if dispatchErr != nil {
		if errors.Is(dispatchErr, context.Canceled) || errors.Is(dispatchErr, context.DeadlineExceeded) {
			summary.Status = models.RunStatusInterrupted
			zLogger.Info().Msg("Dispatch interrupted, writing the spreadsheet from results collected so far")
		} else {
			return dispatchErr
		}
	}

	rep := reporter.NewReporter(zLogger)
	rows, err := rep.Aggregate(resultLog.Path())
	if err != nil {
		return err
	}
	summary.FindingRows = len(rows)

	if err := rep.WriteWorkbook(rows, gCfg.OutputConfig.ReportFile); err != nil {
		return err
	}
	summary.ReportPath = gCfg.OutputConfig.ReportFile
	return nil
}

// enumerate maps the selected mode onto its enumeration strategy.
func enumerate(ctx context.Context, enum *enumerator.Enumerator, flags AppFlags) (*enumerator.Result, error) {
	tagPolicy := models.TagPolicyLatest
	if flags.AllTags {
		tagPolicy = models.TagPolicyAll
	}

	switch flags.Mode {
	case ModeGitOwn:
		return enum.OwnAccount(ctx)
	case ModeGitRepoList:
		return enum.RepoList(flags.InputFile)
	case ModeGitProfiles:
		return enum.ProfileList(ctx, flags.InputFile)
	case ModeDockerProfiles:
		return enum.DockerProfiles(ctx, flags.InputFile, tagPolicy)
	case ModeDockerRepoList:
		return enum.DockerRepoList(ctx, flags.InputFile, tagPolicy)
	default:
		return nil, fmt.Errorf("unknown scan mode %q", flags.Mode)
	}
}

func targetSource(flags AppFlags) string {
	if flags.Mode == ModeGitOwn {
		return "github_account"
	}
	return flags.InputFile
}

func logSummary(zLogger zerolog.Logger, summary *models.RunSummary) {
	event := zLogger.Info().
		Str("session_id", summary.SessionID).
		Str("mode", summary.Mode).
		Str("target_source", summary.TargetSource).
		Int("targets", summary.EnumStats.Emitted).
		Int("scans_attempted", summary.ScanStats.Attempted).
		Int("scans_succeeded", summary.ScanStats.Succeeded).
		Int("finding_rows", summary.FindingRows).
		Str("report", summary.ReportPath).
		Dur("duration", summary.Duration).
		Str("status", string(summary.Status))
	if len(summary.ScanStats.SkippedTargets) > 0 {
		event = event.Strs("skipped_targets", summary.ScanStats.SkippedTargets)
	}
	event.Msg("Trufflex finished")
}

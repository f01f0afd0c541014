// Package enumerator turns a selected scan mode plus its input (the
// credential file, a list file, or both) into an ordered, deduplicated
// sequence of scan targets for the dispatcher.
package enumerator

import (
	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/credentials"
	"github.com/aleister1102/trufflex/internal/dockerhub"
	"github.com/aleister1102/trufflex/internal/githubapi"
	"github.com/aleister1102/trufflex/internal/listfile"
	"github.com/aleister1102/trufflex/internal/models"

	"github.com/rs/zerolog"
)

// Enumerator resolves scan modes into target lists using the GitHub and
// Docker Hub listing clients.
type Enumerator struct {
	github *githubapi.Client
	docker *dockerhub.Client
	creds  credentials.Credentials
	output config.OutputConfig
	logger zerolog.Logger
}

// NewEnumerator creates an Enumerator. Clients for services a mode does not
// touch are still required; they stay idle.
func NewEnumerator(
	githubClient *githubapi.Client,
	dockerClient *dockerhub.Client,
	creds credentials.Credentials,
	outputCfg config.OutputConfig,
	logger zerolog.Logger,
) *Enumerator {
	return &Enumerator{
		github: githubClient,
		docker: dockerClient,
		creds:  creds,
		output: outputCfg,
		logger: logger.With().Str("component", "Enumerator").Logger(),
	}
}

// Result is the outcome of one enumeration call.
type Result struct {
	Targets []models.ScanTarget
	Stats   models.EnumStats
}

// collector accumulates targets in discovery order and collapses repeated
// identities onto their first occurrence.
type collector struct {
	targets []models.ScanTarget
	seen    map[string]struct{}
	dups    int
	skipped []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{})}
}

// add appends the target unless an identical one was already collected.
func (c *collector) add(target models.ScanTarget) bool {
	id := target.ID()
	if _, exists := c.seen[id]; exists {
		c.dups++
		return false
	}
	c.seen[id] = struct{}{}
	c.targets = append(c.targets, target)
	return true
}

func (c *collector) result() *Result {
	return &Result{
		Targets: c.targets,
		Stats: models.EnumStats{
			Emitted:       len(c.targets),
			Duplicates:    c.dups,
			SkippedInputs: c.skipped,
		},
	}
}

// skipEntry records an input entry whose listing failed and moves on. A
// single bad account or namespace never aborts the remaining entries.
func (e *Enumerator) skipEntry(c *collector, entry, reason string, err error) {
	enumErr := common.NewEnumerationError(entry, reason, err)
	e.logger.Warn().Err(enumErr).Msg("Skipping enumeration entry")
	c.skipped = append(c.skipped, entry)
}

// writeListing records discovered identifiers for user inspection. Listing
// files are a courtesy artifact: failing to write one does not fail the run.
func (e *Enumerator) writeListing(path string, lines []string) {
	if path == "" {
		return
	}
	if err := listfile.WriteLines(path, lines, e.logger); err != nil {
		e.logger.Warn().Err(err).Str("filePath", path).Msg("Failed to write listing file")
	}
}

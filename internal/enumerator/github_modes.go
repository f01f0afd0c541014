package enumerator

import (
	"context"
	"sort"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/githubapi"
	"github.com/aleister1102/trufflex/internal/listfile"
	"github.com/aleister1102/trufflex/internal/models"
)

// OwnAccount enumerates every repository owned by the token's account plus
// every repository of each organization the account belongs to, in that
// order. It also writes the personal and organization listing files.
func (e *Enumerator) OwnAccount(ctx context.Context) (*Result, error) {
	if !e.github.HasToken() {
		return nil, common.NewConfigurationError("github", "token",
			"own-account mode requires a GitHub token in cred.conf or GITHUB_TOKEN")
	}

	c := newCollector()

	var repoURLs []string
	e.drainRepoPages(ctx, c, "own repositories", e.github.OwnRepos(), func(repoURL string) {
		repoURLs = append(repoURLs, repoURL)
	})

	orgNames := e.listOwnOrgs(ctx, c)

	// Listing files are sorted for readability; target order stays the
	// discovery order, so only copies get sorted here.
	e.writeListing(e.output.PersonalReposFile, sortedCopy(repoURLs))
	e.writeListing(e.output.OrgsFile, sortedCopy(orgNames))

	for _, org := range orgNames {
		e.drainRepoPages(ctx, c, "organization "+org, e.github.OrgRepos(org), nil)
	}

	result := c.result()
	e.logger.Info().
		Int("targets", result.Stats.Emitted).
		Int("personalRepos", len(repoURLs)).
		Int("organizations", len(orgNames)).
		Msg("Own-account enumeration finished")
	return result, nil
}

// RepoList enumerates git targets from a file of repository URLs taken
// verbatim, one per line.
func (e *Enumerator) RepoList(path string) (*Result, error) {
	lines, err := listfile.ReadLines(path, e.logger)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	for _, line := range lines {
		c.add(models.NewGitRepoTarget(line))
	}

	result := c.result()
	e.logger.Info().
		Str("filePath", path).
		Int("targets", result.Stats.Emitted).
		Int("duplicates", result.Stats.Duplicates).
		Msg("Repository list enumeration finished")
	return result, nil
}

// ProfileList enumerates the public repositories of every GitHub profile
// listed in the file. Profiles may be bare usernames or profile URLs.
func (e *Enumerator) ProfileList(ctx context.Context, path string) (*Result, error) {
	lines, err := listfile.ReadLines(path, e.logger)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	for _, line := range lines {
		username, err := githubapi.UsernameFromProfileURL(line)
		if err != nil {
			e.skipEntry(c, line, "invalid profile entry", err)
			continue
		}
		e.drainRepoPages(ctx, c, line, e.github.UserRepos(username), nil)
	}

	result := c.result()
	e.logger.Info().
		Str("filePath", path).
		Int("profiles", len(lines)).
		Int("targets", result.Stats.Emitted).
		Int("skipped", len(result.Stats.SkippedInputs)).
		Msg("Profile list enumeration finished")
	return result, nil
}

// drainRepoPages walks a paginated repository listing page by page, adding a
// git target per repository. A mid-listing failure keeps everything that
// arrived before it and marks the entry skipped.
func (e *Enumerator) drainRepoPages(
	ctx context.Context,
	c *collector,
	entry string,
	pages *githubapi.RepoPages,
	each func(repoURL string),
) {
	for {
		repos, err := pages.Next(ctx)
		if err != nil {
			e.skipEntry(c, entry, "repository listing failed", err)
			return
		}
		if repos == nil {
			return
		}
		for _, repo := range repos {
			repoURL := repo.URL()
			c.add(models.NewGitRepoTarget(repoURL))
			if each != nil {
				each(repoURL)
			}
		}
	}
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

// listOwnOrgs returns the organization logins of the token's account.
func (e *Enumerator) listOwnOrgs(ctx context.Context, c *collector) []string {
	var names []string
	pages := e.github.OwnOrgs()
	for {
		orgs, err := pages.Next(ctx)
		if err != nil {
			e.skipEntry(c, "own organizations", "organization listing failed", err)
			return names
		}
		if orgs == nil {
			return names
		}
		for _, org := range orgs {
			names = append(names, org.Login)
		}
	}
}

package enumerator

import (
	"context"

	"github.com/aleister1102/trufflex/internal/common"
	"github.com/aleister1102/trufflex/internal/dockerhub"
	"github.com/aleister1102/trufflex/internal/listfile"
	"github.com/aleister1102/trufflex/internal/models"
)

const latestTag = "latest"

// DockerProfiles expands every Docker Hub namespace listed in the file into
// its repositories and emits one target per repository according to the tag
// policy. The discovered repositories are written to the images listing file.
func (e *Enumerator) DockerProfiles(ctx context.Context, path string, policy models.TagPolicy) (*Result, error) {
	if err := e.dockerLogin(ctx); err != nil {
		return nil, err
	}

	lines, err := listfile.ReadLines(path, e.logger)
	if err != nil {
		return nil, err
	}

	c := newCollector()
	var repoNames []string
	for _, line := range lines {
		namespace := dockerhub.NamespaceFromURL(line)
		if namespace == "" {
			e.skipEntry(c, line, "invalid namespace entry", nil)
			continue
		}

		before := len(repoNames)
		pages := e.docker.Repositories(namespace)
		for {
			repos, err := pages.Next(ctx)
			if err != nil {
				e.skipEntry(c, line, "repository listing failed", err)
				break
			}
			if repos == nil {
				break
			}
			for _, repo := range repos {
				owner := repo.Namespace
				if owner == "" {
					owner = namespace
				}
				repoNames = append(repoNames, owner+"/"+repo.Name)
			}
		}
		e.logger.Debug().
			Str("namespace", namespace).
			Int("repositories", len(repoNames)-before).
			Msg("Expanded Docker Hub namespace")
	}

	e.writeListing(e.output.ImagesFile, repoNames)
	e.expandDockerRepos(ctx, c, repoNames, policy)

	result := c.result()
	e.logger.Info().
		Str("filePath", path).
		Int("repositories", len(repoNames)).
		Int("targets", result.Stats.Emitted).
		Msg("Docker profile enumeration finished")
	return result, nil
}

// DockerRepoList emits one target per "namespace/repository" line according
// to the tag policy. The lines are recorded in the images listing file.
func (e *Enumerator) DockerRepoList(ctx context.Context, path string, policy models.TagPolicy) (*Result, error) {
	if err := e.dockerLogin(ctx); err != nil {
		return nil, err
	}

	lines, err := listfile.ReadLines(path, e.logger)
	if err != nil {
		return nil, err
	}

	e.writeListing(e.output.ImagesFile, lines)

	c := newCollector()
	e.expandDockerRepos(ctx, c, lines, policy)

	result := c.result()
	e.logger.Info().
		Str("filePath", path).
		Int("repositories", len(lines)).
		Int("targets", result.Stats.Emitted).
		Msg("Docker repository list enumeration finished")
	return result, nil
}

// dockerLogin guards the docker modes on the credential file and performs
// the JWT login. Private repositories and their tags stay invisible without
// it.
func (e *Enumerator) dockerLogin(ctx context.Context) error {
	if !e.creds.HasDocker() {
		return common.NewConfigurationError("docker", "credentials",
			"docker modes require a Docker Hub username and password in cred.conf")
	}
	if err := e.docker.Login(ctx, e.creds.DockerUsername, e.creds.DockerPassword); err != nil {
		return common.WrapError(err, "Docker Hub login failed")
	}
	return nil
}

// expandDockerRepos emits the scan targets for a list of repository names
// according to the tag policy.
func (e *Enumerator) expandDockerRepos(ctx context.Context, c *collector, repos []string, policy models.TagPolicy) {
	for _, repo := range repos {
		if policy != models.TagPolicyAll {
			c.add(models.NewDockerImageTarget(repo, latestTag))
			continue
		}
		e.expandAllTags(ctx, c, repo)
	}
}

// expandAllTags walks the tag listing of one repository. Tags carrying
// per-architecture digests become one pinned target per digest; digest-less
// tags fall back to the plain tag reference.
func (e *Enumerator) expandAllTags(ctx context.Context, c *collector, repo string) {
	pages := e.docker.Tags(repo)
	for {
		tags, err := pages.Next(ctx)
		if err != nil {
			e.skipEntry(c, repo, "tag listing failed", err)
			return
		}
		if tags == nil {
			return
		}
		for _, tag := range tags {
			if dockerhub.SkipTag(tag.Name) {
				e.logger.Debug().Str("repository", repo).Str("tag", tag.Name).Msg("Skipping non-image tag")
				continue
			}
			pinned := false
			for _, img := range tag.Images {
				if img.Digest == "" {
					continue
				}
				c.add(models.NewDockerDigestTarget(repo, img.Digest))
				pinned = true
			}
			if !pinned {
				c.add(models.NewDockerImageTarget(repo, tag.Name))
			}
		}
	}
}

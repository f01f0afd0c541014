package models

import "fmt"

// TargetKind discriminates the scan target variants.
type TargetKind string

const (
	TargetKindGit    TargetKind = "git"
	TargetKindDocker TargetKind = "docker"
)

// TagPolicy selects which tags of a Docker repository are scanned.
type TagPolicy string

const (
	TagPolicyLatest TagPolicy = "latest"
	TagPolicyAll    TagPolicy = "all"
)

// ScanTarget is one unit of work for the dispatcher: either a git repository
// URL or a fully qualified Docker image reference. Targets are produced by
// the enumerator in discovery order and deduplicated by ID.
type ScanTarget struct {
	Kind TargetKind

	// RepoURL is set for git targets, e.g. "https://github.com/acme/app".
	RepoURL string

	// Image and Reference are set for docker targets. Image is the
	// "namespace/repository" name, Reference the full "image:tag" or
	// "image@digest" form handed to the scanner.
	Image     string
	Reference string
}

// NewGitRepoTarget creates a git repository scan target.
func NewGitRepoTarget(repoURL string) ScanTarget {
	return ScanTarget{Kind: TargetKindGit, RepoURL: repoURL}
}

// NewDockerImageTarget creates a docker image scan target for a tag.
func NewDockerImageTarget(image, tag string) ScanTarget {
	return ScanTarget{
		Kind:      TargetKindDocker,
		Image:     image,
		Reference: fmt.Sprintf("%s:%s", image, tag),
	}
}

// NewDockerDigestTarget creates a docker image scan target pinned to a digest.
func NewDockerDigestTarget(image, digest string) ScanTarget {
	return ScanTarget{
		Kind:      TargetKindDocker,
		Image:     image,
		Reference: fmt.Sprintf("%s@%s", image, digest),
	}
}

// ID returns the identity used for deduplication and user-facing logging.
func (t ScanTarget) ID() string {
	if t.Kind == TargetKindGit {
		return t.RepoURL
	}
	return t.Reference
}

// String implements fmt.Stringer.
func (t ScanTarget) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID())
}

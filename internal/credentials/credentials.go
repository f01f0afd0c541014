// Package credentials loads the cred.conf file holding the GitHub token and
// Docker Hub login. A missing file or section never fails the run; modes
// that need an absent credential report that when they are selected.
package credentials

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/aleister1102/trufflex/internal/common"
)

// DefaultPath is the credentials file looked up when no flag overrides it.
const DefaultPath = "cred.conf"

// Credentials holds everything cred.conf can provide. Absent fields stay
// empty and disable the scan modes that need them.
type Credentials struct {
	GitHubToken    string
	DockerUsername string
	DockerPassword string
}

// HasGitHub reports whether token-authenticated GitHub modes are available.
func (c Credentials) HasGitHub() bool { return c.GitHubToken != "" }

// HasDocker reports whether authenticated Docker Hub access is available.
func (c Credentials) HasDocker() bool { return c.DockerUsername != "" && c.DockerPassword != "" }

// credFile mirrors the on-disk two-section list format:
//
//	github:
//	  - <token>
//	docker:
//	  - <username>:<password>
type credFile struct {
	GitHub []string `yaml:"github"`
	Docker []string `yaml:"docker"`
}

// Load reads the credentials file at path. A missing file or section is
// soft: the affected fields stay empty and the error is nil. A file that
// exists but cannot be read or parsed comes back as an error alongside
// whatever was recovered. On every path, a github token the file did not
// provide is filled from the GITHUB_TOKEN environment variable.
func Load(path string, logger zerolog.Logger) (Credentials, error) {
	credLogger := logger.With().Str("component", "CredentialLoader").Str("path", path).Logger()

	creds, err := parseFile(path, credLogger)

	if creds.GitHubToken == "" {
		if envToken := os.Getenv("GITHUB_TOKEN"); envToken != "" {
			credLogger.Debug().Msg("Using GITHUB_TOKEN from environment")
			creds.GitHubToken = envToken
		}
	}

	return creds, err
}

func parseFile(path string, credLogger zerolog.Logger) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		credLogger.Warn().Msg("Credentials file not found, credential-based modes are unavailable")
		return creds, nil
	}
	if err != nil {
		return creds, common.WrapError(err, "could not read credentials file "+path)
	}

	var cf credFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return creds, common.WrapError(err, "could not parse credentials file "+path)
	}

	if len(cf.GitHub) > 0 {
		creds.GitHubToken = strings.TrimSpace(cf.GitHub[0])
	}
	if len(cf.Docker) > 0 {
		entry := strings.TrimSpace(cf.Docker[0])
		username, password, ok := strings.Cut(entry, ":")
		if !ok || username == "" {
			credLogger.Warn().Msg("Docker credentials must be in username:password format, docker login is unavailable")
		} else {
			creds.DockerUsername = username
			creds.DockerPassword = password
		}
	}

	return creds, nil
}

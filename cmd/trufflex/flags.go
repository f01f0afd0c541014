package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aleister1102/trufflex/internal/config"
	"github.com/aleister1102/trufflex/internal/credentials"
)

// ScanMode identifies the enumeration strategy selected on the command line.
type ScanMode string

const (
	ModeGitOwn         ScanMode = "git-me"
	ModeGitRepoList    ScanMode = "git-other"
	ModeGitProfiles    ScanMode = "git-profile"
	ModeDockerProfiles ScanMode = "docker-profile"
	ModeDockerRepoList ScanMode = "docker-repo"
)

// IsDocker reports whether the mode scans Docker Hub images.
func (m ScanMode) IsDocker() bool {
	return m == ModeDockerProfiles || m == ModeDockerRepoList
}

// NeedsInputFile reports whether the mode reads its targets from a list file.
func (m ScanMode) NeedsInputFile() bool {
	return m != ModeGitOwn
}

type AppFlags struct {
	Mode             ScanMode
	InputFile        string
	OutputFile       string
	CredentialsFile  string
	GlobalConfigFile string
	AllTags          bool
	LogLevel         string
}

func ParseFlags() AppFlags {
	gitMe := flag.Bool("git-me", false, "Scan every repository of the authenticated GitHub account, organization repositories included")
	gitOther := flag.Bool("git-other", false, "Scan the GitHub repository URLs listed in the -f file")
	gitProfile := flag.Bool("git-profile", false, "Scan every public repository of the GitHub profiles listed in the -f file")
	dockerProfile := flag.Bool("docker-profile", false, "Scan every Docker Hub repository under the profiles listed in the -f file")
	dockerRepo := flag.Bool("docker-repo", false, "Scan the Docker Hub repositories listed in the -f file")

	inputFile := flag.String("file", "", "Path to a text file with one repository or profile per line")
	inputFileAlias := flag.String("f", "", "Alias for -file")

	outputFile := flag.String("output", "", "Excel output filename (default "+config.DefaultReportFile+")")
	outputFileAlias := flag.String("o", "", "Alias for -output")

	credsFile := flag.String("creds", credentials.DefaultPath, "Path to the credentials file")

	globalConfigFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	globalConfigFileAlias := flag.String("c", "", "Alias for -config")

	allTags := flag.Bool("all-tags", false, "Scan every tag of each Docker repository instead of :latest only")

	logLevel := flag.String("log-level", "", "Log level override: trace, debug, info, warn, error")

	flag.Parse()

	flags := AppFlags{
		CredentialsFile: *credsFile,
		AllTags:         *allTags,
		LogLevel:        *logLevel,
	}

	if *inputFile != "" {
		flags.InputFile = *inputFile
	} else if *inputFileAlias != "" {
		flags.InputFile = *inputFileAlias
	}

	if *outputFile != "" {
		flags.OutputFile = *outputFile
	} else if *outputFileAlias != "" {
		flags.OutputFile = *outputFileAlias
	}

	if *globalConfigFile != "" {
		flags.GlobalConfigFile = *globalConfigFile
	} else if *globalConfigFileAlias != "" {
		flags.GlobalConfigFile = *globalConfigFileAlias
	}

	selected := 0
	for _, candidate := range []struct {
		set  bool
		mode ScanMode
	}{
		{*gitMe, ModeGitOwn},
		{*gitOther, ModeGitRepoList},
		{*gitProfile, ModeGitProfiles},
		{*dockerProfile, ModeDockerProfiles},
		{*dockerRepo, ModeDockerRepoList},
	} {
		if candidate.set {
			flags.Mode = candidate.mode
			selected++
		}
	}

	if selected == 0 {
		usageError("one of --git-me, --git-other, --git-profile, --docker-profile, --docker-repo is required")
	}
	if selected > 1 {
		usageError("scan modes are mutually exclusive, pick exactly one")
	}
	if flags.Mode.NeedsInputFile() && flags.InputFile == "" {
		usageError(fmt.Sprintf("--%s requires -f <file>", flags.Mode))
	}

	return flags
}

func usageError(msg string) {
	fmt.Fprintln(os.Stderr, "[FATAL] "+msg)
	flag.Usage()
	os.Exit(2)
}

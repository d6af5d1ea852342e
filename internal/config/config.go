package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Analyzer names accepted in configuration.
const (
	AnalyzerNodeCount   = "nodecount"
	AnalyzerInheritance = "inheritance"
	AnalyzerCoupling    = "coupling"
	AnalyzerCyclomatic  = "cyclomatic"
	AnalyzerCodeRank    = "coderank"
)

// KnownAnalyzers lists every analyzer name in report order.
var KnownAnalyzers = []string{
	AnalyzerNodeCount,
	AnalyzerInheritance,
	AnalyzerCoupling,
	AnalyzerCyclomatic,
	AnalyzerCodeRank,
}

// Default limits.
const (
	DefaultMaxFileSize = 4 * 1024 * 1024
	DefaultMaxDepth    = 4096
	DefaultDebounceMs  = 300
)

type Config struct {
	Version     int
	Project     Project
	Analyzers   []string
	CodeRank    CodeRank
	Index       Index
	Performance Performance
	Cache       Cache
	Watch       Watch
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type CodeRank struct {
	Modes []string // "inheritance", "property", "method"
}

type Index struct {
	MaxFileSize      int64
	Extensions       []string // file extensions parsed as PHP
	FollowSymlinks   bool
	RespectGitignore bool // Process .gitignore files for additional exclusions
}

type Performance struct {
	Workers  int // parallel parsers, 0 = auto-detect
	MaxDepth int // maximum syntax tree depth walked
}

type Cache struct {
	Dir string // empty disables the unit cache
}

type Watch struct {
	DebounceMs int
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads ~/.pdepend.kdl as a base and merges the project
// configuration found in rootDir over it. A project .pdepend.kdl wins over
// pdepend.toml. path, when set, names an explicit configuration file.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if rootDir != "" {
			cfg.Project.Root = rootDir
		}
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	var baseConfig *Config
	if err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}
	if projectConfig == nil {
		if projectConfig, err = LoadTOML(searchDir); err != nil {
			return nil, err
		}
	}

	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = absOr(searchDir)
		return baseConfig, nil
	}

	cfg := Default()
	cfg.Project.Root = absOr(searchDir)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// Default returns the built-in configuration rooted at the working
// directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		Version:   1,
		Project:   Project{Root: cwd},
		Analyzers: append([]string(nil), KnownAnalyzers...),
		CodeRank:  CodeRank{Modes: []string{"inheritance"}},
		Index: Index{
			MaxFileSize:      DefaultMaxFileSize,
			Extensions:       []string{".php"},
			FollowSymlinks:   false,
			RespectGitignore: true,
		},
		Performance: Performance{
			Workers:  runtime.NumCPU(),
			MaxDepth: DefaultMaxDepth,
		},
		Watch:   Watch{DebounceMs: DefaultDebounceMs},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/vendor/**",
			"**/node_modules/**",
			"**/var/cache/**",
		},
	}
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		merged.Exclude = DeduplicatePatterns(append(append([]string(nil), base.Exclude...), project.Exclude...))
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// EnrichExclusionsWithBuildArtifacts adds the dependency and output
// directories declared by the project's build files to the exclusions.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}

	detector := NewBuildArtifactDetector(c.Project.Root)
	if detected := detector.DetectOutputDirectories(); len(detected) > 0 {
		c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
	}
}

func absOr(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

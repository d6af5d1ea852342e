package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// TOMLFileName is read when the project has no .pdepend.kdl.
const TOMLFileName = "pdepend.toml"

// tomlFile mirrors the KDL sections. Pointers tell an absent key from a
// zero value so that only present keys override defaults.
type tomlFile struct {
	Analyzers []string `toml:"analyzers"`
	Include   []string `toml:"include"`
	Exclude   []string `toml:"exclude"`
	Project   struct {
		Root string `toml:"root"`
		Name string `toml:"name"`
	} `toml:"project"`
	CodeRank struct {
		Mode []string `toml:"mode"`
	} `toml:"coderank"`
	Index struct {
		MaxFileSize      *string  `toml:"max_file_size"`
		Extensions       []string `toml:"extensions"`
		FollowSymlinks   *bool    `toml:"follow_symlinks"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
	} `toml:"index"`
	Performance struct {
		Workers  *int `toml:"workers"`
		MaxDepth *int `toml:"max_depth"`
	} `toml:"performance"`
	Cache struct {
		Dir string `toml:"dir"`
	} `toml:"cache"`
	Watch struct {
		DebounceMs *int `toml:"debounce_ms"`
	} `toml:"watch"`
}

// LoadTOML attempts to load configuration from pdepend.toml in
// projectRoot. It returns nil, nil when there is none.
func LoadTOML(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, TOMLFileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", TOMLFileName, err)
	}

	cfg, err := parseTOML(content)
	if err != nil {
		return nil, err
	}
	resolveRoot(cfg, projectRoot)
	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default()
	cfg.Project.Root = f.Project.Root
	cfg.Project.Name = f.Project.Name
	if f.Analyzers != nil {
		cfg.Analyzers = f.Analyzers
	}
	if f.CodeRank.Mode != nil {
		cfg.CodeRank.Modes = f.CodeRank.Mode
	}
	if f.Index.MaxFileSize != nil {
		size, err := parseSize(*f.Index.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("invalid index.max_file_size %q: %w", *f.Index.MaxFileSize, err)
		}
		cfg.Index.MaxFileSize = size
	}
	if f.Index.Extensions != nil {
		cfg.Index.Extensions = f.Index.Extensions
	}
	if f.Index.FollowSymlinks != nil {
		cfg.Index.FollowSymlinks = *f.Index.FollowSymlinks
	}
	if f.Index.RespectGitignore != nil {
		cfg.Index.RespectGitignore = *f.Index.RespectGitignore
	}
	if f.Performance.Workers != nil {
		cfg.Performance.Workers = *f.Performance.Workers
	}
	if f.Performance.MaxDepth != nil {
		cfg.Performance.MaxDepth = *f.Performance.MaxDepth
	}
	cfg.Cache.Dir = f.Cache.Dir
	if f.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *f.Watch.DebounceMs
	}
	cfg.Include = append(cfg.Include, f.Include...)
	if f.Exclude != nil {
		cfg.Exclude = f.Exclude
	}
	return cfg, nil
}

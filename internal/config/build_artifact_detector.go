// Build artifact detection from project build files.
// Parses composer.json and package.json to find dependency and output
// directories that hold no first-party PHP.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// BuildArtifactDetector finds dependency and build output directories
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns glob patterns to exclude, e.g. "**/lib/**"
// for a composer vendor-dir of "lib".
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectComposerOutputs()...)
	patterns = append(patterns, bad.detectJavaScriptOutputs()...)
	return patterns
}

// composerJSON is the subset of composer.json that names directories.
type composerJSON struct {
	Config struct {
		VendorDir string `json:"vendor-dir"`
		BinDir    string `json:"bin-dir"`
	} `json:"config"`
}

// detectComposerOutputs reads vendor-dir and bin-dir from composer.json.
func (bad *BuildArtifactDetector) detectComposerOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "composer.json"))
	if err != nil {
		return nil
	}
	var composer composerJSON
	if json.Unmarshal(data, &composer) != nil {
		return nil
	}

	var patterns []string
	for _, dir := range []string{composer.Config.VendorDir, composer.Config.BinDir} {
		if p := dirPattern(dir); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// detectJavaScriptOutputs finds front-end build outputs, which may contain
// compiled templates with a .php extension.
func (bad *BuildArtifactDetector) detectJavaScriptOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "package.json"))
	if err != nil {
		return nil
	}
	var pkg map[string]interface{}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}

	var patterns []string
	if buildConfig, ok := pkg["build"].(map[string]interface{}); ok {
		if outDir, ok := buildConfig["outDir"].(string); ok {
			if p := dirPattern(outDir); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

func dirPattern(dir string) string {
	dir = strings.Trim(filepath.ToSlash(strings.TrimSpace(dir)), "/")
	dir = strings.TrimPrefix(dir, "./")
	if dir == "" || dir == "." {
		return ""
	}
	return "**/" + dir + "/**"
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}

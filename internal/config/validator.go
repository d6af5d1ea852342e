package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/hbollon/go-edlib"

	pderrors "github.com/rouffj/pdepend/internal/errors"
)

// CodeRankModes lists the valid coderank modes.
var CodeRankModes = []string{"inheritance", "property", "method"}

// minSuggestionSimilarity is the Jaro-Winkler similarity a known name needs
// to be offered as a correction.
const minSuggestionSimilarity = 0.7

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return pderrors.NewConfigError("project", "", err)
	}

	if err := v.validateAnalyzers(cfg.Analyzers); err != nil {
		return err
	}

	if err := v.validateCodeRank(&cfg.CodeRank); err != nil {
		return err
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return pderrors.NewConfigError("index", "", err)
	}

	if err := v.validatePerformanceConfig(&cfg.Performance); err != nil {
		return pderrors.NewConfigError("performance", "", err)
	}

	if cfg.Watch.DebounceMs < 0 {
		return pderrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs),
			errors.New("debounce cannot be negative"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

// validateAnalyzers rejects unknown analyzer names, suggesting the closest
// known one.
func (v *Validator) validateAnalyzers(names []string) error {
	if len(names) == 0 {
		return pderrors.NewConfigError("analyzers", "", errors.New("at least one analyzer must be enabled"))
	}
	for _, name := range names {
		if !contains(KnownAnalyzers, name) {
			return pderrors.NewConfigError("analyzers", name, errors.New("unknown analyzer")).
				WithSuggestion(Suggest(name, KnownAnalyzers))
		}
	}
	return nil
}

func (v *Validator) validateCodeRank(cr *CodeRank) error {
	for _, mode := range cr.Modes {
		if !contains(CodeRankModes, strings.ToLower(mode)) {
			return pderrors.NewConfigError("coderank.mode", mode, errors.New("unknown coderank mode")).
				WithSuggestion(Suggest(mode, CodeRankModes))
		}
	}
	return nil
}

func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", index.MaxFileSize)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	for _, ext := range index.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}

	return nil
}

func (v *Validator) validatePerformanceConfig(perf *Performance) error {
	// 0 means auto-detect
	if perf.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", perf.Workers)
	}

	if perf.MaxDepth < 0 {
		return fmt.Errorf("MaxDepth cannot be negative, got %d", perf.MaxDepth)
	}

	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Performance.MaxDepth == 0 {
		cfg.Performance.MaxDepth = DefaultMaxDepth
	}

	if cfg.Index.MaxFileSize == 0 {
		cfg.Index.MaxFileSize = DefaultMaxFileSize
	}

	if len(cfg.Index.Extensions) == 0 {
		cfg.Index.Extensions = []string{".php"}
	}

	if len(cfg.CodeRank.Modes) == 0 {
		cfg.CodeRank.Modes = []string{"inheritance"}
	}

	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}

	cfg.Analyzers = DeduplicatePatterns(cfg.Analyzers)
}

// Suggest returns the candidate most similar to name, or "" when none is
// close enough.
func Suggest(name string, candidates []string) string {
	best, bestScore := "", float32(0)
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(strings.ToLower(name), c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < minSuggestionSimilarity {
		return ""
	}
	return best
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}

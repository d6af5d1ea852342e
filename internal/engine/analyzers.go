package engine

import (
	"fmt"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/metrics/coderank"
	"github.com/rouffj/pdepend/internal/metrics/coupling"
	"github.com/rouffj/pdepend/internal/metrics/cyclomatic"
	"github.com/rouffj/pdepend/internal/metrics/inheritance"
	"github.com/rouffj/pdepend/internal/metrics/nodecount"
	"github.com/rouffj/pdepend/internal/registry"
)

// factory builds one analyzer for a run. Analyzers that resolve references
// get the run's registry.
type factory func(reg *registry.Registry, cfg *config.Config) (metrics.Analyzer, error)

var factories = map[string]factory{
	config.AnalyzerNodeCount: func(*registry.Registry, *config.Config) (metrics.Analyzer, error) {
		return nodecount.New(), nil
	},
	config.AnalyzerInheritance: func(*registry.Registry, *config.Config) (metrics.Analyzer, error) {
		return inheritance.New(), nil
	},
	config.AnalyzerCoupling: func(reg *registry.Registry, _ *config.Config) (metrics.Analyzer, error) {
		return coupling.New(reg), nil
	},
	config.AnalyzerCyclomatic: func(*registry.Registry, *config.Config) (metrics.Analyzer, error) {
		return cyclomatic.New(), nil
	},
	config.AnalyzerCodeRank: newCodeRank,
}

func newCodeRank(_ *registry.Registry, cfg *config.Config) (metrics.Analyzer, error) {
	var strategies []coderank.Strategy
	for _, mode := range cfg.CodeRank.Modes {
		st, err := coderank.ParseStrategy(mode)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, st)
	}
	return coderank.New(coderank.WithStrategies(strategies...)), nil
}

// NewAnalyzers creates the named analyzers, in the given order, bound to
// reg. Unknown names are an error.
func NewAnalyzers(names []string, reg *registry.Registry, cfg *config.Config) ([]metrics.Analyzer, error) {
	out := make([]metrics.Analyzer, 0, len(names))
	for _, name := range names {
		f, ok := factories[name]
		if !ok {
			msg := fmt.Sprintf("unknown analyzer %q", name)
			if s := config.Suggest(name, config.KnownAnalyzers); s != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", s)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		a, err := f(reg, cfg)
		if err != nil {
			return nil, fmt.Errorf("create analyzer %s: %w", name, err)
		}
		out = append(out, a)
	}
	return out, nil
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CheckerConfig are the options spec.md §6 says the compiler frontend
// supplies to the core: whether arithmetic overflow/divide-by-zero checks
// are inserted, and whether the solver should scrape qualifiers from the
// constraint it's given (spec.md §6, §8 "merge" scenario).
type CheckerConfig struct {
	CheckOverflow bool `yaml:"check_overflow"`
	ScrapeQuals   bool `yaml:"scrape_quals"`
}

// DefaultCheckerConfig matches the scenarios spec.md §8 describes as the
// common case: overflow checking on, qualifier scraping off.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{CheckOverflow: true, ScrapeQuals: false}
}

// projectFile mirrors a `.liquidgo.yaml` project file. Loading it is an
// ambient, non-core concern (spec.md §1 lists "configuration loading" as
// out of scope for the core) but the CLI driver still needs one, the way
// funxy's driver reads project settings before invoking the analyzer.
type projectFile struct {
	CheckOverflow *bool `yaml:"check_overflow"`
	ScrapeQuals   *bool `yaml:"scrape_quals"`
}

// LoadProjectFile reads a YAML project file and overlays it on top of the
// defaults. A missing file is not an error: callers get the defaults back.
func LoadProjectFile(path string) (CheckerConfig, error) {
	cfg := DefaultCheckerConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return cfg, err
	}
	if pf.CheckOverflow != nil {
		cfg.CheckOverflow = *pf.CheckOverflow
	}
	if pf.ScrapeQuals != nil {
		cfg.ScrapeQuals = *pf.ScrapeQuals
	}
	return cfg, nil
}

package pathconfig

import (
	"fmt"
	"regexp"
)

// Rule assigns properties to every location matching one of its patterns.
type Rule struct {
	Patterns   []string   `json:"patterns" yaml:"patterns" toml:"patterns"`
	Properties Properties `json:"properties" yaml:"properties" toml:"properties"`
}

type pattern struct {
	source string
	re     *regexp.Regexp
	err    error
}

type compiledRule struct {
	patterns   []pattern
	properties Properties
}

func compileRule(rule Rule) compiledRule {
	compiled := compiledRule{
		patterns:   make([]pattern, 0, len(rule.Patterns)),
		properties: rule.Properties,
	}
	for _, source := range rule.Patterns {
		re, err := regexp.Compile("(?i)" + source)
		if err != nil {
			err = fmt.Errorf("invalid path pattern %q: %w", source, err)
		}
		compiled.patterns = append(compiled.patterns, pattern{source: source, re: re, err: err})
	}
	return compiled
}

// matches reports whether any pattern finds a match in path. Invalid patterns
// are handed to onInvalid and treated as non-matches.
func (r compiledRule) matches(path string, onInvalid func(error)) bool {
	for _, p := range r.patterns {
		if p.err != nil {
			onInvalid(p.err)
			continue
		}
		if p.re.MatchString(path) {
			return true
		}
	}
	return false
}

// Package tags compiles user supplied "name=regex" rules used to label movements.
package tags

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// MalformedRuleError is returned for a rule without a "=" separator or with a
// pattern that does not compile.
type MalformedRuleError struct {
	Rule   string
	Source string // file path, empty for inline rules
	Line   int
	Err    error
}

func (e *MalformedRuleError) Error() string {
	where := "inline rule"
	if e.Source != "" {
		where = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed tag rule %q (%s): %v", e.Rule, where, e.Err)
	}
	return fmt.Sprintf("malformed tag rule %q (%s): expected name=pattern", e.Rule, where)
}

func (e *MalformedRuleError) Unwrap() error {
	return e.Err
}

// Set maps tag names to case-insensitive patterns, keeping declaration order.
type Set struct {
	names    []string
	patterns map[string]*regexp.Regexp
}

func NewSet() *Set {
	return &Set{patterns: map[string]*regexp.Regexp{}}
}

// Add registers a tag. A name that already exists keeps its position and takes
// the new pattern.
func (s *Set) Add(name string, pattern *regexp.Regexp) {
	if _, ok := s.patterns[name]; !ok {
		s.names = append(s.names, name)
	}
	s.patterns[name] = pattern
}

// AddRule parses and registers a single "name=pattern" rule.
func (s *Set) AddRule(rule string) error {
	name, pattern, err := parseRule(rule)
	if err != nil {
		return &MalformedRuleError{Rule: rule, Err: err}
	}
	s.Add(name, pattern)
	return nil
}

// AddFile reads one rule per line. Lines starting with "#" and blank lines are skipped.
func (s *Set) AddFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tag file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		name, pattern, err := parseRule(line)
		if err != nil {
			return &MalformedRuleError{Rule: line, Source: path, Line: lineNo, Err: err}
		}
		s.Add(name, pattern)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("tag file %s: %w", path, err)
	}
	return nil
}

// Names returns tag names in declaration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Match returns the names of all tags whose pattern matches the start of the
// description, in declaration order.
func (s *Set) Match(description string) []string {
	matched := []string{}
	if s == nil {
		return matched
	}
	for _, name := range s.names {
		if s.patterns[name].MatchString(description) {
			matched = append(matched, name)
		}
	}
	return matched
}

// Compile builds a Set from inline rules followed by rule files. Files are read
// after inline rules, so a file can override an inline tag of the same name.
func Compile(rules []string, files []string) (*Set, error) {
	set := NewSet()
	for _, rule := range rules {
		if err := set.AddRule(rule); err != nil {
			return nil, err
		}
	}
	for _, path := range files {
		if err := set.AddFile(path); err != nil {
			return nil, err
		}
	}
	return set, nil
}

var errMissingSeparator = errors.New("missing '=' separator")

func parseRule(rule string) (string, *regexp.Regexp, error) {
	name, pattern, ok := strings.Cut(rule, "=")
	if !ok {
		return "", nil, errMissingSeparator
	}
	name = strings.TrimSpace(name)
	pattern = strings.TrimSpace(strings.TrimSuffix(pattern, "\n"))
	if name == "" {
		return "", nil, errors.New("empty tag name")
	}

	re, err := regexp.Compile("(?i)^(?:" + pattern + ")")
	if err != nil {
		return "", nil, err
	}
	return name, re, nil
}

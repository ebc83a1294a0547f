// Package intesa extracts movements from Intesa Sanpaolo PDF account statements.
package intesa

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/viper"
)

const patternsKey = "statement.INTESA.patterns"

// Config holds every layout dependent pattern. It is built once at startup and
// shared read-only by the locator, the line classifier and the builder.
type Config struct {
	MovementsStart     string
	MovementsEnd       string
	MovementLine       *regexp.Regexp
	DateFormat         string
	SeparatorArtifacts []string
	Noise              []*regexp.Regexp
	Income             []*regexp.Regexp
}

func LoadConfig() (Config, error) {
	cfg := Config{
		MovementsStart:     viper.GetString(patternsKey + ".movements_start"),
		MovementsEnd:       viper.GetString(patternsKey + ".movements_end"),
		DateFormat:         viper.GetString(patternsKey + ".date_format"),
		SeparatorArtifacts: viper.GetStringSlice(patternsKey + ".separator_artifacts"),
	}
	if cfg.MovementsStart == "" || cfg.MovementsEnd == "" {
		return Config{}, errors.New("intesa: movements_start and movements_end must be set")
	}
	if cfg.DateFormat == "" {
		return Config{}, errors.New("intesa: date_format must be set")
	}

	line := viper.GetString(patternsKey + ".movement_line")
	if line == "" {
		return Config{}, errors.New("intesa: movement_line must be set")
	}
	var err error
	if cfg.MovementLine, err = regexp.Compile(line); err != nil {
		return Config{}, fmt.Errorf("intesa: movement_line: %w", err)
	}
	if cfg.Noise, err = compileAll("noise", viper.GetStringSlice(patternsKey+".noise"), ""); err != nil {
		return Config{}, err
	}
	// income phrases only count at the start of a description
	if cfg.Income, err = compileAll("income", viper.GetStringSlice(patternsKey+".income"), "(?i)^(?:%s)"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func compileAll(name string, patterns []string, wrap string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if wrap != "" {
			p = fmt.Sprintf(wrap, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("intesa: %s pattern %q: %w", name, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// IsIncome reports whether a cleaned description starts with one of the income phrases.
func (c Config) IsIncome(description string) bool {
	for _, re := range c.Income {
		if re.MatchString(description) {
			return true
		}
	}
	return false
}

package intesa

import "strings"

type LineKind int

const (
	LineContinuation LineKind = iota
	LineMovementStart
	LineNoise
	LineBlank
)

func (k LineKind) String() string {
	switch k {
	case LineMovementStart:
		return "movement"
	case LineNoise:
		return "noise"
	case LineBlank:
		return "blank"
	default:
		return "continuation"
	}
}

// Classify decides what a physical line is. Movement starts win over noise. The
// section marker lines count as noise so the closing balance is never folded
// into the last movement.
func (c Config) Classify(line string) LineKind {
	line = strings.TrimSpace(line)
	if line == "" {
		return LineBlank
	}
	if c.MovementLine.MatchString(line) {
		return LineMovementStart
	}
	if strings.HasPrefix(line, c.MovementsStart) || strings.HasPrefix(line, c.MovementsEnd) {
		return LineNoise
	}
	for _, re := range c.Noise {
		if re.MatchString(line) {
			return LineNoise
		}
	}
	return LineContinuation
}

// Record is a movement start line with the continuation lines folded into it.
type Record struct {
	Line         string
	Continuation []string
}

// Records groups a page's lines into movement records. Lines before the first
// movement are page header and are dropped. A noise line closes the open record,
// so whatever follows it up to the next movement start is dropped as well.
func (c Config) Records(text string) []Record {
	var records []Record
	open := false

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch c.Classify(line) {
		case LineMovementStart:
			records = append(records, Record{Line: line})
			open = true
		case LineContinuation:
			if open {
				last := &records[len(records)-1]
				last.Continuation = append(last.Continuation, line)
			}
		case LineNoise:
			open = false
		}
	}

	return records
}

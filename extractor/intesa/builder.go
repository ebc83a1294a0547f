package intesa

import (
	"strings"
	"time"

	"github.com/isparser/isparser/extractor/common"
	"github.com/isparser/isparser/extractor/tags"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Builder turns raw movement components into Movements. It is shared by the PDF
// and the spreadsheet paths so both normalize, sign and tag the same way.
type Builder struct {
	cfg  Config
	tags *tags.Set
}

func NewBuilder(cfg Config, tagSet *tags.Set) *Builder {
	if tagSet == nil {
		tagSet = tags.NewSet()
	}
	return &Builder{cfg: cfg, tags: tagSet}
}

// Build parses the raw date and amount tokens printed on a statement line.
func (b *Builder) Build(rawDate, rawAmount, description, line string) (common.Movement, error) {
	date, err := common.ParseDate(b.cfg.DateFormat, rawDate)
	if err != nil {
		return common.Movement{}, &common.ParseError{Field: "date", Token: rawDate, Line: line, Err: err}
	}
	amount, err := b.NormalizeAmount(rawAmount)
	if err != nil {
		return common.Movement{}, &common.ParseError{Field: "amount", Token: rawAmount, Line: line, Err: err}
	}
	return b.Assemble(date, amount, description), nil
}

func (b *Builder) NormalizeAmount(raw string) (decimal.Decimal, error) {
	return common.NormalizeAmount(raw, b.cfg.SeparatorArtifacts)
}

// Assemble cleans the description and derives sign and tags from it. The printed
// sign of amount is ignored: only income descriptions stay positive.
func (b *Builder) Assemble(date time.Time, amount decimal.Decimal, description string) common.Movement {
	description = CleanDescription(description)

	amount = amount.Abs()
	if !b.cfg.IsIncome(description) {
		amount = amount.Neg()
	}

	return common.Movement{
		Date:        common.DateOnly(date),
		Description: description,
		Amount:      amount,
		Tags:        b.tags.Match(description),
	}
}

// CleanDescription drops the asterisks the statement uses as filler and composes
// accented letters that PDF text extraction returns decomposed.
func CleanDescription(description string) string {
	return norm.NFC.String(strings.TrimSpace(strings.ReplaceAll(description, "*", "")))
}

// BuildRecord splits a movement line into its first date, description and the
// trailing amount, then appends the folded continuation lines to the description.
// The second date on the line is the value date and is not kept.
func (b *Builder) BuildRecord(rec Record) (common.Movement, error) {
	fields := strings.Fields(rec.Line)
	if len(fields) < 3 {
		return common.Movement{}, &common.ParseError{Field: "amount", Token: "", Line: rec.Line, Err: errMissingAmount}
	}

	parts := append([]string{}, fields[2:len(fields)-1]...)
	parts = append(parts, rec.Continuation...)

	return b.Build(fields[0], fields[len(fields)-1], strings.Join(parts, " "), rec.Line)
}

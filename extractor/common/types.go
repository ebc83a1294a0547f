package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Movement is a single transaction read from a statement. Amount is negative for
// outgoing money and positive for income.
type Movement struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Tags        []string        `json:"tags"`
}

func (m Movement) IsIncome() bool {
	return m.Amount.IsPositive()
}

func (m Movement) IsOutgoing() bool {
	return m.Amount.IsNegative()
}

// Page is the text of one statement page as produced by the PDF extractor.
type Page interface {
	Contains(text string) bool
	Text() string
}

// TextPage is a Page backed by its plain text.
type TextPage string

func (p TextPage) Contains(text string) bool {
	return strings.Contains(string(p), text)
}

func (p TextPage) Text() string {
	return string(p)
}

// PagesFromText wraps raw page texts, mostly useful for tests and the API text mode.
func PagesFromText(texts ...string) []Page {
	pages := make([]Page, 0, len(texts))
	for _, t := range texts {
		pages = append(pages, TextPage(t))
	}
	return pages
}

package intesa

import (
	"fmt"
	"strings"

	"github.com/isparser/isparser/extractor/common"
)

// PageRange is the inclusive span of pages listing the movements.
type PageRange struct {
	Start int
	End   int
}

func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

// PagesNotFoundError means the document does not carry both markers in order.
type PagesNotFoundError struct {
	StartMarker string
	EndMarker   string
	StartFound  bool
}

func (e *PagesNotFoundError) Error() string {
	if e.StartFound {
		return fmt.Sprintf("movement pages not found: no page contains %q after the movement listing start", e.EndMarker)
	}
	return fmt.Sprintf("movement pages not found: no page contains %q", e.StartMarker)
}

// Locate scans pages once. The start is the first page holding the start marker,
// the end the first page from there on holding the end marker; both can be the
// same page when the end marker follows the start marker on it.
func Locate(pages []common.Page, cfg Config) (PageRange, error) {
	start := -1
	for i, page := range pages {
		if start < 0 {
			if !page.Contains(cfg.MovementsStart) {
				continue
			}
			start = i
			// an end marker printed above the start marker belongs to the summary
			if strings.Contains(from(page.Text(), cfg.MovementsStart), cfg.MovementsEnd) {
				return PageRange{Start: i, End: i}, nil
			}
			continue
		}
		if page.Contains(cfg.MovementsEnd) {
			return PageRange{Start: start, End: i}, nil
		}
	}

	return PageRange{}, &PagesNotFoundError{
		StartMarker: cfg.MovementsStart,
		EndMarker:   cfg.MovementsEnd,
		StartFound:  start >= 0,
	}
}

package intesa

import (
	"errors"
	"strings"

	"github.com/isparser/isparser/extractor/common"
)

var errMissingAmount = errors.New("movement line has no amount column")

// ExtractPage returns the movements listed in one page's text, in page order.
func ExtractPage(text string, b *Builder) ([]common.Movement, error) {
	records := b.cfg.Records(text)
	movements := make([]common.Movement, 0, len(records))
	for _, rec := range records {
		m, err := b.BuildRecord(rec)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

// Extract locates the movement pages and extracts each of them. The callback
// receives every page's movements as one batch. Only the text between the two
// markers is read: the start page from its start marker, the end page up to its
// end marker.
func Extract(pages []common.Page, b *Builder, batch func(page int, movements []common.Movement)) (PageRange, error) {
	rng, err := Locate(pages, b.cfg)
	if err != nil {
		return rng, err
	}

	for i := rng.Start; i <= rng.End; i++ {
		text := pages[i].Text()
		if i == rng.Start {
			text = from(text, b.cfg.MovementsStart)
		}
		if i == rng.End {
			text = upTo(text, b.cfg.MovementsEnd)
		}
		movements, err := ExtractPage(text, b)
		if err != nil {
			return rng, err
		}
		batch(i, movements)
	}
	return rng, nil
}

func from(text, marker string) string {
	if i := strings.Index(text, marker); i >= 0 {
		return text[i:]
	}
	return text
}

func upTo(text, marker string) string {
	if i := strings.Index(text, marker); i >= 0 {
		return text[:i]
	}
	return text
}

package common

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	fallbackpdf "github.com/ledongthuc/pdf"
)

// ExtractPagesFromPDFReader returns the text of every page, one line per visual row.
// dslipak/pdf is tried first; documents it cannot decode are retried with
// ledongthuc/pdf before giving up.
func ExtractPagesFromPDFReader(reader io.Reader) ([]Page, error) {
	rAt, size, err := readerAtWithSize(reader)
	if err != nil {
		return nil, err
	}

	pages, primaryErr := extractPages(func() ([][]string, error) { return dslipakRows(rAt, size) })
	if primaryErr == nil {
		return pages, nil
	}

	pages, fallbackErr := extractPages(func() ([][]string, error) { return ledongthucRows(rAt, size) })
	if fallbackErr == nil {
		return pages, nil
	}

	return nil, fmt.Errorf("pdf text extraction failed: %w (fallback: %v)", primaryErr, fallbackErr)
}

func ExtractPagesFromPDF(path string) ([]Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ExtractPagesFromPDFReader(file)
}

func readerAtWithSize(reader io.Reader) (io.ReaderAt, int64, error) {
	if v, ok := reader.(io.ReaderAt); ok {
		if seeker, ok := reader.(io.Seeker); ok {
			cur, err := seeker.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, 0, err
			}
			end, err := seeker.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, 0, err
			}
			if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
				return nil, 0, err
			}
			return v, end, nil
		}
		return nil, 0, errors.New("reader is io.ReaderAt but not io.Seeker, cannot determine size")
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, 0, err
	}
	b := buf.Bytes()
	return bytes.NewReader(b), int64(len(b)), nil
}

// extractPages turns per-page rows into pages. Both PDF libraries panic on some
// malformed inputs, those panics come back as errors.
func extractPages(read func() ([][]string, error)) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	rowsByPage, err := read()
	if err != nil {
		return nil, err
	}

	pages = make([]Page, 0, len(rowsByPage))
	for _, rows := range rowsByPage {
		pages = append(pages, TextPage(strings.Join(rows, "\n")))
	}
	return pages, nil
}

func dslipakRows(rAt io.ReaderAt, size int64) ([][]string, error) {
	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return nil, err
	}

	return pageLines(r.NumPage(), func(no int) ([][]string, error) {
		page := r.Page(no)
		if page.V.IsNull() {
			return nil, nil
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, err
		}
		runs := make([][]string, 0, len(rows))
		for _, row := range rows {
			texts := make([]string, 0, len(row.Content))
			for _, text := range row.Content {
				texts = append(texts, text.S)
			}
			runs = append(runs, texts)
		}
		return runs, nil
	})
}

func ledongthucRows(rAt io.ReaderAt, size int64) ([][]string, error) {
	r, err := fallbackpdf.NewReader(rAt, size)
	if err != nil {
		return nil, err
	}

	return pageLines(r.NumPage(), func(no int) ([][]string, error) {
		page := r.Page(no)
		if page.V.IsNull() {
			return nil, nil
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, err
		}
		runs := make([][]string, 0, len(rows))
		for _, row := range rows {
			texts := make([]string, 0, len(row.Content))
			for _, text := range row.Content {
				texts = append(texts, text.S)
			}
			runs = append(runs, texts)
		}
		return runs, nil
	})
}

// pageLines joins the text runs of each row of pages 1..numPages into one line.
// rowTexts returns the runs of every row of a page, nil for an empty page.
func pageLines(numPages int, rowTexts func(no int) ([][]string, error)) ([][]string, error) {
	result := make([][]string, 0, numPages)
	for no := 1; no <= numPages; no++ {
		rows, err := rowTexts(no)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", no, err)
		}
		lines := make([]string, 0, len(rows))
		for _, texts := range rows {
			if line := strings.Join(texts, " "); line != "" {
				lines = append(lines, line)
			}
		}
		result = append(result, lines)
	}
	return result, nil
}

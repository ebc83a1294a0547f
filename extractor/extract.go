package extractor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/isparser/isparser/extractor/common"
	"github.com/isparser/isparser/extractor/intesa"
	"github.com/isparser/isparser/extractor/intesa_xlsx"
	"github.com/isparser/isparser/extractor/movements"
	"github.com/isparser/isparser/extractor/tags"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// InputKind selects the extraction path of an input file.
type InputKind int

const (
	KindDocument InputKind = iota
	KindSpreadsheet
)

func (k InputKind) String() string {
	if k == KindDocument {
		return "document"
	}
	return "spreadsheet"
}

// KindOf tells documents from spreadsheets by the file name alone: a .pdf suffix
// in any case is a document, anything else a spreadsheet.
func KindOf(filename string) InputKind {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return KindDocument
	}
	return KindSpreadsheet
}

// Parser feeds every parsed file into one date ordered collection. A file is
// either parsed completely or it leaves the collection untouched.
type Parser struct {
	builder    *intesa.Builder
	sheet      intesa_xlsx.Config
	collection *movements.Collection
	log        zerolog.Logger
}

func NewParser(builder *intesa.Builder, sheet intesa_xlsx.Config, log zerolog.Logger) *Parser {
	return &Parser{
		builder:    builder,
		sheet:      sheet,
		collection: movements.NewCollection(),
		log:        log,
	}
}

// NewParserFromConfig builds a parser from the loaded configuration. Configured
// tag rules and files come before the given ones of the same kind, so the given
// ones win on duplicate names.
func NewParserFromConfig(tagRules, tagFiles []string, log zerolog.Logger) (*Parser, error) {
	cfg, err := intesa.LoadConfig()
	if err != nil {
		return nil, err
	}

	rules := append(viper.GetStringSlice("tags"), tagRules...)
	files := append(viper.GetStringSlice("tags_files"), tagFiles...)
	tagSet, err := tags.Compile(rules, files)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("tags", tagSet.Names()).Msg("compiled tag rules")

	return NewParser(intesa.NewBuilder(cfg, tagSet), intesa_xlsx.LoadConfig(), log), nil
}

func (p *Parser) Movements() *movements.Collection {
	return p.collection
}

// Parse reads the statement at path, picking the extraction path from its name.
func (p *Parser) Parse(path string) error {
	kind := KindOf(path)
	log := p.log.With().Str("file", path).Str("kind", kind.String()).Logger()
	log.Debug().Msg("parsing")

	if kind == KindDocument {
		pages, err := common.ExtractPagesFromPDF(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Debug().Int("pages", len(pages)).Msg("extracted page text")
		return p.ParsePages(pages, path)
	}

	found, err := intesa_xlsx.ExtractFromFile(path, p.builder, p.sheet)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	p.addSpreadsheet(found, log)
	return nil
}

// ParseReader parses one statement read from r. filename decides the input kind
// and names the file in errors and logs.
func (p *Parser) ParseReader(r io.Reader, filename string) error {
	kind := KindOf(filename)
	log := p.log.With().Str("file", filename).Str("kind", kind.String()).Logger()
	log.Debug().Msg("parsing")

	if kind == KindDocument {
		pages, err := common.ExtractPagesFromPDFReader(r)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		log.Debug().Int("pages", len(pages)).Msg("extracted page text")
		return p.ParsePages(pages, filename)
	}

	found, err := intesa_xlsx.ExtractFromReader(r, p.builder, p.sheet)
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	p.addSpreadsheet(found, log)
	return nil
}

func (p *Parser) addSpreadsheet(found []common.Movement, log zerolog.Logger) {
	p.collection.AddBatch(found)
	log.Info().Int("movements", len(found)).Msg("parsed spreadsheet")
}

// ParsePages extracts the movements of an already read document.
func (p *Parser) ParsePages(pages []common.Page, source string) error {
	var batches [][]common.Movement
	rng, err := intesa.Extract(pages, p.builder, func(page int, found []common.Movement) {
		p.log.Debug().Str("file", source).Int("page", page+1).Int("movements", len(found)).Msg("parsed page")
		batches = append(batches, found)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	total := 0
	for _, batch := range batches {
		p.collection.AddBatch(batch)
		total += len(batch)
	}
	p.log.Info().
		Str("file", source).
		Int("first_page", rng.Start+1).
		Int("last_page", rng.End+1).
		Int("pages", rng.Len()).
		Int("movements", total).
		Msg("parsed document")
	return nil
}

// MissingFilesError lists every input that does not exist.
type MissingFilesError struct {
	Paths []string
}

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("files not found: %s", strings.Join(e.Paths, ", "))
}

func (e *MissingFilesError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// ExpandInputs checks that every path exists and replaces directories with the
// regular files directly inside them, in name order. Hidden files are skipped.
// All missing paths are reported together.
func ExpandInputs(paths []string) ([]string, error) {
	var files, missing []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, path)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			files = append(files, filepath.Join(path, e.Name()))
		}
	}

	if len(missing) > 0 {
		return nil, &MissingFilesError{Paths: missing}
	}
	return files, nil
}

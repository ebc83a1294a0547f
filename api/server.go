// Package api serves movement extraction over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/isparser/isparser/extractor"
	"github.com/isparser/isparser/extractor/common"
	"github.com/isparser/isparser/extractor/movements"
	"github.com/isparser/isparser/logger"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration
type Config struct {
	Port   string
	Logger zerolog.Logger
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:   ":8080",
		Logger: zerolog.Nop(),
	}
}

// Server represents the HTTP API server
type Server struct {
	config Config
	mux    *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/health", s.handleHealth)
}

const requestIDHeader = "X-Request-ID"

// Handler returns the http.Handler for the server. Every request gets an ID,
// taken from the X-Request-ID header when the client sends one, and a logger
// carrying it in its context.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		log := s.config.Logger.With().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		s.mux.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	s.config.Logger.Info().Str("addr", s.config.Port).Msg("starting server")
	return http.ListenAndServe(s.config.Port, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	Format       movements.Format
	Split        bool
	OnlyPositive bool
	TextOnly     bool
	Tags         []string
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug().Str("remote", r.RemoteAddr).Msg("received request")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 32MB in memory, larger uploads spill to disk
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn().Err(err).Msg("could not parse multipart form")
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		http.Error(w, "Could not get uploaded file: no file field", http.StatusBadRequest)
		return
	}

	opts, err := parseExtractOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if opts.TextOnly {
		s.handleTextOnlyExtract(w, r, files)
		return
	}

	parser, err := extractor.NewParserFromConfig(opts.Tags, nil, log)
	if err != nil {
		log.Warn().Err(err).Msg("invalid tag rules")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, fh := range files {
		if err := parseUpload(parser, fh); err != nil {
			status := http.StatusBadRequest
			var openErr *uploadError
			if errors.As(err, &openErr) {
				status = http.StatusInternalServerError
			}
			log.Warn().Err(err).Str("file", fh.Filename).Msg("extraction failed")
			http.Error(w, err.Error(), status)
			return
		}
	}

	collection := parser.Movements()
	log.Info().Int("files", len(files)).Int("movements", collection.Len()).Msg("extracted")

	if opts.Format == movements.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
		if err := movements.WriteCSV(w, collection.All()); err != nil {
			log.Error().Err(err).Msg("could not write response")
		}
		return
	}

	if opts.Split {
		income, outcome := collection.Split(opts.OnlyPositive)
		writeJSON(w, http.StatusOK, map[string][]movements.Record{
			"income":  movements.Records(income),
			"outcome": movements.Records(outcome),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]movements.Record{
		"movements": movements.Records(collection.All()),
	})
}

// uploadError marks failures reading the upload itself, as opposed to its content.
type uploadError struct {
	err error
}

func (e *uploadError) Error() string { return e.err.Error() }
func (e *uploadError) Unwrap() error { return e.err }

func parseUpload(parser *extractor.Parser, fh *multipart.FileHeader) error {
	file, err := fh.Open()
	if err != nil {
		return &uploadError{err: fmt.Errorf("could not open uploaded file %s: %w", fh.Filename, err)}
	}
	defer file.Close()
	return parser.ParseReader(file, fh.Filename)
}

// parseExtractOptions reads options from form values, falling back to the query string.
func parseExtractOptions(r *http.Request) (ExtractOptions, error) {
	opts := ExtractOptions{
		Split:        isTrue(r, "split"),
		OnlyPositive: isTrue(r, "only_positive"),
		TextOnly:     isTrue(r, "text_only"),
		Tags:         r.Form["tag"],
	}

	format := coalesce(r.FormValue("format"), r.URL.Query().Get("format"))
	if format == "" {
		opts.Format = movements.FormatJSON
	} else {
		f, err := movements.ParseFormat(format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}

	if opts.Split && opts.Format == movements.FormatCSV {
		return opts, errors.New("split output is only available as json")
	}
	return opts, nil
}

func isTrue(r *http.Request, key string) bool {
	return r.FormValue(key) == "true" || r.URL.Query().Get(key) == "true"
}

type pageText struct {
	Filename string   `json:"filename"`
	Pages    []string `json:"pages"`
}

// handleTextOnlyExtract returns the raw page text of uploaded documents, which
// is what the movement patterns are matched against.
func (s *Server) handleTextOnlyExtract(w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) {
	log := logger.FromContext(r.Context())

	result := make([]pageText, 0, len(files))
	for _, fh := range files {
		if extractor.KindOf(fh.Filename) != extractor.KindDocument {
			http.Error(w, "text_only is only available for pdf documents: "+fh.Filename, http.StatusBadRequest)
			return
		}
		pages, err := readPages(fh)
		if err != nil {
			log.Warn().Err(err).Str("file", fh.Filename).Msg("could not extract text")
			http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusBadRequest)
			return
		}

		texts := make([]string, 0, len(pages))
		for _, p := range pages {
			texts = append(texts, p.Text())
		}
		result = append(result, pageText{Filename: fh.Filename, Pages: texts})
	}

	writeJSON(w, http.StatusOK, map[string][]pageText{"files": result})
}

func readPages(fh *multipart.FileHeader) ([]common.Page, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return common.ExtractPagesFromPDFReader(file)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

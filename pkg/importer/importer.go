// Package importer runs the full export pipeline: content, table, players, scores
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/myusername/fm-scout/pkg/models"
	"github.com/myusername/fm-scout/pkg/parser"
	"github.com/myusername/fm-scout/pkg/roles"
	"github.com/myusername/fm-scout/pkg/scraper"
)

// DefaultMaxPlayers is the hard cap on players per import
const DefaultMaxPlayers = 20000

// Format identifies which adapter reads a file
type Format string

const (
	FormatHTML Format = "HTML"
	FormatCSV  Format = "CSV"
)

// DetectFormat picks the adapter from the file extension: .html/.htm or .csv
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", newImportError(ErrUnsupportedFormat, "unsupported file format. Please use HTML or CSV files.", nil)
	}
}

// ContentReader supplies the full content of a file
type ContentReader interface {
	Read(ctx context.Context, location string) (string, error)
}

// Recorder observes finished imports
type Recorder interface {
	ObserveImport(format string, players, skipped int, duration time.Duration, err error)
}

// Importer converts export files into scored players. It holds no per-call state and is
// safe for concurrent use.
type Importer struct {
	catalogue  *roles.Catalogue
	reader     ContentReader
	recorder   Recorder
	log        logrus.FieldLogger
	maxPlayers int
}

// Option configures an Importer
type Option func(*Importer)

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(im *Importer) { im.log = log }
}

// WithReader replaces the default local-file/URL reader
func WithReader(r ContentReader) Option {
	return func(im *Importer) { im.reader = r }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(im *Importer) { im.recorder = r }
}

// WithMaxPlayers overrides the player cap; non-positive values keep the default
func WithMaxPlayers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.maxPlayers = n
		}
	}
}

// New creates an Importer scoring against cat
func New(cat *roles.Catalogue, opts ...Option) *Importer {
	im := &Importer{
		catalogue:  cat,
		maxPlayers: DefaultMaxPlayers,
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		im.log = l
	}
	if im.reader == nil {
		im.reader = scraper.NewSource(scraper.DefaultTimeout, im.log)
	}
	return im
}

// Catalogue returns the catalogue the importer scores against
func (im *Importer) Catalogue() *roles.Catalogue {
	return im.catalogue
}

// ImportFile runs Import and folds the outcome into an ImportResult
func (im *Importer) ImportFile(ctx context.Context, path string) models.ImportResult {
	players, err := im.Import(ctx, path)
	if err != nil {
		return models.FailedImportResult(err)
	}
	return models.NewImportResult(players)
}

// Import reads path (a local file or http(s) URL) and returns its scored players
func (im *Importer) Import(ctx context.Context, path string) ([]models.Player, error) {
	start := time.Now()
	log := im.log.WithField("path", path)

	format, err := DetectFormat(scraper.FilePath(path))
	if err != nil {
		im.observe("", 0, 0, start, err)
		log.WithError(err).Warn("Rejected import")
		return nil, err
	}
	log = log.WithField("format", format)

	content, err := im.reader.Read(ctx, path)
	if err != nil {
		err = newImportError(ErrIO, err.Error(), err)
		im.observe(format, 0, 0, start, err)
		log.WithError(err).Warn("Import failed")
		return nil, err
	}

	players, skipped, err := im.importContent(format, content, log)
	im.observe(format, len(players), skipped, start, err)
	if err != nil {
		log.WithError(err).Warn("Import failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"players": len(players),
		"skipped": skipped,
	}).Info("Imported player file")
	return players, nil
}

// ImportContent runs the pipeline over content already in memory, e.g. an uploaded file
func (im *Importer) ImportContent(format Format, content string) ([]models.Player, error) {
	start := time.Now()
	log := im.log.WithField("format", format)

	players, skipped, err := im.importContent(format, content, log)
	im.observe(format, len(players), skipped, start, err)
	if err != nil {
		log.WithError(err).Warn("Import failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"players": len(players),
		"skipped": skipped,
	}).Info("Imported player content")
	return players, nil
}

func (im *Importer) importContent(format Format, content string, log logrus.FieldLogger) ([]models.Player, int, error) {
	var (
		table *parser.Table
		err   error
	)
	switch format {
	case FormatHTML:
		table, err = parser.ParseHTMLTable(content)
	case FormatCSV:
		table, err = parser.ParseCSVTable(content)
	default:
		return nil, 0, newImportError(ErrUnsupportedFormat, "unsupported file format. Please use HTML or CSV files.", nil)
	}
	if err != nil {
		return nil, 0, newImportError(ErrStructural, err.Error(), err)
	}
	if table.Dropped > 0 {
		log.WithField("rows", table.Dropped).Debug("Dropped rows whose cell count does not match the header")
	}

	players, skipped := BuildPlayers(table, im.catalogue)
	skipped += table.Dropped

	if len(players) == 0 {
		msg := fmt.Sprintf("no valid player data found in %s file", format)
		return nil, skipped, newImportError(ErrEmptyResult, msg, nil)
	}

	if len(players) > im.maxPlayers {
		msg := fmt.Sprintf("file too large: %d players found (maximum %s)", len(players), humanize.Comma(int64(im.maxPlayers)))
		return nil, skipped, newImportError(ErrSizeLimitExceeded, msg, nil)
	}

	return players, skipped, nil
}

func (im *Importer) observe(format Format, players, skipped int, start time.Time, err error) {
	if im.recorder == nil {
		return
	}
	im.recorder.ObserveImport(string(format), players, skipped, time.Since(start), err)
}

// Kind returns the error kind of an import failure, or nil if err is not one
func Kind(err error) error {
	for _, kind := range []error{ErrIO, ErrUnsupportedFormat, ErrStructural, ErrEmptyResult, ErrSizeLimitExceeded} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/pagegate/internal/model"
)

var (
	// ErrInvalidManifest is returned when a manifest line cannot be turned
	// into a page. The wrapped error names the line.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrMissingURL is returned for an entry without a url.
	ErrMissingURL = errors.New("entry has no url")

	// ErrAmbiguousBody is returned for an entry that sets both body and body_file.
	ErrAmbiguousBody = errors.New("entry sets both body and body_file")
)

// maxManifestLine bounds one manifest line. Inline bodies above the
// content ceiling are rejected as oversized anyway, so twice the ceiling
// leaves room for JSON escaping.
const maxManifestLine = 2*model.MaxContentBytes + 64*1024

// manifestEntry is one line of a manifest: a fetched page plus where its
// body comes from.
type manifestEntry struct {
	model.FetchedPage

	// BodyFile is the path of the stored body, relative to the manifest.
	BodyFile string `json:"body_file,omitempty"`

	// Body is the body inline. A pointer distinguishes "" from absent.
	Body *string `json:"body,omitempty"`
}

// LoadManifest reads the JSON Lines manifest at path. Relative body_file
// paths resolve against the manifest's directory.
func LoadManifest(path string) ([]*model.FetchedPage, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	return ReadManifest(f, filepath.Dir(path))
}

// ReadManifest parses a JSON Lines manifest from r, one page per line.
// Blank lines and lines starting with '#' are skipped. Relative body_file
// paths resolve against baseDir.
func ReadManifest(r io.Reader, baseDir string) ([]*model.FetchedPage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxManifestLine)

	var pages []*model.FetchedPage
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		page, err := parseEntry(line, baseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidManifest, lineNo, err)
		}
		pages = append(pages, page)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidManifest, lineNo+1, err)
	}
	return pages, nil
}

// parseEntry decodes one manifest line and loads its body.
func parseEntry(line, baseDir string) (*model.FetchedPage, error) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.DisallowUnknownFields()

	var entry manifestEntry
	if err := dec.Decode(&entry); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entry.URL) == "" {
		return nil, ErrMissingURL
	}

	page := entry.FetchedPage
	switch {
	case entry.Body != nil && entry.BodyFile != "":
		return nil, ErrAmbiguousBody
	case entry.Body != nil:
		page.Raw = []byte(*entry.Body)
	case entry.BodyFile != "":
		path := entry.BodyFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		raw, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}
		page.Raw = raw
	}
	return &page, nil
}

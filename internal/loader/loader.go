// Package loader discovers note files on disk and reads them as documents.
package loader

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ragquiz/internal/domain"
)

// ErrUnsupported is returned by Load for file types it cannot read.
var ErrUnsupported = errors.New("unsupported file type")

var textExtensions = map[string]bool{".txt": true, ".md": true, ".markdown": true}
var htmlExtensions = map[string]bool{".html": true, ".htm": true}

// Supported reports whether path has an extension Load can read.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return textExtensions[ext] || htmlExtensions[ext]
}

// Discover expands globs and walks directories, returning the supported
// files in lexical order without duplicates.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if Supported(p) && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, pattern := range paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: %w", pattern, fs.ErrNotExist)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() && p != m && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				if !d.IsDir() {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load reads a single file. Text and markdown are taken verbatim; HTML is
// reduced to its readable text.
func Load(path string) (domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] && !htmlExtensions[ext] {
		return domain.Document{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	content := string(data)
	if htmlExtensions[ext] {
		content, err = HTMLText(data)
		if err != nil {
			return domain.Document{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return domain.Document{ID: DocID(path), Path: path, Content: content}, nil
}

// HTMLText extracts block text from an HTML page, one block per paragraph.
// Headings are rendered with a leading "#" like markdown.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, nav, footer").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		if goquery.NodeName(s)[0] == 'h' {
			text = "# " + text
		}
		blocks = append(blocks, text)
	})
	if len(blocks) == 0 {
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

// DocID is a short stable identifier derived from the path.
func DocID(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:6])
}

// Package source reads the chapters and notes fed to extraction.
package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"worldsmith/internal/extract"
)

// Document is one source file. Markdown files may carry a frontmatter
// block with title, order and tags; plain text files never do.
type Document struct {
	Title      string
	Order      int
	Tags       []string
	Body       string
	SourceFile string
}

var (
	ErrInvalidYAML = errors.New("invalid YAML in frontmatter")
	ErrEmpty       = errors.New("document is empty")
)

var extensions = map[string]bool{".md": true, ".markdown": true, ".txt": true}

type frontmatter struct {
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
	Tags  any    `yaml:"tags"`
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	markdown := !strings.EqualFold(filepath.Ext(path), ".txt")
	doc, err := Parse(data, markdown)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.SourceFile = path
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse splits an optional frontmatter block from the body.
func Parse(content []byte, markdown bool) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	doc := &Document{Body: string(trimmed)}

	if markdown && bytes.HasPrefix(trimmed, []byte("---\n")) {
		rest := trimmed[len("---\n"):]
		if end := bytes.Index(rest, []byte("---\n")); end != -1 {
			var fm frontmatter
			if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
				return nil, ErrInvalidYAML
			}
			tags, err := parseTags(fm.Tags)
			if err != nil {
				return nil, err
			}
			doc.Title = strings.TrimSpace(fm.Title)
			doc.Order = fm.Order
			doc.Tags = tags
			doc.Body = string(rest[end+len("---\n"):])
		}
	}

	if strings.TrimSpace(doc.Body) == "" {
		return nil, ErrEmpty
	}
	return doc, nil
}

func parseTags(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings")
			}
			if strings.TrimSpace(s) != "" {
				tags = append(tags, s)
			}
		}
		if len(tags) == 0 {
			return nil, nil
		}
		return tags, nil
	default:
		return nil, fmt.Errorf("tags must be string or list of strings")
	}
}

// Load reads every source file under paths, skipping excluded directories
// and empty files. Documents are ordered by frontmatter order, then path.
func Load(paths, excludes []string) ([]Document, error) {
	files, err := Walk(paths, excludes)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(files))
	for _, path := range files {
		doc, err := ParseFile(path)
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Order != docs[j].Order {
			return docs[i].Order < docs[j].Order
		}
		return docs[i].SourceFile < docs[j].SourceFile
	})
	return docs, nil
}

// ForExtraction converts documents to extraction inputs.
func ForExtraction(docs []Document) []extract.Document {
	out := make([]extract.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, extract.Document{Name: d.Title, Text: d.Body})
	}
	return out
}

// Walk lists source files under roots. A root may be a single file.
func Walk(roots, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path != "" {
			excluded = append(excluded, filepath.Clean(path))
		}
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !extensions[strings.ToLower(filepath.Ext(d.Name()))] {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// Hash returns the hex sha256 of a file's contents.
func Hash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

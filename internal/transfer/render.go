package transfer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"
	"time"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Result is a rendered export file.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var markdownTemplate = template.Must(
	template.New("world.md.tmpl").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02")
		},
		"join": strings.Join,
		"line": func(s string) string {
			return strings.Join(strings.Fields(s), " ")
		},
	}).ParseFS(templateFS, "templates/world.md.tmpl"),
)

// Render encodes b in the requested format.
func Render(b *Bundle, format Format) (*Result, error) {
	if b == nil {
		return nil, ErrNilBundle
	}
	base := filename(b.World.Name, b.ExportedAt)
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := WriteJSON(&buf, b, true); err != nil {
			return nil, err
		}
		return &Result{Data: buf.Bytes(), Filename: base + ".json", MimeType: "application/json"}, nil
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := WriteMarkdown(&buf, b); err != nil {
			return nil, err
		}
		return &Result{Data: buf.Bytes(), Filename: base + ".md", MimeType: "text/markdown"}, nil
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

func WriteJSON(w io.Writer, b *Bundle, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	return nil
}

func ReadJSON(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	return &b, nil
}

// WriteMarkdown renders one section per entity family with fixed field
// labels and closes with an attribution footer.
func WriteMarkdown(w io.Writer, b *Bundle) error {
	if err := markdownTemplate.Execute(w, b); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func filename(name string, exportedAt time.Time) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "world"
	}
	return fmt.Sprintf("%s-%s", slug, exportedAt.UTC().Format("20060102"))
}

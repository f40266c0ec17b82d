package docgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// maxFilenameLength caps sanitized filenames, extension included.
const maxFilenameLength = 100

type filenameData struct {
	Definition string
	Title      string
	Format     string
	Theme      string
	Timestamp  string
	Date       string
	Variant    string
}

func renderFilename(def ResolvedDefinition, req DocumentRequest, title string, now time.Time) (string, error) {
	name := def.DefaultFilename
	if name == "" {
		name = "{{.Definition}}_{{.Timestamp}}"
	}

	data := filenameData{
		Definition: def.Name,
		Title:      SafeFilename(title),
		Format:     string(req.Format),
		Theme:      req.Theme,
		Timestamp:  now.UTC().Format("20060102T150405Z"),
		Date:       now.UTC().Format("20060102"),
		Variant:    def.Variant,
	}

	tmpl, err := template.New("filename").Parse(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	result := strings.TrimSpace(buf.String())
	if result == "" {
		return "", fmt.Errorf("empty filename")
	}

	ext := extensionForFormat(req.Format)
	if !strings.HasSuffix(strings.ToLower(result), "."+ext) {
		result = result + "." + ext
	}
	return SafeFilename(result), nil
}

func extensionForFormat(format Format) string {
	switch format {
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "md"
	default:
		return "pdf"
	}
}

// SafeFilename reduces a name to letters, digits, underscore, dot and
// hyphen. Spaces become underscores, every other byte is dropped, and the
// result is capped at 100 bytes without truncating mid extension when one
// fits. Empty input sanitizes to "document".
func SafeFilename(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '_' || r == '.' || r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	result := strings.Trim(sb.String(), ".")
	if result == "" {
		return "document"
	}
	if len(result) <= maxFilenameLength {
		return result
	}

	ext := ""
	if idx := strings.LastIndexByte(result, '.'); idx > 0 {
		ext = result[idx:]
	}
	if len(ext) >= maxFilenameLength {
		return result[:maxFilenameLength]
	}
	return result[:maxFilenameLength-len(ext)] + ext
}

// Package exchange reads and writes whole projects as versioned JSON or
// YAML documents.
package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/me/planline/pkg/model"
)

// Version is the only document version this package reads and writes.
const Version = 1

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for encodings other than json and yaml.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ParseFormat maps a user supplied format name to a Format. An empty name
// selects JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Envelope is an exported project.
type Envelope struct {
	Version      int                `json:"version" yaml:"version"`
	Project      model.Project      `json:"project" yaml:"project"`
	Tasks        []model.Task       `json:"tasks" yaml:"tasks"`
	Dependencies []model.Dependency `json:"dependencies" yaml:"dependencies"`
	Groups       []model.Group      `json:"groups" yaml:"groups"`
}

// Build wraps a snapshot in a current-version envelope.
func Build(snap *model.Snapshot) *Envelope {
	c := snap.Clone()
	return &Envelope{
		Version:      Version,
		Project:      c.Project,
		Tasks:        c.Tasks,
		Dependencies: c.Dependencies,
		Groups:       c.Groups,
	}
}

// Snapshot returns the envelope contents as a snapshot.
func (e *Envelope) Snapshot() *model.Snapshot {
	s := &model.Snapshot{
		Project:      e.Project,
		Tasks:        e.Tasks,
		Dependencies: e.Dependencies,
		Groups:       e.Groups,
	}
	return s.Clone()
}

// Encode writes env to w.
func Encode(w io.Writer, env *Envelope, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode reads and validates a document from r. Errors caused by the
// document's content wrap ErrInvalidDocument.
func Decode(r io.Reader, format Format) (*Envelope, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc.envelope(), nil
}

// Package manifest holds the registry metadata of a published image and the
// adapter that fetches it.
package manifest

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Well-known label keys.
const (
	// LabelRevision is the OCI annotation carrying the source commit of an image.
	LabelRevision = "org.opencontainers.image.revision"
	// LabelVersion is the OCI annotation carrying the image version.
	LabelVersion = "org.opencontainers.image.version"
)

// ErrUnavailable is returned when a manifest cannot be fetched after retries.
var ErrUnavailable = errors.New("manifest unavailable")

// Manifest is the registry metadata of one image reference.
// It is immutable once decoded.
type Manifest struct {
	Name   string
	Digest string
	Tags   []string
	Labels map[string]string
	// Created is nil when the registry did not report a parseable timestamp.
	Created *time.Time
}

// HasTag reports whether tag is published for this image.
func (m Manifest) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// Label returns the value of a label and whether it is set.
func (m Manifest) Label(key string) (string, bool) {
	v, ok := m.Labels[key]
	return v, ok
}

// CreatedLayout is the layout CreatedString renders timestamps with.
const CreatedLayout = "Mon Jan 02 15:04:05 2006"

// CreatedString formats the creation time in UTC, or returns "unknown".
func (m Manifest) CreatedString() string {
	if m.Created == nil {
		return "unknown"
	}
	return m.Created.UTC().Format(CreatedLayout)
}

// inspectOutput mirrors the JSON document printed by `skopeo inspect`.
type inspectOutput struct {
	Name     string            `json:"Name"`
	Digest   string            `json:"Digest"`
	RepoTags []string          `json:"RepoTags"`
	Labels   map[string]string `json:"Labels"`
	Created  string            `json:"Created"`
}

// Decode parses inspect output into a Manifest. An unparseable creation
// timestamp is logged and left unset rather than failing the decode.
func Decode(data []byte) (*Manifest, error) {
	var out inspectOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	m := &Manifest{
		Name:   out.Name,
		Digest: out.Digest,
		Tags:   out.RepoTags,
		Labels: out.Labels,
	}
	if m.Labels == nil {
		m.Labels = map[string]string{}
	}

	if out.Created != "" {
		created, err := parseCreated(out.Created)
		if err != nil {
			slog.Warn("Unparseable creation timestamp", "image", out.Name, "created", out.Created, "error", err)
		} else {
			m.Created = &created
		}
	}

	return m, nil
}

// parseCreated accepts RFC 3339 timestamps and, failing that, Unix seconds.
func parseCreated(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if secs, convErr := strconv.ParseInt(s, 10, 64); convErr == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, err
}

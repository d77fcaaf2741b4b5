package storage

import (
	"fmt"
	"path"
	"strings"
)

const gcsScheme = "gs://"

// Location is a parsed staging/temp URI.
// "gs://bucket/staging" is {Type: "gcs", Bucket: "bucket", Prefix: "staging"}.
// Anything else is a local directory: "/tmp" is {Type: "local", Prefix: "/tmp"}.
type Location struct {
	Type   string
	Bucket string
	Prefix string
}

// ParseLocation parses uri into a Location.
func ParseLocation(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("storage location is empty")
	}
	if strings.HasPrefix(uri, gcsScheme) {
		rest := strings.TrimPrefix(uri, gcsScheme)
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("storage location %q has no bucket", uri)
		}
		return Location{Type: "gcs", Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
	}
	if strings.Contains(uri, "://") {
		return Location{}, fmt.Errorf("unsupported storage location scheme: %q", uri)
	}
	return Location{Type: "local", Prefix: uri}, nil
}

// ObjectName joins name under the location prefix. Local locations are their own base directory.
func (l Location) ObjectName(name string) string {
	if l.Type == "local" || l.Prefix == "" {
		return name
	}
	return path.Join(l.Prefix, name)
}

// URI renders the full URI of the object name (as returned by ObjectName).
func (l Location) URI(objectName string) string {
	if l.Type == "gcs" {
		return gcsScheme + l.Bucket + "/" + objectName
	}
	return path.Join(l.Prefix, objectName)
}

// String renders the location as a URI.
func (l Location) String() string {
	if l.Type == "gcs" {
		if l.Prefix == "" {
			return gcsScheme + l.Bucket
		}
		return gcsScheme + l.Bucket + "/" + l.Prefix
	}
	return l.Prefix
}

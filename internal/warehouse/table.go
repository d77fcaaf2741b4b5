package warehouse

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
)

// TableRef is a fully-qualified destination table.
type TableRef struct {
	Project string
	Dataset string
	Table   string
}

// ParseTable parses "project.dataset.table". A "project:dataset.table" form is also accepted.
func ParseTable(s string) (TableRef, error) {
	normalized := strings.Replace(strings.TrimSpace(s), ":", ".", 1)
	parts := strings.Split(normalized, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return TableRef{}, fmt.Errorf("destination table %q is not of the form project.dataset.table", s)
	}
	return TableRef{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}

func (t TableRef) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}

// Schema is the fixed destination schema: every column is a nullable STRING.
func Schema() bigquery.Schema {
	schema := make(bigquery.Schema, 0, len(domain.Columns))
	for _, name := range domain.Columns {
		schema = append(schema, &bigquery.FieldSchema{Name: name, Type: bigquery.StringFieldType})
	}
	return schema
}

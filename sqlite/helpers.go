package sqlite

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/scholarmail"
)

// fieldPath matches dotted field paths such as "body.text_html".
var fieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// jsonPath converts a dotted field path into a SQLite JSON path.
func jsonPath(field string) (string, error) {
	if !fieldPath.MatchString(field) {
		return "", scholarmail.Errorf(scholarmail.EINVALID, "invalid field path %q", field)
	}
	return "$." + field, nil
}

// appendFilter appends WHERE conditions for filter to a query builder.
// Keys are visited in sorted order so identical filters build identical SQL.
func appendFilter(query *strings.Builder, args *[]any, filter scholarmail.Filter) error {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := filter[key]
		if key == scholarmail.IDField {
			query.WriteString(" AND id = ?")
			*args = append(*args, idString(value))
			continue
		}

		path, err := jsonPath(key)
		if err != nil {
			return err
		}
		if value == nil {
			query.WriteString(" AND json_extract(doc, ?) IS NULL")
			*args = append(*args, path)
			continue
		}

		v, err := sqlValue(value)
		if err != nil {
			return err
		}
		query.WriteString(" AND json_extract(doc, ?) = ?")
		*args = append(*args, path, v)
	}
	return nil
}

// sqlValue converts a filter value into the form json_extract returns.
// JSON booleans come back from SQLite as the integers 1 and 0.
func sqlValue(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return v, nil
	case scholarmail.Ref:
		return string(v), nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64, float64:
		return v, nil
	}
	return nil, scholarmail.Errorf(scholarmail.EINVALID, "unsupported filter value type %T", v)
}

func idString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case scholarmail.Ref:
		return string(v)
	}
	return fmt.Sprint(v)
}

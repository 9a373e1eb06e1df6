package mongo

import (
	"slices"
	"time"

	"github.com/fwojciec/scholarmail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// timestampFields are written as BSON dates.
var timestampFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
}

// ToDocument converts a record into a BSON document. The ID and Ref values
// holding ObjectID hex strings become ObjectIDs, and RFC 3339 timestamps
// become dates.
func ToDocument(rec scholarmail.Record) bson.M {
	doc := bson.M{}
	for k, v := range rec {
		switch {
		case k == scholarmail.IDField:
			doc[k] = toID(v)
		case timestampFields[k]:
			doc[k] = toTime(v)
		default:
			doc[k] = toValue(v)
		}
	}
	return doc
}

// FromDocument converts a BSON document into a record. The ID becomes a hex
// string and other ObjectIDs become scholarmail.Ref values.
func FromDocument(doc bson.M) scholarmail.Record {
	rec := scholarmail.Record{}
	for k, v := range doc {
		if k == scholarmail.IDField {
			if oid, ok := v.(primitive.ObjectID); ok {
				rec[k] = oid.Hex()
				continue
			}
		}
		rec[k] = fromValue(v)
	}
	return rec
}

// ToFilter converts an equality filter into a BSON filter with sorted keys.
// A nil value matches documents where the field is null or absent.
func ToFilter(filter scholarmail.Filter) bson.D {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	d := bson.D{}
	for _, k := range keys {
		v := filter[k]
		if k == scholarmail.IDField {
			d = append(d, bson.E{Key: k, Value: toID(v)})
			continue
		}
		d = append(d, bson.E{Key: k, Value: toValue(v)})
	}
	return d
}

func toID(v any) any {
	switch v := v.(type) {
	case string:
		return objectIDOr(v)
	case scholarmail.Ref:
		return objectIDOr(string(v))
	}
	return v
}

func objectIDOr(s string) any {
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return s
}

func toTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(scholarmail.TimeFormat, s)
	if err != nil {
		return v
	}
	return t.UTC()
}

func toValue(v any) any {
	switch v := v.(type) {
	case scholarmail.Ref:
		return objectIDOr(string(v))
	case scholarmail.Record:
		return toMap(v)
	case map[string]any:
		return toMap(v)
	case []any:
		out := make(bson.A, len(v))
		for i, item := range v {
			out[i] = toValue(item)
		}
		return out
	}
	return v
}

func toMap(m map[string]any) bson.M {
	out := bson.M{}
	for k, v := range m {
		out[k] = toValue(v)
	}
	return out
}

func fromValue(v any) any {
	switch v := v.(type) {
	case primitive.ObjectID:
		return scholarmail.Ref(v.Hex())
	case primitive.DateTime:
		return v.Time().UTC()
	case bson.M:
		return fromMap(v)
	case map[string]any:
		return fromMap(v)
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = fromValue(e.Value)
		}
		return out
	case bson.A:
		return fromSlice(v)
	case []any:
		return fromSlice(v)
	case int32:
		return int64(v)
	}
	return v
}

func fromMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromValue(v)
	}
	return out
}

func fromSlice(items []any) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = fromValue(v)
	}
	return out
}

package docstore

import (
	"bytes"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var nullValue = bson.RawValue{Type: bsontype.Null}

func toRaw(v any) (bson.RawValue, error) {
	if v == nil {
		return nullValue, nil
	}
	t, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}, err
	}
	return bson.RawValue{Type: t, Value: data}, nil
}

func lookup(doc bson.Raw, field string) (bson.RawValue, bool) {
	v, err := doc.LookupErr(strings.Split(field, ".")...)
	if err != nil {
		return bson.RawValue{}, false
	}
	return v, true
}

func matches(doc bson.Raw, filter bson.M) (bool, error) {
	for field, cond := range filter {
		val, present := lookup(doc, field)
		ok, err := matchCondition(val, present, cond)
		if err != nil {
			return false, fmt.Errorf("field %s: %w", field, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func operators(cond any) (map[string]any, bool) {
	var m map[string]any
	switch c := cond.(type) {
	case bson.M:
		m = c
	case map[string]any:
		m = c
	default:
		return nil, false
	}
	if len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func matchCondition(val bson.RawValue, present bool, cond any) (bool, error) {
	ops, ok := operators(cond)
	if !ok {
		want, err := toRaw(cond)
		if err != nil {
			return false, err
		}
		return equalTo(val, present, want), nil
	}

	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq", "$ne":
			want, err := toRaw(arg)
			if err != nil {
				return false, err
			}
			ok = equalTo(val, present, want) == (op == "$eq")
		case "$in", "$nin":
			list, err := arrayValues(arg)
			if err != nil {
				return false, fmt.Errorf("%s: %w", op, err)
			}
			hit := false
			for _, want := range list {
				if equalTo(val, present, want) {
					hit = true
					break
				}
			}
			ok = hit == (op == "$in")
		case "$exists":
			want, isBool := arg.(bool)
			if !isBool {
				return false, fmt.Errorf("$exists expects a bool, got %T", arg)
			}
			ok = present == want
		case "$gt", "$gte", "$lt", "$lte":
			if !present {
				return false, nil
			}
			want, err := toRaw(arg)
			if err != nil {
				return false, err
			}
			if typeRank(val) != typeRank(want) {
				return false, nil
			}
			c := compareValues(val, want)
			switch op {
			case "$gt":
				ok = c > 0
			case "$gte":
				ok = c >= 0
			case "$lt":
				ok = c < 0
			default:
				ok = c <= 0
			}
		default:
			return false, fmt.Errorf("unsupported operator %s", op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func arrayValues(arg any) ([]bson.RawValue, error) {
	rv, err := toRaw(arg)
	if err != nil {
		return nil, err
	}
	if rv.Type != bsontype.Array {
		return nil, fmt.Errorf("expected an array, got %s", rv.Type)
	}
	return rv.Array().Values()
}

// equalTo follows the query language: null matches a missing field and a scalar matches
// any element of an array field.
func equalTo(val bson.RawValue, present bool, want bson.RawValue) bool {
	if want.Type == bsontype.Null || want.Type == bsontype.Undefined {
		return !present || val.Type == bsontype.Null || val.Type == bsontype.Undefined
	}
	if !present {
		return false
	}
	if sameValue(val, want) {
		return true
	}
	if val.Type == bsontype.Array && want.Type != bsontype.Array {
		elems, err := val.Array().Values()
		if err != nil {
			return false
		}
		for _, e := range elems {
			if sameValue(e, want) {
				return true
			}
		}
	}
	return false
}

func sameValue(a, b bson.RawValue) bool {
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return a.Type == b.Type && bytes.Equal(a.Value, b.Value)
}

func number(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32()), true
	case bsontype.Int64:
		return float64(v.Int64()), true
	case bsontype.Double:
		return v.Double(), true
	}
	return 0, false
}

// typeRank is the cross-type sort order of the server.
func typeRank(v bson.RawValue) int {
	switch v.Type {
	case bsontype.Null, bsontype.Undefined:
		return 1
	case bsontype.Int32, bsontype.Int64, bsontype.Double, bsontype.Decimal128:
		return 2
	case bsontype.String, bsontype.Symbol:
		return 3
	case bsontype.EmbeddedDocument:
		return 4
	case bsontype.Array:
		return 5
	case bsontype.Binary:
		return 6
	case bsontype.ObjectID:
		return 7
	case bsontype.Boolean:
		return 8
	case bsontype.DateTime:
		return 9
	case bsontype.Timestamp:
		return 10
	}
	return 11
}

func compareValues(a, b bson.RawValue) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(int64(ra), int64(rb))
	}
	switch ra {
	case 1:
		return 0
	case 2:
		fa, _ := number(a)
		fb, _ := number(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 3:
		return strings.Compare(a.StringValue(), b.StringValue())
	case 7:
		oa, ob := a.ObjectID(), b.ObjectID()
		return bytes.Compare(oa[:], ob[:])
	case 8:
		ba, bb := a.Boolean(), b.Boolean()
		if ba == bb {
			return 0
		}
		if !ba {
			return -1
		}
		return 1
	case 9:
		return cmpInt(a.DateTime(), b.DateTime())
	case 10:
		ta, ia := a.Timestamp()
		tb, ib := b.Timestamp()
		if ta != tb {
			return cmpInt(int64(ta), int64(tb))
		}
		return cmpInt(int64(ia), int64(ib))
	}
	return bytes.Compare(a.Value, b.Value)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDocs(a, b bson.Raw, order bson.D) int {
	for _, key := range order {
		va, ok := lookup(a, key.Key)
		if !ok {
			va = nullValue
		}
		vb, ok := lookup(b, key.Key)
		if !ok {
			vb = nullValue
		}
		if c := compareValues(va, vb); c != 0 {
			return c * sortDirection(key.Value)
		}
	}
	return 0
}

func sortDirection(v any) int {
	switch d := v.(type) {
	case int:
		if d < 0 {
			return -1
		}
	case int32:
		if d < 0 {
			return -1
		}
	case int64:
		if d < 0 {
			return -1
		}
	case float64:
		if d < 0 {
			return -1
		}
	}
	return 1
}

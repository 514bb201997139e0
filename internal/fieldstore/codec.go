package fieldstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Codec translates a logical field value into the representations used by
// the two slower tiers. Persistent values are whatever the database driver
// round-trips; distributed values are always strings.
type Codec interface {
	ToPersistent(v any) (any, error)
	FromPersistent(v any) (any, error)
	ToDistributed(v any) (string, error)
	FromDistributed(s string) (any, error)
}

// StringCodec passes string values through unchanged. It is the default
// codec for fields without an explicit one.
type StringCodec struct{}

func (StringCodec) ToPersistent(v any) (any, error) { return v, nil }

func (StringCodec) FromPersistent(v any) (any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return nil, fmt.Errorf("fieldstore: expected string, got %T", v)
	}
}

func (StringCodec) ToDistributed(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("fieldstore: expected string, got %T", v)
	}
	return s, nil
}

func (StringCodec) FromDistributed(s string) (any, error) { return s, nil }

// Int64Codec stores integers natively in the database and as decimal
// strings in the distributed cache.
type Int64Codec struct{}

func (Int64Codec) ToPersistent(v any) (any, error) {
	n, err := coerceInt64(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (Int64Codec) FromPersistent(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return coerceInt64(v)
}

func (Int64Codec) ToDistributed(v any) (string, error) {
	n, err := coerceInt64(v)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}

func (Int64Codec) FromDistributed(s string) (any, error) {
	return strconv.ParseInt(s, 10, 64)
}

// BoolCodec stores booleans natively and as "0"/"1" strings.
type BoolCodec struct{}

func (BoolCodec) ToPersistent(v any) (any, error) { return coerceBool(v) }

func (BoolCodec) FromPersistent(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return coerceBool(v)
}

func (BoolCodec) ToDistributed(v any) (string, error) {
	b, err := coerceBool(v)
	if err != nil {
		return "", err
	}
	if b {
		return "1", nil
	}
	return "0", nil
}

func (BoolCodec) FromDistributed(s string) (any, error) {
	switch s {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return nil, fmt.Errorf("fieldstore: invalid boolean %q", s)
	}
}

// TimeCodec stores timestamps natively and as RFC 3339 strings with
// nanosecond precision in the distributed cache.
type TimeCodec struct{}

func (TimeCodec) ToPersistent(v any) (any, error) { return coerceTime(v) }

func (TimeCodec) FromPersistent(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return coerceTime(v)
}

func (TimeCodec) ToDistributed(v any) (string, error) {
	t, err := coerceTime(v)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

func (TimeCodec) FromDistributed(s string) (any, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// JSONCodec marshals arbitrary structured values to JSON for both tiers.
// The persistent representation is a JSON string so it fits text and
// datatypes.JSON columns alike.
type JSONCodec struct{}

func (JSONCodec) ToPersistent(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("fieldstore: marshal json field: %w", err)
	}
	return string(raw), nil
}

func (JSONCodec) FromPersistent(v any) (any, error) {
	var raw []byte
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		return nil, fmt.Errorf("fieldstore: expected json text, got %T", v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("fieldstore: unmarshal json field: %w", err)
	}
	return out, nil
}

func (JSONCodec) ToDistributed(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fieldstore: marshal json field: %w", err)
	}
	return string(raw), nil
}

func (JSONCodec) FromDistributed(s string) (any, error) {
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("fieldstore: unmarshal json field: %w", err)
	}
	return out, nil
}

func coerceInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("fieldstore: expected integer, got %T", v)
	}
}

func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case []byte:
		return string(b) == "1" || string(b) == "true", nil
	case string:
		return b == "1" || b == "true", nil
	default:
		return false, fmt.Errorf("fieldstore: expected boolean, got %T", v)
	}
}

func coerceTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(t))
	default:
		return time.Time{}, fmt.Errorf("fieldstore: expected time, got %T", v)
	}
}

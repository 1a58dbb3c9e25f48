package chronoval

import "fmt"

// PointQuery is the structured query argument for point-in-time searches: a
// (timestamp, value) pair tested against stored histories and their
// rectangles.
type PointQuery struct {
	Ts    int64
	Value int64
}

// DecodePointQuery extracts a PointQuery from a generic field map as handed
// over by the host. The fields are conventionally named "ts" and "value";
// a missing or non-integer field aborts the operation, no partial or
// degraded match is attempted.
func DecodePointQuery(fields map[string]any) (PointQuery, error) {
	ts, err := requireInt64(fields, "ts")
	if err != nil {
		return PointQuery{}, err
	}
	value, err := requireInt64(fields, "value")
	if err != nil {
		return PointQuery{}, err
	}
	return PointQuery{Ts: ts, Value: value}, nil
}

func requireInt64(fields map[string]any, name string) (int64, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return 0, newValueError(KindMissingField,
			fmt.Sprintf("query argument is missing required field %q", name), nil)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		// JSON decoding hands integers over as float64.
		return int64(v), nil
	default:
		return 0, newValueError(KindMissingField,
			fmt.Sprintf("query field %q has non-numeric type %T", name, raw), nil)
	}
}

package chronoval

import (
	"errors"
	"testing"
)

func TestDecodePointQuery(t *testing.T) {
	q, err := DecodePointQuery(map[string]any{"ts": int64(1500), "value": int64(10)})
	if err != nil {
		t.Fatal(err)
	}
	if q.Ts != 1500 || q.Value != 10 {
		t.Errorf("query = %+v", q)
	}
}

func TestDecodePointQueryNumericWidening(t *testing.T) {
	// JSON decoding hands integers over as float64.
	q, err := DecodePointQuery(map[string]any{"ts": float64(2000), "value": 7})
	if err != nil {
		t.Fatal(err)
	}
	if q.Ts != 2000 || q.Value != 7 {
		t.Errorf("query = %+v", q)
	}
}

func TestDecodePointQueryMissingField(t *testing.T) {
	cases := []map[string]any{
		{"value": int64(10)},        // missing ts
		{"ts": int64(1500)},         // missing value
		{},                          // missing both
		{"ts": nil, "value": int64(1)}, // explicit null
		{"ts": "soon", "value": int64(1)}, // wrong type
	}
	for _, fields := range cases {
		if _, err := DecodePointQuery(fields); !errors.Is(err, ErrMissingField) {
			t.Errorf("DecodePointQuery(%v) err = %v, want ErrMissingField", fields, err)
		}
	}
}

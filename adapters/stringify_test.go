package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "red", "red"},
		{"integer number", float64(42), "42"},
		{"decimal number", 19.99, "19.99"},
		{"bool", true, "true"},
		{"array joins with comma", []any{"a", "b", "c"}, "a,b,c"},
		{"nested array", []any{"a", []any{"b", "c"}}, "a,b,c"},
		{
			"object joins k:v in key order",
			map[string]any{"b": "2", "a": "1"},
			"a:1,b:2",
		},
		{
			"object with nested array value",
			map[string]any{"sizes": []any{"s", "m"}},
			"sizes:s,m",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Stringify(tc.in))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Run("delimited string", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, NormalizeTags("a, b ,c"))
	})

	t.Run("native array", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, NormalizeTags([]any{"a", "b", "c"}))
	})

	t.Run("empty entries dropped", func(t *testing.T) {
		assert.Equal(t, []string{"a"}, NormalizeTags("a,, ,"))
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, NormalizeTags(nil))
	})

	t.Run("numeric array stringifies", func(t *testing.T) {
		assert.Equal(t, []string{"3", "9"}, NormalizeTags([]any{float64(3), float64(9)}))
	})
}

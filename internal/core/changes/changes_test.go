package changes_test

import (
	"testing"

	"github.com/frahmantamala/inventory-management/internal/core/changes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Status string
	Holder string
}

var fields = []changes.Field[record]{
	{Name: "status", Get: func(r *record) string { return r.Status }, Set: func(r *record, v string) { r.Status = v }},
	{Name: "current_holder", Get: func(r *record) string { return r.Holder }, Set: func(r *record, v string) { r.Holder = v }},
}

func strPtr(s string) *string { return &s }

func TestLooselyEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"", "", true},
		{"", "   ", true},
		{"Em Uso", "Em Uso", true},
		{" Em Uso ", "Em Uso", true},
		{"Em Uso", "em uso", false},
		{"0", "", false},
		{"Carlos", "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, changes.LooselyEqual(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestApply(t *testing.T) {
	r := &record{Status: "Em Uso", Holder: "Carlos"}

	got := changes.Apply(r, fields, map[string]*string{
		"status":         strPtr("Estoque"),
		"current_holder": strPtr(""),
	})

	require.Len(t, got, 2)
	assert.Equal(t, changes.Change{Field: "status", Old: "Em Uso", New: "Estoque"}, got[0])
	assert.Equal(t, changes.Change{Field: "current_holder", Old: "Carlos", New: ""}, got[1])
	assert.Equal(t, "Estoque", r.Status)
	assert.Equal(t, "", r.Holder)
}

func TestApplyIgnoresNilAndLooselyEqualValues(t *testing.T) {
	r := &record{Status: "Estoque", Holder: ""}

	got := changes.Apply(r, fields, map[string]*string{
		"status":         nil,
		"current_holder": strPtr("  "),
	})

	assert.Empty(t, got)
	assert.Equal(t, "", r.Holder)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "no changes", changes.Summary(nil))
	assert.Equal(t,
		"status: 'Em Uso' -> 'Estoque', current_holder: 'Carlos' -> ''",
		changes.Summary([]changes.Change{
			{Field: "status", Old: "Em Uso", New: "Estoque"},
			{Field: "current_holder", Old: "Carlos", New: ""},
		}))
}

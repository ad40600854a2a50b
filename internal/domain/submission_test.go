package domain_test

import (
	"testing"

	"checkout-relay-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFieldMap(t *testing.T) {
	var m domain.FieldMap
	m.Add("name", "Jane")
	m.Add("tags[]", "a")
	m.Add("city", "Oslo")
	m.Add("tags[]", "b")

	assert.Len(t, m, 3)
	assert.Equal(t, []string{"name", "tags", "city"}, []string{m[0].Key, m[1].Key, m[2].Key})
	assert.Equal(t, "a, b", m.Get("tags"))
	assert.Equal(t, "Jane", m.Get("name"))
	assert.Equal(t, "", m.Get("missing"))
}

func TestBaseKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"card-number", "card-number"},
		{"card-number[]", "card-number"},
		{"card-number[0]", "card-number"},
		{"cvv[x]", "cvv"},
		{"cvv[a][b]", "cvv"},
		{"open[bracket", "open[bracket"},
		{"[0]", "[0]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.BaseKey(tt.in), tt.in)
	}

	var m domain.FieldMap
	m.Add("items[0]", "a")
	m.Add("items[1]", "b")
	assert.Len(t, m, 1)
	assert.Equal(t, "a, b", m.Get("items"))
}

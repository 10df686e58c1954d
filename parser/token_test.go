package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCommand(t *testing.T) {
	spec, ok := LookupCommand("select")
	require.True(t, ok)
	assert.Equal(t, "SELECT", spec.Name)
	assert.Equal(t, RoleProjection, spec.Role)
	assert.Equal(t, PayloadArray, spec.Shape)

	spec, ok = LookupCommand("Flex-Load")
	require.True(t, ok)
	assert.Equal(t, "FLEX-LOAD", spec.Name)
	assert.Equal(t, RoleLoader, spec.Role)

	_, ok = LookupCommand("NOPE")
	assert.False(t, ok)
}

func TestSuggestCommand(t *testing.T) {
	tests := []struct {
		typo string
		want string
	}{
		{"SELCT", "SELECT"},
		{"GORUP", "GROUP"},
		{"FITLER", "FILTER"},
		{"LIMTI", "LIMIT"},
		{"CATEGROY", "CATEGORY"},
		{"COMPLETELY_DIFFERENT", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SuggestCommand(tt.typo), tt.typo)
	}
}

func TestAggregateFunctionLookup(t *testing.T) {
	assert.True(t, LookupIsAggregateFunc("avg"))
	assert.True(t, LookupIsAggregateFunc("FIRST"))
	assert.False(t, LookupIsAggregateFunc("bogus"))

	assert.True(t, LookupIsNumericAggregateFunc("sum"))
	assert.True(t, LookupIsNumericAggregateFunc("COUNT"))
	assert.False(t, LookupIsNumericAggregateFunc("first"))
	assert.False(t, LookupIsNumericAggregateFunc("merge"))
}

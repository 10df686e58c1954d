package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/mxql/parser"
	"github.com/rulego/mxql/types"
)

func parse(t *testing.T, input string) *types.Query {
	t.Helper()
	q, _ := parser.NewParser(input).Parse()
	return q
}

func refByName(refs []types.FieldReference, name string) *types.FieldReference {
	for i := range refs {
		if refs[i].Name == name {
			return &refs[i]
		}
	}
	return nil
}

func TestExtractFieldsRoles(t *testing.T) {
	q := parse(t, `
CATEGORY db_x
TAGLOAD
SELECT [oname, cpu]
FILTER {key: "mem", cmp: "gt", value: 80}
GROUP {pk: "oname", timeunit: "5m"}
UPDATE {key: "active_sessions", value: "sum"}
ORDER {key: "tps"}
`)
	refs := ExtractFields(q)
	require.Len(t, refs, 5)

	oname := refByName(refs, "oname")
	require.NotNil(t, oname)
	assert.Equal(t, types.RoleSelect, oname.Role)

	mem := refByName(refs, "mem")
	require.NotNil(t, mem)
	assert.Equal(t, types.RoleFilter, mem.Role)
	assert.True(t, mem.Numeric)

	sessions := refByName(refs, "active_sessions")
	require.NotNil(t, sessions)
	assert.Equal(t, types.RoleUpdate, sessions.Role)
	assert.True(t, sessions.Numeric)

	tps := refByName(refs, "tps")
	require.NotNil(t, tps)
	assert.Equal(t, types.RoleOrder, tps.Role)
}

func TestExtractFieldsFirstSightingWins(t *testing.T) {
	q := parse(t, `
CATEGORY db_x
TAGLOAD
SELECT [cpu]
UPDATE {key: "cpu", value: "avg"}
`)
	refs := ExtractFields(q)
	require.Len(t, refs, 1)

	// Role and position stay with the SELECT; numeric evidence from the
	// UPDATE still lands.
	assert.Equal(t, types.RoleSelect, refs[0].Role)
	assert.True(t, refs[0].Numeric)
}

func TestExtractFieldsSkipsWildcard(t *testing.T) {
	q := parse(t, "CATEGORY db_x\nTAGLOAD\nSELECT [*, cpu]")
	refs := ExtractFields(q)
	require.Len(t, refs, 1)
	assert.Equal(t, "cpu", refs[0].Name)
}

func TestExtractFieldsGroupArrayPK(t *testing.T) {
	q := parse(t, "CATEGORY db_x\nTAGLOAD\nGROUP {pk: [oname, host]}")
	refs := ExtractFields(q)
	require.Len(t, refs, 2)
	assert.Equal(t, types.RoleGroup, refs[0].Role)
	assert.Equal(t, types.RoleGroup, refs[1].Role)
}

func TestExtractFieldsWalksSubqueries(t *testing.T) {
	q := parse(t, `
SUB {id: base}
CATEGORY db_x
TAGLOAD
SELECT [inner_field]
END
APPEND {query: base}
SELECT [outer_field]
`)
	refs := ExtractFields(q)

	inner := refByName(refs, "inner_field")
	require.NotNil(t, inner)
	assert.Equal(t, "base", inner.Scope)

	outer := refByName(refs, "outer_field")
	require.NotNil(t, outer)
	assert.Empty(t, outer.Scope)
}

func TestExtractFieldsStringFilterNotNumeric(t *testing.T) {
	q := parse(t, `CATEGORY db_x
TAGLOAD
FILTER {key: "oname", cmp: "eq", value: "web-1"}`)
	refs := ExtractFields(q)
	require.Len(t, refs, 1)
	assert.False(t, refs[0].Numeric)
}

func TestExtractFieldsIdempotent(t *testing.T) {
	q := parse(t, `
CATEGORY db_x
TAGLOAD
SELECT [oname, cpu, mem]
FILTER {key: "cpu", cmp: "gt", value: 80}
`)
	first := ExtractFields(q)
	second := ExtractFields(q)
	assert.Equal(t, first, second)
}

func TestHasTimeBucketing(t *testing.T) {
	assert.True(t, HasTimeBucketing(parse(t, `GROUP {pk: "oname", timeunit: "5m"}`)))
	assert.False(t, HasTimeBucketing(parse(t, `GROUP {pk: "oname"}`)))
	assert.True(t, HasTimeBucketing(parse(t, "SUB {id: b}\nGROUP {timeunit: \"1h\"}\nEND")))
}

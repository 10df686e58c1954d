package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMeta(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStaticFinder(t *testing.T) {
	finder := Static{
		"db_postgresql": &CategoryMeta{CategoryName: "db_postgresql"},
	}

	meta, err := finder.Lookup("db_postgresql")
	require.NoError(t, err)
	assert.Equal(t, "db_postgresql", meta.CategoryName)

	_, err = finder.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHasField(t *testing.T) {
	meta := &CategoryMeta{
		CategoryName: "db_postgresql",
		PK:           []string{"oname"},
		Tags:         []Tag{{TagName: "host"}},
		Fields:       []Field{{FieldName: "cpu"}},
	}

	assert.True(t, meta.HasField("cpu"))
	assert.True(t, meta.HasField("host"))
	assert.True(t, meta.HasField("oname"))
	assert.False(t, meta.HasField("mem"))
}

func TestOpenDir(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, "db_postgresql.meta", `{
		"categoryName": "db_postgresql",
		"title": "PostgreSQL Monitoring",
		"pk": ["oname"],
		"fields": [{"fieldName": "cpu", "unit": "%"}]
	}`)
	writeMeta(t, dir, "db_mysql.meta", `{
		"categoryName": "db_mysql",
		"title": "MySQL Monitoring"
	}`)
	writeMeta(t, dir, "notes.txt", "not a meta file")

	finder, err := OpenDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"db_mysql", "db_postgresql"}, finder.Categories())

	meta, err := finder.Lookup("db_postgresql")
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL Monitoring", meta.Title)
	assert.True(t, meta.HasField("cpu"))

	_, err = finder.Lookup("db_oracle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenDirSkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, "good.meta", `{"categoryName": "good"}`)
	writeMeta(t, dir, "broken.meta", `{this is not json`)
	writeMeta(t, dir, "nameless.meta", `{"title": "missing name"}`)

	finder, err := OpenDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, finder.Categories())
}

func TestOpenDirTranslationsOnlyFillGaps(t *testing.T) {
	dir := t.TempDir()
	writeMeta(t, dir, "db_postgresql.meta", `{"categoryName": "db_postgresql", "title": "English"}`)
	writeMeta(t, dir, "db_postgresql_ko.meta", `{"categoryName": "db_postgresql", "title": "Korean"}`)
	writeMeta(t, dir, "db_oracle_ja.meta", `{"categoryName": "db_oracle", "title": "Japanese"}`)

	finder, err := OpenDir(dir)
	require.NoError(t, err)

	meta, err := finder.Lookup("db_postgresql")
	require.NoError(t, err)
	assert.Equal(t, "English", meta.Title)

	// No base file exists, so the translation fills the gap.
	meta, err = finder.Lookup("db_oracle")
	require.NoError(t, err)
	assert.Equal(t, "Japanese", meta.Title)
}

func TestOpenDirMissing(t *testing.T) {
	_, err := OpenDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func searchFixture(t *testing.T) *DirFinder {
	dir := t.TempDir()
	writeMeta(t, dir, "db_postgresql.meta", `{
		"categoryName": "db_postgresql",
		"title": "PostgreSQL Monitoring",
		"platforms": ["linux", "windows"]
	}`)
	writeMeta(t, dir, "db_mysql.meta", `{
		"categoryName": "db_mysql",
		"title": "MySQL Monitoring"
	}`)
	writeMeta(t, dir, "server_cpu.meta", `{
		"categoryName": "server_cpu",
		"title": "Server CPU Usage"
	}`)

	finder, err := OpenDir(dir)
	require.NoError(t, err)
	return finder
}

func TestSearchExactName(t *testing.T) {
	results := searchFixture(t).Search("db_postgresql", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "db_postgresql", results[0].CategoryName)
}

func TestSearchSubstringAndNamePart(t *testing.T) {
	results := searchFixture(t).Search("cpu", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "server_cpu", results[0].CategoryName)

	results = searchFixture(t).Search("db", 10)
	assert.Len(t, results, 2)
}

func TestSearchPlatform(t *testing.T) {
	results := searchFixture(t).Search("linux", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "db_postgresql", results[0].CategoryName)
}

func TestSearchLimitAndEmptyQuery(t *testing.T) {
	finder := searchFixture(t)
	assert.Len(t, finder.Search("db", 1), 1)
	assert.Empty(t, finder.Search("", 10))
	assert.Empty(t, finder.Search("   ", 10))
	assert.Empty(t, finder.Search("zzz_nothing", 10))
}

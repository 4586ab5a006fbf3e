package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "title": "Relationship Check-in",
  "questions": [
    {"key": "q_one", "text": "First question?", "guide": "A hint.", "category_hint": "vitality"},
    {"key": "q_two", "text": "Second question?"},
    {"key": "q_three", "text": "Third question?", "input_type": "text"}
  ]
}`

func writeCatalog(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoaderCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "REL.en.json", sampleCatalog)

	loader := NewLoader(dir, "en")
	catalog, err := loader.Catalog(domain.UnitRelationship)
	require.NoError(t, err)

	assert.Equal(t, domain.UnitRelationship, catalog.UnitType)
	assert.Equal(t, "en", catalog.Locale)
	assert.Equal(t, "Relationship Check-in", catalog.Title)
	assert.Equal(t, 3, catalog.QuestionCount())

	first, err := catalog.Question(0)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Idx)
	assert.Equal(t, "q_one", first.Key)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, "vitality", first.CategoryHint)

	// Missing input_type defaults to text.
	second, err := catalog.Question(1)
	require.NoError(t, err)
	assert.Equal(t, "text", second.InputType)
}

func TestCatalogPrimaryCategory(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "REL.en.json", sampleCatalog)
	writeCatalog(t, dir, "SELF.en.json", `{"title": "Self", "questions": [{"key": "q", "text": "Q?"}]}`)

	loader := NewLoader(dir, "en")

	rel, err := loader.Catalog(domain.UnitRelationship)
	require.NoError(t, err)
	assert.Equal(t, "vitality", rel.PrimaryCategory())

	// A catalog whose first question carries no hint defaults to self.
	self, err := loader.Catalog(domain.UnitSelf)
	require.NoError(t, err)
	assert.Equal(t, "self", self.PrimaryCategory())
}

func TestLoaderCachesCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "REL.en.json", sampleCatalog)

	loader := NewLoader(dir, "en")
	first, err := loader.Catalog(domain.UnitRelationship)
	require.NoError(t, err)

	// Removing the file does not affect the cached catalog.
	require.NoError(t, os.Remove(filepath.Join(dir, "REL.en.json")))
	second, err := loader.Catalog(domain.UnitRelationship)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoaderMissingCatalog(t *testing.T) {
	loader := NewLoader(t.TempDir(), "en")
	_, err := loader.Catalog(domain.UnitSelf)
	assert.ErrorIs(t, err, ErrCatalogNotFound)
}

func TestLoaderEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "SELF.en.json", `{"title": "Empty", "questions": []}`)

	loader := NewLoader(dir, "en")
	_, err := loader.Catalog(domain.UnitSelf)
	assert.ErrorContains(t, err, "no questions")
}

func TestCatalogQuestionOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "REL.en.json", sampleCatalog)

	loader := NewLoader(dir, "en")
	catalog, err := loader.Catalog(domain.UnitRelationship)
	require.NoError(t, err)

	_, err = catalog.Question(3)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
	_, err = catalog.Question(-1)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
}

func TestShippedCatalogsParse(t *testing.T) {
	loader := NewLoader(filepath.Join("..", "..", "content"), "en")

	for _, unitType := range []domain.UnitType{
		domain.UnitRelationship, domain.UnitSelf, domain.UnitCareer,
		domain.UnitHealth, domain.UnitMoney, domain.UnitGrowth,
	} {
		catalog, err := loader.Catalog(unitType)
		require.NoError(t, err, "catalog for %s", unitType)
		assert.Equal(t, 7, catalog.QuestionCount(), "catalog for %s", unitType)
	}
}

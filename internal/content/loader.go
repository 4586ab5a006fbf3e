// Package content loads the static question catalogs that drive a unit
// session. Catalogs are JSON files on disk, read once and cached for the
// life of the process; questions never change mid-session.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phrazzld/unit-api/internal/domain"
)

// ErrCatalogNotFound indicates no catalog file exists for the requested
// unit type and locale.
var ErrCatalogNotFound = errors.New("question catalog not found")

// ErrQuestionOutOfRange indicates a question index past the catalog end.
var ErrQuestionOutOfRange = errors.New("question index out of range")

// Question is one prompt in a catalog. Idx is zero-based and Total
// repeats the catalog size so a question can be rendered standalone.
type Question struct {
	Idx          int    `json:"idx"`
	Key          string `json:"key"`
	Text         string `json:"text"`
	Guide        string `json:"guide,omitempty"`
	CategoryHint string `json:"category_hint,omitempty"`
	InputType    string `json:"input_type"`
	Total        int    `json:"total"`
}

// Catalog is the full question set for one unit type and locale.
type Catalog struct {
	UnitType  domain.UnitType `json:"unit_type"`
	Locale    string          `json:"locale"`
	Title     string          `json:"title"`
	Questions []Question      `json:"questions"`
}

// QuestionCount returns the number of questions in the catalog.
func (c *Catalog) QuestionCount() int {
	return len(c.Questions)
}

// PrimaryCategory returns the catalog's leading category, taken from
// the first question's hint. Catalogs without a hint default to "self".
func (c *Catalog) PrimaryCategory() string {
	if len(c.Questions) > 0 && c.Questions[0].CategoryHint != "" {
		return c.Questions[0].CategoryHint
	}
	return "self"
}

// Question returns the question at idx.
func (c *Catalog) Question(idx int) (Question, error) {
	if idx < 0 || idx >= len(c.Questions) {
		return Question{}, fmt.Errorf("%w: idx %d of %d", ErrQuestionOutOfRange, idx, len(c.Questions))
	}
	return c.Questions[idx], nil
}

// catalogFile is the on-disk shape. Idx and Total are derived at load
// time rather than trusted from the file.
type catalogFile struct {
	Title     string `json:"title"`
	Questions []struct {
		Key          string `json:"key"`
		Text         string `json:"text"`
		Guide        string `json:"guide"`
		CategoryHint string `json:"category_hint"`
		InputType    string `json:"input_type"`
	} `json:"questions"`
}

// Loader reads catalogs from a content directory, keyed by unit type and
// locale as "<TYPE>.<locale>.json". Safe for concurrent use.
type Loader struct {
	dir    string
	locale string

	mu       sync.Mutex
	catalogs map[domain.UnitType]*Catalog
}

// NewLoader creates a loader rooted at dir for the given locale.
func NewLoader(dir, locale string) *Loader {
	return &Loader{
		dir:      dir,
		locale:   locale,
		catalogs: make(map[domain.UnitType]*Catalog),
	}
}

// Catalog returns the catalog for the unit type, loading it from disk on
// first use.
func (l *Loader) Catalog(unitType domain.UnitType) (*Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if catalog, ok := l.catalogs[unitType]; ok {
		return catalog, nil
	}

	catalog, err := l.load(unitType)
	if err != nil {
		return nil, err
	}
	l.catalogs[unitType] = catalog
	return catalog, nil
}

func (l *Loader) load(unitType domain.UnitType) (*Catalog, error) {
	path := filepath.Join(l.dir, fmt.Sprintf("%s.%s.json", unitType, l.locale))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrCatalogNotFound, unitType, l.locale)
		}
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if len(file.Questions) == 0 {
		return nil, fmt.Errorf("catalog %s has no questions", path)
	}

	catalog := &Catalog{
		UnitType:  unitType,
		Locale:    l.locale,
		Title:     file.Title,
		Questions: make([]Question, len(file.Questions)),
	}
	for i, q := range file.Questions {
		inputType := q.InputType
		if inputType == "" {
			inputType = "text"
		}
		catalog.Questions[i] = Question{
			Idx:          i,
			Key:          q.Key,
			Text:         q.Text,
			Guide:        q.Guide,
			CategoryHint: q.CategoryHint,
			InputType:    inputType,
			Total:        len(file.Questions),
		}
	}
	return catalog, nil
}

package services

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// Accumulator holds the translated objects of the current batch keyed by
// object name. Writes tagged with any batch other than the current one are
// dropped.
type Accumulator struct {
	mu      sync.RWMutex
	batchID uuid.UUID
	mode    models.FetchMode
	objects map[string]*models.ObjectSchema
}

// NewAccumulator returns an empty accumulator in schema mode.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		mode:    models.FetchModeSchema,
		objects: make(map[string]*models.ObjectSchema),
	}
}

// Reset clears every entry and makes batchID the current batch.
func (a *Accumulator) Reset(batchID uuid.UUID, mode models.FetchMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batchID = batchID
	a.mode = mode
	a.objects = make(map[string]*models.ObjectSchema)
}

// Put stores one object for batchID. Returns false when batchID is stale.
func (a *Accumulator) Put(batchID uuid.UUID, schema *models.ObjectSchema) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if batchID != a.batchID {
		return false
	}
	a.objects[schema.Name] = schema
	return true
}

// BatchID returns the current batch.
func (a *Accumulator) BatchID() uuid.UUID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.batchID
}

// Mode returns the translation mode of the current contents.
func (a *Accumulator) Mode() models.FetchMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Len returns the number of stored objects.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.objects)
}

// Get returns the stored object with the given name.
func (a *Accumulator) Get(name string) (*models.ObjectSchema, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.objects[name]
	return s, ok
}

// Names returns the stored object names sorted.
func (a *Accumulator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.objects))
	for name := range a.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SchemaDocument copies out the column sets of every object that has them.
func (a *Accumulator) SchemaDocument() models.SchemaDocument {
	a.mu.RLock()
	defer a.mu.RUnlock()
	doc := make(models.SchemaDocument, len(a.objects))
	for name, obj := range a.objects {
		if obj.Columns == nil {
			continue
		}
		cols := make(map[string]models.ColumnDescriptor, len(obj.Columns))
		for field, col := range obj.Columns {
			cols[field] = col
		}
		doc[name] = cols
	}
	return doc
}

// RecipeDocument copies out the rule sets of every object that has them.
func (a *Accumulator) RecipeDocument() models.RecipeDocument {
	a.mu.RLock()
	defer a.mu.RUnlock()
	doc := make(models.RecipeDocument, len(a.objects))
	for name, obj := range a.objects {
		if obj.Rules == nil {
			continue
		}
		rules := make(map[string]models.GenerationRule, len(obj.Rules))
		for field, rule := range obj.Rules {
			rules[field] = rule
		}
		doc[name] = rules
	}
	return doc
}

// Load replaces the contents wholesale with doc under a fresh batch ID, so
// writes from any in-flight batch are dropped.
func (a *Accumulator) Load(doc models.SchemaDocument) {
	objects := make(map[string]*models.ObjectSchema, len(doc))
	for name, cols := range doc {
		copied := make(map[string]models.ColumnDescriptor, len(cols))
		for field, col := range cols {
			copied[field] = col
		}
		objects[name] = &models.ObjectSchema{Name: name, Columns: copied}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.batchID = uuid.New()
	a.mode = models.FetchModeSchema
	a.objects = objects
}

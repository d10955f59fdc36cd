package core

// FieldAccessor reads one named attribute from an entity.
// ok is false when the entity does not carry the attribute.
type FieldAccessor func(row Entity) (value any, ok bool)

// Schema resolves attribute names of one entity type to accessors.
// Implementations resolve names once, at configuration time.
type Schema interface {
	Field(name string) (FieldAccessor, bool)
}

// Record is a generic row keyed by column name, as returned by SQL sources.
type Record map[string]any

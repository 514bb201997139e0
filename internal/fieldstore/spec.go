package fieldstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/driftline/foundry/pkg/errors"
)

// FieldSpec is the static configuration of one logical field: which column
// backs it, how its values translate between tiers, and which cache tiers it
// participates in. Both tiers are opted in by default.
type FieldSpec struct {
	// Name is the logical field name consumers use.
	Name string

	// Column is the persistent-store column name. Defaults to Name.
	Column string

	// Codec translates values for the persistent and distributed tiers.
	// Defaults to StringCodec.
	Codec Codec

	// SkipLocal excludes the field from the in-process cache, for derived
	// or expensive values that must not be pinned in memory.
	SkipLocal bool

	// SkipDistributed excludes the field from the shared cache, for values
	// that must never leave the process unencrypted.
	SkipDistributed bool
}

// CacheEnabled reports whether the field participates in the local tier.
func (f FieldSpec) CacheEnabled() bool { return !f.SkipLocal }

// DistributedEnabled reports whether the field participates in the shared
// distributed tier.
func (f FieldSpec) DistributedEnabled() bool { return !f.SkipDistributed }

// Schema is the immutable field table of one entity type. It maps logical
// field names to their specs and names the persistent collection backing the
// type.
type Schema struct {
	collection string
	fields     map[string]FieldSpec
	names      []string
}

// NewSchema builds a schema for a collection, applying per-field defaults.
// Duplicate or empty field names are configuration errors.
func NewSchema(collection string, specs ...FieldSpec) (*Schema, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, errors.Config("schema", "collection name is required")
	}
	if len(specs) == 0 {
		return nil, errors.Config("schema", fmt.Sprintf("collection %q defines no fields", collection))
	}

	s := &Schema{
		collection: collection,
		fields:     make(map[string]FieldSpec, len(specs)),
		names:      make([]string, 0, len(specs)),
	}
	for _, spec := range specs {
		spec.Name = strings.TrimSpace(spec.Name)
		if spec.Name == "" {
			return nil, errors.Config("schema", fmt.Sprintf("collection %q has a field without a name", collection))
		}
		if _, dup := s.fields[spec.Name]; dup {
			return nil, errors.Config("schema", fmt.Sprintf("collection %q defines field %q twice", collection, spec.Name))
		}
		if spec.Column == "" {
			spec.Column = spec.Name
		}
		if spec.Codec == nil {
			spec.Codec = StringCodec{}
		}
		s.fields[spec.Name] = spec
		s.names = append(s.names, spec.Name)
	}
	sort.Strings(s.names)
	return s, nil
}

// MustSchema is NewSchema for statically-known tables; it panics on error.
func MustSchema(collection string, specs ...FieldSpec) *Schema {
	s, err := NewSchema(collection, specs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Collection names the persistent collection (table) backing the entity.
func (s *Schema) Collection() string { return s.collection }

// Field resolves a logical field name. Unknown names are a configuration
// error, surfaced loudly rather than treated as a miss.
func (s *Schema) Field(name string) (FieldSpec, error) {
	spec, ok := s.fields[name]
	if !ok {
		return FieldSpec{}, errors.Config("schema", fmt.Sprintf("collection %q has no field %q", s.collection, name))
	}
	return spec, nil
}

// FieldNames returns all logical field names in sorted order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// resolve maps a list of logical names to their specs, failing fast on the
// first unknown name.
func (s *Schema) resolve(names []string) ([]FieldSpec, error) {
	specs := make([]FieldSpec, 0, len(names))
	for _, name := range names {
		spec, err := s.Field(name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

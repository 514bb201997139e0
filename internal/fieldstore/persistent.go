package fieldstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/driftline/foundry/pkg/errors"
)

// PersistentStore adapts the SQL database to per-field access for a single
// record. It is the sole source of truth: every error here is hard and
// aborts the calling operation, because there is no tier beneath it.
type PersistentStore struct {
	db     *gorm.DB
	schema *Schema
	id     string
}

// NewPersistentStore builds the authoritative tier adapter for one record.
func NewPersistentStore(db *gorm.DB, schema *Schema, id ID) *PersistentStore {
	return &PersistentStore{db: db, schema: schema, id: id.Hex()}
}

// GetFields reads the requested logical fields with a single projected
// query. The boolean reports whether the row exists at all; a missing row
// is an absent result, not an error.
func (p *PersistentStore) GetFields(ctx context.Context, fields []string) (map[string]any, bool, error) {
	specs, err := p.schema.resolve(fields)
	if err != nil {
		return nil, false, err
	}

	columns := make([]string, 0, len(specs))
	for _, spec := range specs {
		columns = append(columns, spec.Column)
	}

	row := map[string]any{}
	res := p.db.WithContext(ctx).
		Table(p.schema.Collection()).
		Select(columns).
		Where("id = ?", p.id).
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return nil, false, errors.Hard("persistent.get", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	out := make(map[string]any, len(specs))
	for _, spec := range specs {
		raw, ok := row[spec.Column]
		if !ok || raw == nil {
			continue
		}
		value, decodeErr := spec.Codec.FromPersistent(raw)
		if decodeErr != nil {
			return nil, false, errors.Hard("persistent.get", fmt.Errorf("field %q: %w", spec.Name, decodeErr))
		}
		if value != nil {
			out[spec.Name] = value
		}
	}
	return out, true, nil
}

// SetFields writes the supplied logical fields with a single update keyed by
// the record id. An update that matches no row is a hard error: the record
// does not exist and the write must not be silently dropped.
func (p *PersistentStore) SetFields(ctx context.Context, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	updates := make(map[string]any, len(values))
	for field, value := range values {
		spec, err := p.schema.Field(field)
		if err != nil {
			return err
		}
		encoded, encodeErr := spec.Codec.ToPersistent(value)
		if encodeErr != nil {
			return errors.Config("persistent.set", fmt.Sprintf("field %q: %v", field, encodeErr))
		}
		updates[spec.Column] = encoded
	}

	res := p.db.WithContext(ctx).
		Table(p.schema.Collection()).
		Where("id = ?", p.id).
		Updates(updates)
	if res.Error != nil {
		return errors.Hard("persistent.set", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.Hard("persistent.set", fmt.Errorf("record %s/%s not found", p.schema.Collection(), p.id))
	}
	return nil
}

// HasField reports whether the record exists and the field holds a non-null
// value.
func (p *PersistentStore) HasField(ctx context.Context, field string) (bool, error) {
	return p.hasColumns(ctx, []string{field})
}

// HasFields reports whether every requested field holds a non-null value,
// using one query with the presence predicates combined.
func (p *PersistentStore) HasFields(ctx context.Context, fields []string) (bool, error) {
	return p.hasColumns(ctx, fields)
}

func (p *PersistentStore) hasColumns(ctx context.Context, fields []string) (bool, error) {
	specs, err := p.schema.resolve(fields)
	if err != nil {
		return false, err
	}

	query := p.db.WithContext(ctx).
		Table(p.schema.Collection()).
		Select("id").
		Where("id = ?", p.id)
	for _, spec := range specs {
		query = query.Where(fmt.Sprintf("%s IS NOT NULL", spec.Column))
	}

	var matches []string
	if err := query.Limit(1).Pluck("id", &matches).Error; err != nil {
		return false, errors.Hard("persistent.has", err)
	}
	return len(matches) > 0, nil
}

// Flush deletes the whole row when called without fields, or nulls out just
// the named columns otherwise.
func (p *PersistentStore) Flush(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		res := p.db.WithContext(ctx).
			Table(p.schema.Collection()).
			Where("id = ?", p.id).
			Delete(nil)
		if res.Error != nil {
			return errors.Hard("persistent.flush", res.Error)
		}
		return nil
	}

	specs, err := p.schema.resolve(fields)
	if err != nil {
		return err
	}
	unset := make(map[string]any, len(specs))
	for _, spec := range specs {
		unset[spec.Column] = nil
	}

	res := p.db.WithContext(ctx).
		Table(p.schema.Collection()).
		Where("id = ?", p.id).
		Updates(unset)
	if res.Error != nil {
		return errors.Hard("persistent.flush", res.Error)
	}
	return nil
}

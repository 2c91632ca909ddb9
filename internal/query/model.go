package query

import "fmt"

// Model is the record type a query targets.
type Model struct {
	Name       string
	Fields     []string
	PrimaryKey []string
}

// PrimaryIdentifier is the projection that uniquely identifies a record.
func (m *Model) PrimaryIdentifier() ModelProjection {
	return NewProjection(m.PrimaryKey...)
}

// AllFields is the projection of every scalar field.
func (m *Model) AllFields() ModelProjection {
	return NewProjection(m.Fields...)
}

// Validate checks that the primary key and the given projection name real
// fields.
func (m *Model) Validate(p ModelProjection) error {
	if m == nil {
		return fmt.Errorf("query has no model")
	}
	if len(m.PrimaryKey) == 0 {
		return fmt.Errorf("model %s has no primary key", m.Name)
	}
	all := m.AllFields()
	if !m.PrimaryIdentifier().IsSubsetOf(all) {
		return fmt.Errorf("model %s: primary key %s is not a subset of its fields", m.Name, m.PrimaryIdentifier())
	}
	for _, f := range p.Fields() {
		if !all.Contains(f) {
			return fmt.Errorf("model %s has no field %q", m.Name, f)
		}
	}
	return nil
}

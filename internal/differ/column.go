package differ

import (
	"strings"

	"github.com/roach88/lift/internal/sqlschema"
)

// ColumnChange is a single kind of change between two column versions.
type ColumnChange uint8

const (
	ChangeType ColumnChange = 1 << iota
	ChangeArity
	ChangeDefault
	ChangeRename
)

// ColumnChanges is the set of changes between two column versions.
type ColumnChanges struct {
	bits ColumnChange
}

// NewColumnChanges builds a change set from individual changes.
func NewColumnChanges(changes ...ColumnChange) ColumnChanges {
	var c ColumnChanges
	for _, ch := range changes {
		c.bits |= ch
	}
	return c
}

func (c ColumnChanges) TypeChanged() bool    { return c.bits&ChangeType != 0 }
func (c ColumnChanges) ArityChanged() bool   { return c.bits&ChangeArity != 0 }
func (c ColumnChanges) DefaultChanged() bool { return c.bits&ChangeDefault != 0 }
func (c ColumnChanges) Renamed() bool        { return c.bits&ChangeRename != 0 }
func (c ColumnChanges) IsEmpty() bool        { return c.bits == 0 }

// OnlyDefaultChanged is true when the default is the single change.
func (c ColumnChanges) OnlyDefaultChanged() bool { return c.bits == ChangeDefault }

// OnlyRenamed is true when the name is the single change.
func (c ColumnChanges) OnlyRenamed() bool { return c.bits == ChangeRename }

// Names lists the changes in a fixed order, for display.
func (c ColumnChanges) Names() []string {
	var names []string
	if c.TypeChanged() {
		names = append(names, "type")
	}
	if c.ArityChanged() {
		names = append(names, "arity")
	}
	if c.DefaultChanged() {
		names = append(names, "default")
	}
	if c.Renamed() {
		names = append(names, "rename")
	}
	return names
}

func (c ColumnChanges) String() string {
	if c.IsEmpty() {
		return "none"
	}
	return strings.Join(c.Names(), ",")
}

// ColumnDiffer pairs two versions of the same logical column.
// All facts are derived from Previous and Next on demand.
type ColumnDiffer struct {
	Dialect  sqlschema.Dialect
	Previous *sqlschema.Column
	Next     *sqlschema.Column
}

// AllChanges classifies the differences between Previous and Next.
func (d *ColumnDiffer) AllChanges() ColumnChanges {
	var c ColumnChanges
	if d.TypeChanged() {
		c.bits |= ChangeType
	}
	if d.ArityChanged() {
		c.bits |= ChangeArity
	}
	if d.DefaultChanged() {
		c.bits |= ChangeDefault
	}
	if d.Renamed() {
		c.bits |= ChangeRename
	}
	return c
}

// TypeChanged compares type families and list-ness. Raw data type spellings
// are not considered; see DataTypeRestated.
func (d *ColumnDiffer) TypeChanged() bool {
	prev, next := d.Previous.Type, d.Next.Type
	return prev.Family != next.Family || prev.Arity.IsList() != next.Arity.IsList()
}

func (d *ColumnDiffer) ArityChanged() bool {
	return d.Previous.Type.Arity != d.Next.Type.Arity
}

func (d *ColumnDiffer) DefaultChanged() bool {
	return !sqlschema.DefaultsEqual(d.Previous.Default, d.Next.Default)
}

func (d *ColumnDiffer) Renamed() bool {
	return sqlschema.FoldColumn(d.Dialect, d.Previous.Name) != sqlschema.FoldColumn(d.Dialect, d.Next.Name)
}

// DataTypeRestated is true when the raw data types are spelled differently.
func (d *ColumnDiffer) DataTypeRestated() bool {
	return d.Previous.Type.DataType != d.Next.Type.DataType
}

// Altered reports whether the column needs an ALTER at all. A restated raw
// type counts even when no change was classified.
func (d *ColumnDiffer) Altered() bool {
	return !d.AllChanges().IsEmpty() || d.DataTypeRestated()
}

// BecameRequired is true for an optional to required transition.
func (d *ColumnDiffer) BecameRequired() bool {
	return d.ArityChanged() && d.Next.Type.Arity.IsRequired()
}

// BecameList is true when a scalar column turns into a list.
func (d *ColumnDiffer) BecameList() bool {
	return !d.Previous.Type.Arity.IsList() && d.Next.Type.Arity.IsList()
}

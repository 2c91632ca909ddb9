package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lift/internal/ir"
	"github.com/roach88/lift/internal/sqlschema"
)

// LoadSchema reads a schema snapshot from a .cue, .yaml or .yml file and
// validates it.
func LoadSchema(path string) (*sqlschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path}
	}

	var s *sqlschema.Schema
	switch ext := filepath.Ext(path); ext {
	case ".cue":
		s, err = ParseSchemaCUE(path, data)
	case ".yaml", ".yml":
		s, err = ParseSchemaYAML(data)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported snapshot format %q", ext), File: path}
	}
	if err != nil {
		return nil, withFile(err, path)
	}
	return s, nil
}

// ParseSchemaCUE parses a snapshot written as CUE:
//
//	dialect: "mysql"
//	table: users: {
//		primary_key: ["id"]
//		column: id: {type: "int", family: "int", arity: "required", auto_increment: true}
//		column: email: {type: "varchar(191)", family: "string", arity: "nullable"}
//	}
//
// Tables and columns keep their declaration order.
func ParseSchemaCUE(filename string, src []byte) (*sqlschema.Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fromCUEError(ErrCodeBuildFailed, err)
	}

	s := &sqlschema.Schema{}
	if dv := v.LookupPath(cue.ParsePath("dialect")); dv.Exists() {
		name, err := dv.String()
		if err != nil {
			return nil, fromCUEError(ErrCodeDialect, err)
		}
		d, err := sqlschema.ParseDialect(name)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDialect, Message: err.Error(), Pos: dv.Pos()}
		}
		s.Dialect = d
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if tablesVal.Exists() {
		iter, err := tablesVal.Fields()
		if err != nil {
			return nil, fromCUEError(ErrCodeGeneric, err)
		}
		for iter.Next() {
			t, err := parseTableCUE(iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			s.Tables = append(s.Tables, t)
		}
	}

	return validated(s)
}

func parseTableCUE(name string, v cue.Value) (sqlschema.Table, error) {
	t := sqlschema.Table{Name: name}

	if pk := v.LookupPath(cue.ParsePath("primary_key")); pk.Exists() {
		if err := pk.Decode(&t.PrimaryKey); err != nil {
			return t, fromCUEError(ErrCodeColumn, err)
		}
	}

	columnsVal := v.LookupPath(cue.ParsePath("column"))
	if !columnsVal.Exists() {
		return t, nil
	}
	iter, err := columnsVal.Fields()
	if err != nil {
		return t, fromCUEError(ErrCodeGeneric, err)
	}
	for iter.Next() {
		c, err := parseColumnCUE(iter.Label(), iter.Value())
		if err != nil {
			return t, err
		}
		t.Columns = append(t.Columns, c)
	}
	return t, nil
}

func parseColumnCUE(name string, v cue.Value) (sqlschema.Column, error) {
	doc := columnDoc{Name: name}
	fields := []struct {
		name string
		dst  *string
	}{
		{"type", &doc.Type},
		{"family", &doc.Family},
		{"arity", &doc.Arity},
		{"renamed_from", &doc.RenamedFrom},
	}
	for _, f := range fields {
		fv := v.LookupPath(cue.ParsePath(f.name))
		if !fv.Exists() {
			continue
		}
		str, err := fv.String()
		if err != nil {
			return sqlschema.Column{}, fromCUEError(ErrCodeColumn, err)
		}
		*f.dst = str
	}
	if av := v.LookupPath(cue.ParsePath("auto_increment")); av.Exists() {
		b, err := av.Bool()
		if err != nil {
			return sqlschema.Column{}, fromCUEError(ErrCodeColumn, err)
		}
		doc.AutoIncrement = b
	}

	var def *defaultSpec
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		spec, err := parseDefaultCUE(dv)
		if err != nil {
			return sqlschema.Column{}, err
		}
		def = spec
	}

	c, err := doc.column(def)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Pos = v.Pos()
		}
		return c, err
	}
	return c, nil
}

func parseDefaultCUE(v cue.Value) (*defaultSpec, error) {
	spec := &defaultSpec{}
	if vv := v.LookupPath(cue.ParsePath("value")); vv.Exists() {
		val, err := cueToIR(vv)
		if err != nil {
			return nil, err
		}
		spec.hasValue, spec.value = true, val
	}
	if nv := v.LookupPath(cue.ParsePath("now")); nv.Exists() {
		b, err := nv.Bool()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		spec.now = b
	}
	if sv := v.LookupPath(cue.ParsePath("sequence")); sv.Exists() {
		str, err := sv.String()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		spec.sequence = str
	}
	if ev := v.LookupPath(cue.ParsePath("expr")); ev.Exists() {
		str, err := ev.String()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		spec.expr = str
	}
	return spec, nil
}

// cueToIR converts a concrete CUE value into an IR value. Floats are
// rejected, like everywhere else in the IR.
func cueToIR(v cue.Value) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		return ir.IRInt(i), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		return ir.IRBool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := cueToIR(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, fromCUEError(ErrCodeDefault, err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := cueToIR(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &LoadError{Code: ErrCodeDefault, Message: "floats are forbidden in default values", Pos: v.Pos()}
	default:
		return nil, &LoadError{Code: ErrCodeDefault, Message: fmt.Sprintf("unsupported value kind %v", v.IncompleteKind()), Pos: v.Pos()}
	}
}

// ParseSchemaYAML parses a snapshot written as YAML. Unknown keys are
// errors.
func ParseSchemaYAML(data []byte) (*sqlschema.Schema, error) {
	var doc schemaDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, newError(ErrCodeDecode, "%v", err)
	}

	s := &sqlschema.Schema{}
	if doc.Dialect != "" {
		d, err := sqlschema.ParseDialect(doc.Dialect)
		if err != nil {
			return nil, newError(ErrCodeDialect, "%v", err)
		}
		s.Dialect = d
	}

	for _, td := range doc.Tables {
		t := sqlschema.Table{Name: td.Name, PrimaryKey: td.PrimaryKey}
		for _, cd := range td.Columns {
			def, err := cd.Default.spec()
			if err != nil {
				return nil, err
			}
			c, err := cd.column(def)
			if err != nil {
				return nil, err
			}
			t.Columns = append(t.Columns, c)
		}
		s.Tables = append(s.Tables, t)
	}

	return validated(s)
}

func validated(s *sqlschema.Schema) (*sqlschema.Schema, error) {
	if err := sqlschema.Validate(s); err != nil {
		return nil, newError(ErrCodeSchema, "%v", err)
	}
	return s, nil
}

type schemaDoc struct {
	Dialect string     `yaml:"dialect"`
	Tables  []tableDoc `yaml:"tables"`
}

type tableDoc struct {
	Name       string      `yaml:"name"`
	PrimaryKey []string    `yaml:"primary_key"`
	Columns    []columnDoc `yaml:"columns"`
}

type columnDoc struct {
	Name          string      `yaml:"name"`
	Type          string      `yaml:"type"`
	Family        string      `yaml:"family"`
	Arity         string      `yaml:"arity"`
	AutoIncrement bool        `yaml:"auto_increment"`
	RenamedFrom   string      `yaml:"renamed_from"`
	Default       *defaultDoc `yaml:"default"`
}

type defaultDoc struct {
	Value    yaml.Node `yaml:"value"`
	Now      bool      `yaml:"now"`
	Sequence string    `yaml:"sequence"`
	Expr     string    `yaml:"expr"`
}

// defaultSpec is a default as written, before it is checked.
type defaultSpec struct {
	hasValue bool
	value    ir.IRValue
	now      bool
	sequence string
	expr     string
}

func (d *defaultDoc) spec() (*defaultSpec, error) {
	if d == nil {
		return nil, nil
	}
	spec := &defaultSpec{now: d.Now, sequence: d.Sequence, expr: d.Expr}
	if d.Value.Kind != 0 {
		var raw any
		if err := d.Value.Decode(&raw); err != nil {
			return nil, newError(ErrCodeDefault, "line %d: %v", d.Value.Line, err)
		}
		val, err := ir.FromAny(raw)
		if err != nil {
			return nil, newError(ErrCodeDefault, "line %d: %v", d.Value.Line, err)
		}
		spec.hasValue, spec.value = true, val
	}
	return spec, nil
}

func (d *defaultSpec) build() (*sqlschema.DefaultValue, error) {
	set := 0
	var out *sqlschema.DefaultValue
	if d.hasValue {
		set++
		out = sqlschema.ValueDefault(d.value)
	}
	if d.now {
		set++
		out = sqlschema.NowDefault()
	}
	if d.sequence != "" {
		set++
		out = sqlschema.SequenceDefault(d.sequence)
	}
	if d.expr != "" {
		set++
		out = sqlschema.DBGeneratedDefault(d.expr)
	}
	if set != 1 {
		return nil, fmt.Errorf("a default needs exactly one of value, now, sequence or expr (got %d)", set)
	}
	return out, nil
}

func (doc columnDoc) column(def *defaultSpec) (sqlschema.Column, error) {
	family, err := sqlschema.ParseFamily(doc.Family)
	if err != nil {
		return sqlschema.Column{}, newError(ErrCodeColumn, "column %s: %v", doc.Name, err)
	}
	arity, err := sqlschema.ParseArity(doc.Arity)
	if err != nil {
		return sqlschema.Column{}, newError(ErrCodeColumn, "column %s: %v", doc.Name, err)
	}

	c := sqlschema.Column{
		Name:          doc.Name,
		Type:          sqlschema.ColumnType{DataType: doc.Type, Family: family, Arity: arity},
		AutoIncrement: doc.AutoIncrement,
		RenamedFrom:   doc.RenamedFrom,
	}
	if def != nil {
		c.Default, err = def.build()
		if err != nil {
			return c, newError(ErrCodeDefault, "column %s: %v", doc.Name, err)
		}
	}
	return c, nil
}

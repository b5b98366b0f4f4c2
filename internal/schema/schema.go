// Package schema defines the entity descriptors and versioned migrations for
// the relational store. A Descriptor is the single source of truth for one
// wide table: the validator reads column names and natural keys from it, the
// storage writer reads column order, conflict keys, and window predicates.
package schema

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind identifies a logical entity family.
type Kind string

const (
	KindBatting    Kind = "batting"
	KindPitching   Kind = "pitching"
	KindPitchEvent Kind = "pitch_event"
)

// ColType is the storage type of a column.
type ColType int

const (
	Text ColType = iota
	Int
	Float
	Date
	Timestamp
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     ColType
	Nullable bool
}

// Row is one tabular record keyed by column name. Values are nil, string,
// int64, float64, or time.Time after provider parsing.
type Row map[string]any

// Descriptor describes one entity table.
type Descriptor struct {
	Kind         Kind
	Table        string
	Source       string // source ID used by the tracker and run history
	Columns      []Column
	ConflictKey  []string // uniqueness constraint columns
	NaturalKey   []string // duplicate-detection key for validation
	WindowColumn string   // season or game_date scoping column

	index map[string]int
}

// newDescriptor builds the column index and sanity-checks key references.
// Panics on a malformed definition: descriptors are package-level constants
// and a bad one is a programming error, not a runtime condition.
func newDescriptor(d Descriptor) *Descriptor {
	d.index = make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		if _, dup := d.index[c.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate column %q in %s", c.Name, d.Table))
		}
		d.index[c.Name] = i
	}
	for _, key := range [][]string{d.ConflictKey, d.NaturalKey, {d.WindowColumn}} {
		for _, name := range key {
			if _, ok := d.index[name]; !ok {
				panic(fmt.Sprintf("schema: key column %q not defined in %s", name, d.Table))
			}
		}
	}
	return &d
}

// ColumnNames returns the column names in declaration order.
func (d *Descriptor) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column definition.
func (d *Descriptor) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.Columns[i], true
}

// HasColumn reports whether the descriptor defines the named column.
func (d *Descriptor) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// isKeyColumn reports whether name is part of the conflict key.
func (d *Descriptor) isKeyColumn(name string) bool {
	for _, k := range d.ConflictKey {
		if k == name {
			return true
		}
	}
	return false
}

// NonKeyColumns returns the columns outside the conflict key, in order.
// Used to build ON CONFLICT ... DO UPDATE SET lists.
func (d *Descriptor) NonKeyColumns() []string {
	out := make([]string, 0, len(d.Columns)-len(d.ConflictKey))
	for _, c := range d.Columns {
		if !d.isKeyColumn(c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// RowValues converts a row into a value slice in declaration column order,
// normalizing absent-value markers to nil. NaN and infinite floats become
// nil — zero is a legal stat value and is never used as a missing marker.
//
// A row key the descriptor does not define yields *UnexpectedColumnError; a
// missing or nil value for a non-nullable column yields *MissingColumnError.
func (d *Descriptor) RowValues(row Row) ([]any, error) {
	for name := range row {
		if !d.HasColumn(name) {
			return nil, &UnexpectedColumnError{Table: d.Table, Column: name}
		}
	}

	values := make([]any, len(d.Columns))
	for i, c := range d.Columns {
		v, err := coerceValue(c, row[c.Name])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.Table, c.Name, err)
		}
		if v == nil && !c.Nullable {
			return nil, &MissingColumnError{Table: d.Table, Column: c.Name}
		}
		values[i] = v
	}
	return values, nil
}

// NaturalKeyValue builds the duplicate-detection key string for a row.
// Absent parts render empty so partial rows still produce a stable key.
func (d *Descriptor) NaturalKeyValue(row Row) string {
	parts := make([]string, len(d.NaturalKey))
	for i, name := range d.NaturalKey {
		if v := row[name]; v != nil {
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, "|")
}

// coerceValue normalizes one value for storage according to the column type.
func coerceValue(c Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch c.Type {
	case Text:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return s, nil
	case Int:
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case int64:
			return t, nil
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, nil
			}
			return int64(t), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
	case Float:
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, nil
			}
			return t, nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		default:
			return nil, fmt.Errorf("expected float, got %T", v)
		}
	case Date, Timestamp:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			ts, err := time.Parse("2006-01-02", t)
			if err != nil {
				return nil, fmt.Errorf("parse date %q: %w", t, err)
			}
			return ts, nil
		default:
			return nil, fmt.Errorf("expected time, got %T", v)
		}
	default:
		return nil, fmt.Errorf("unknown column type %d", c.Type)
	}
}

// sqlType maps a column type to its Postgres type.
func sqlType(t ColType) string {
	switch t {
	case Text:
		return "text"
	case Int:
		return "bigint"
	case Float:
		return "double precision"
	case Date:
		return "date"
	case Timestamp:
		return "timestamptz"
	}
	return "text"
}

// CreateSQL renders the CREATE TABLE statement for the descriptor. Every
// table carries a collected_at audit column maintained by the database.
func (d *Descriptor) CreateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", d.Table)
	for _, c := range d.Columns {
		fmt.Fprintf(&b, "    %s %s", c.Name, sqlType(c.Type))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(",\n")
	}
	b.WriteString("    collected_at timestamptz NOT NULL DEFAULT now(),\n")
	fmt.Fprintf(&b, "    UNIQUE (%s)\n)", strings.Join(d.ConflictKey, ", "))
	return b.String()
}

// --------------------------------------------------------------------------
// Typed schema mismatch errors
// --------------------------------------------------------------------------

// UnexpectedColumnError reports a record column the table does not define.
type UnexpectedColumnError struct {
	Table  string
	Column string
}

func (e *UnexpectedColumnError) Error() string {
	return fmt.Sprintf("unexpected column %q for table %s", e.Column, e.Table)
}

// MissingColumnError reports an absent value for a required column.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q for table %s", e.Column, e.Table)
}

package df

import (
	"fmt"
	"io"
)

// DF is the interface a dataframe implementation satisfies.
type DF interface {
	DC

	AppendColumn(col Column) error
	Copy() DF
	RowCount() int
}

// DC is the set of methods DFcore provides.
type DC interface {
	Column(colName string) Column
	ColumnCount() int
	ColumnNames() []string
	ColumnTypes(colNames ...string) ([]DataTypes, error)
	Core() *DFcore
	DropColumns(colNames ...string) error
	First() Column
	HasColumns(colNames ...string) bool
	Iter(reset bool) (row []any, err error)
	KeepColumns(colNames ...string) error
	Next() Column
	RenameColumn(oldName, newName string) error
}

// DFcore is the ordered set of columns that is embedded in specific implementations.
// Columns are kept as a doubly-linked list in the order they were appended.
type DFcore struct {
	head    *columnList
	current *columnList

	row int
}

type columnList struct {
	col Column

	prior *columnList
	next  *columnList
}

func NewDF(cols []Column) (*DFcore, error) {
	if cols == nil {
		return nil, fmt.Errorf("no columns in NewDF")
	}

	df := &DFcore{}
	for ind := 0; ind < len(cols); ind++ {
		if e := df.AppendColumn(cols[ind]); e != nil {
			return nil, e
		}
	}

	return df, nil
}

// *********** Methods ***********

func (df *DFcore) AppendColumn(col Column) error {
	if col == nil {
		return fmt.Errorf("nil column in AppendColumn")
	}

	if e := validName(col.Name()); e != nil {
		return e
	}

	if df.Column(col.Name()) != nil {
		return fmt.Errorf("duplicate column name: %s", col.Name())
	}

	if df.head != nil && col.Len() != df.head.col.Len() {
		return fmt.Errorf("length mismatch: df - %d, append col %s - %d", df.head.col.Len(), col.Name(), col.Len())
	}

	node := &columnList{col: col}

	if df.head == nil {
		df.head = node
		return nil
	}

	var tail *columnList
	for tail = df.head; tail.next != nil; tail = tail.next {
	}

	node.prior = tail
	tail.next = node

	return nil
}

func (df *DFcore) Column(colName string) Column {
	if n := df.node(colName); n != nil {
		return n.col
	}

	return nil
}

func (df *DFcore) ColumnCount() int {
	cols := 0
	for c := df.head; c != nil; c = c.next {
		cols++
	}

	return cols
}

func (df *DFcore) ColumnNames() []string {
	var names []string

	for h := df.head; h != nil; h = h.next {
		names = append(names, h.col.Name())
	}

	return names
}

// ColumnTypes returns the types of colNames, all columns if colNames is empty.
func (df *DFcore) ColumnTypes(colNames ...string) ([]DataTypes, error) {
	if colNames == nil {
		colNames = df.ColumnNames()
	}

	var dts []DataTypes
	for _, cn := range colNames {
		var c Column
		if c = df.Column(cn); c == nil {
			return nil, fmt.Errorf("column %s not found", cn)
		}

		dts = append(dts, c.DataType())
	}

	return dts, nil
}

func (df *DFcore) Core() *DFcore {
	return df
}

func (df *DFcore) DropColumns(colNames ...string) error {
	for _, cName := range colNames {
		var node *columnList

		if node = df.node(cName); node == nil {
			return fmt.Errorf("column %s not found", cName)
		}

		if node == df.head && node.next == nil {
			return fmt.Errorf("cannot drop last column %s", cName)
		}

		if node == df.head {
			df.head = node.next
			df.head.prior = nil
			continue
		}

		node.prior.next = node.next
		if node.next != nil {
			node.next.prior = node.prior
		}
	}

	df.current = nil

	return nil
}

// First resets iteration over columns and returns the first column.
func (df *DFcore) First() Column {
	df.current = df.head
	if df.current == nil {
		return nil
	}

	return df.current.col
}

// Next returns the next column, nil once the columns are exhausted.
func (df *DFcore) Next() Column {
	if df.current == nil || df.current.next == nil {
		df.current = nil
		return nil
	}

	df.current = df.current.next

	return df.current.col
}

func (df *DFcore) HasColumns(colNames ...string) bool {
	for _, cn := range colNames {
		if df.Column(cn) == nil {
			return false
		}
	}

	return true
}

// Iter returns the rows of the dataframe one at a time. Missing elements are nil.
// It returns io.EOF after the last row.
func (df *DFcore) Iter(reset bool) (row []any, err error) {
	if reset {
		df.row = 0
	}

	if df.head == nil || df.row >= df.head.col.Len() {
		return nil, io.EOF
	}

	for h := df.head; h != nil; h = h.next {
		row = append(row, h.col.Data().Element(df.row))
	}

	df.row++

	return row, nil
}

// KeepColumns drops every column not in colNames and reorders the rest to match colNames.
func (df *DFcore) KeepColumns(colNames ...string) error {
	var cols []Column
	for _, cn := range colNames {
		var c Column
		if c = df.Column(cn); c == nil {
			return fmt.Errorf("column %s not found", cn)
		}

		cols = append(cols, c)
	}

	var (
		tmp *DFcore
		e   error
	)
	if tmp, e = NewDF(cols); e != nil {
		return e
	}

	df.head, df.current = tmp.head, nil

	return nil
}

func (df *DFcore) RenameColumn(oldName, newName string) error {
	var col Column
	if col = df.Column(oldName); col == nil {
		return fmt.Errorf("column %s not found", oldName)
	}

	if df.Column(newName) != nil {
		return fmt.Errorf("column %s already exists, cannot rename %s", newName, oldName)
	}

	return col.Rename(newName)
}

func (df *DFcore) node(colName string) *columnList {
	for h := df.head; h != nil; h = h.next {
		if h.col.Name() == colName {
			return h
		}
	}

	return nil
}

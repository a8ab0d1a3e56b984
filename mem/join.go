package df

import (
	"fmt"
	"strings"

	d "github.com/invertedv/countyvote"
)

// Join left-joins right to df on the columns in on. The result has the rows of df in their original
// order followed by the non-key columns of right. Rows of df with no match in right, or with a missing
// key, get missing values in the right-hand columns.
//
// It is an error for right to have more than one row with the same key, for a key column to have
// different types in df and right, or for a non-key column name to appear in both.
func (df *DF) Join(right *DF, on ...string) (*DF, error) {
	if len(on) == 0 {
		return nil, fmt.Errorf("no join keys")
	}

	if !df.HasColumns(on...) || !right.HasColumns(on...) {
		return nil, fmt.Errorf("join keys %v not in both dataframes", on)
	}

	var leftKeys, rightKeys []*d.Vector
	for _, k := range on {
		lc, rc := df.Column(k), right.Column(k)
		if lc.DataType() != rc.DataType() {
			return nil, fmt.Errorf("join key %s has type %s on the left and %s on the right", k, lc.DataType(), rc.DataType())
		}

		leftKeys = append(leftKeys, lc.Data())
		rightKeys = append(rightKeys, rc.Data())
	}

	var rightCols []string
	for _, cn := range right.ColumnNames() {
		if d.Has(cn, on) {
			continue
		}

		if df.Column(cn) != nil {
			return nil, fmt.Errorf("column %s in both dataframes", cn)
		}

		rightCols = append(rightCols, cn)
	}

	var (
		index map[string]int
		e     error
	)
	if index, e = keyIndex(right.RowCount(), rightKeys); e != nil {
		return nil, e
	}

	rows := make([]int, df.RowCount())
	for ind := range rows {
		rows[ind] = -1
		if key, ok := keyString(ind, leftKeys); ok {
			if r, found := index[key]; found {
				rows[ind] = r
			}
		}
	}

	var dfOut *DF
	if dfOut, e = NewDFcol(df.cols()); e != nil {
		return nil, e
	}

	dfOut.funcs = df.funcs

	for _, cn := range rightCols {
		var col *Col
		if col, e = NewCol(right.Column(cn).Data().Take(rows), 0, d.ColName(cn)); e != nil {
			return nil, e
		}

		if ex := dfOut.AppendColumn(col); ex != nil {
			return nil, ex
		}
	}

	return dfOut, nil
}

// CheckKeys returns an error if any of the key columns are missing from df or if a key is repeated.
func (df *DF) CheckKeys(keys ...string) error {
	var vecs []*d.Vector
	for _, k := range keys {
		c := df.Column(k)
		if c == nil {
			return fmt.Errorf("key column %s not found", k)
		}

		vecs = append(vecs, c.Data())
	}

	_, e := keyIndex(df.RowCount(), vecs)

	return e
}

// keyIndex maps each key to its row. Rows with a missing key are not indexed.
func keyIndex(n int, keys []*d.Vector) (map[string]int, error) {
	index := make(map[string]int, n)
	for ind := 0; ind < n; ind++ {
		key, ok := keyString(ind, keys)
		if !ok {
			continue
		}

		if r, dup := index[key]; dup {
			return nil, fmt.Errorf("duplicate key %s at rows %d and %d", strings.ReplaceAll(key, "\x00", "/"), r, ind)
		}

		index[key] = ind
	}

	return index, nil
}

// cols returns copies of the columns of df.
func (df *DF) cols() []*Col {
	var out []*Col
	for c := df.First(); c != nil; c = df.Next() {
		out = append(out, c.Copy().(*Col))
	}

	return out
}

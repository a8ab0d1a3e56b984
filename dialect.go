package df

import (
	"database/sql"
	_ "embed"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// All code interacting with a database is here

var (
	//go:embed skeletons/clickhouse/create.txt
	chCreate string
	//go:embed skeletons/postgres/create.txt
	pgCreate string
	//go:embed skeletons/sqlite/create.txt
	slCreate string

	//go:embed skeletons/clickhouse/types.txt
	chTypes string
	//go:embed skeletons/postgres/types.txt
	pgTypes string
	//go:embed skeletons/sqlite/types.txt
	slTypes string

	//go:embed skeletons/clickhouse/fields.txt
	chFields string
	//go:embed skeletons/postgres/fields.txt
	pgFields string
	//go:embed skeletons/sqlite/fields.txt
	slFields string

	//go:embed skeletons/clickhouse/dropIf.txt
	chDropIf string
	//go:embed skeletons/postgres/dropIf.txt
	pgDropIf string
	//go:embed skeletons/sqlite/dropIf.txt
	slDropIf string
)

const (
	CH = "clickhouse"
	PG = "postgres"
	SL = "sqlite"
)

// Dialect wraps a *sql.DB with the SQL that differs across databases.
type Dialect struct {
	db      *sql.DB
	dialect string

	dtTypes []string
	dbTypes []string

	create string
	dropIf string
	fields string

	bufSize int // in MB
}

func NewDialect(dialect string, db *sql.DB) (*Dialect, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db in NewDialect")
	}

	dialect = strings.ToLower(dialect)

	d := &Dialect{db: db, dialect: dialect, bufSize: 1}

	var types string
	switch d.dialect {
	case CH:
		d.create, d.fields, d.dropIf = chCreate, chFields, chDropIf
		types = chTypes
	case PG:
		d.create, d.fields, d.dropIf = pgCreate, pgFields, pgDropIf
		types = pgTypes
	case SL:
		d.create, d.fields, d.dropIf = slCreate, slFields, slDropIf
		types = slTypes
	default:
		return nil, fmt.Errorf("no skeletons for database %s", dialect)
	}

	d.create, d.fields, d.dropIf = strings.TrimSpace(d.create), strings.TrimSpace(d.fields), strings.TrimSpace(d.dropIf)

	l := strings.Split(types, "\n")
	for _, lm := range l {
		if strings.TrimSpace(lm) == "" {
			continue
		}

		t := strings.Split(lm, ",")
		if len(t) != 2 {
			return nil, fmt.Errorf("bad types line in NewDialect: %s", lm)
		}

		if DTFromString(t[0]) == DTunknown {
			return nil, fmt.Errorf("unknown data type in NewDialect: %s", t[0])
		}

		d.dtTypes = append(d.dtTypes, t[0])
		d.dbTypes = append(d.dbTypes, strings.TrimSpace(t[1]))
	}

	return d, nil
}

// ***************** Methods *****************

func (d *Dialect) BufSize() int {
	return d.bufSize
}

func (d *Dialect) Close() error {
	return d.db.Close()
}

// Create creates tableName with the given fields. options are in key:value format and replace
// placeholders in the create skeleton.
func (d *Dialect) Create(tableName, orderBy string, fields []string, types []DataTypes, overwrite bool, options ...string) error {
	if len(fields) == 0 || len(fields) != len(types) {
		return fmt.Errorf("fields and types must be non-empty and the same length in Dialect.Create")
	}

	var (
		exists bool
		e      error
	)
	if exists, e = d.Exists(tableName); e != nil {
		return e
	}

	if exists && !overwrite {
		return fmt.Errorf("table %s exists", tableName)
	}

	if exists {
		if ex := d.DropTable(tableName); ex != nil {
			return ex
		}
	}

	if orderBy == "" {
		orderBy = fields[0]
	}

	create := strings.ReplaceAll(d.create, "?TableName", tableName)
	create = strings.Replace(create, "?OrderBy", orderBy, 1)

	var flds []string
	for ind := 0; ind < len(fields); ind++ {
		var (
			dbType string
			ex     error
		)
		if dbType, ex = d.dbtype(types[ind]); ex != nil {
			return ex
		}

		field := strings.ReplaceAll(d.fields, "?Field", fields[ind])
		field = strings.ReplaceAll(field, "?Type", dbType)
		flds = append(flds, field)
	}

	create = strings.Replace(create, "?fields", strings.Join(flds, ","), 1)
	for _, opt := range options {
		kv := strings.SplitN(opt, ":", 2)
		if len(kv) != 2 {
			return fmt.Errorf("invalid option in Dialect.Create: %s", opt)
		}

		create = strings.ReplaceAll(create, kv[0], kv[1])
	}

	if strings.Contains(create, "?") {
		return fmt.Errorf("create still has placeholders: %s", create)
	}

	_, e = d.db.Exec(create)

	return e
}

// CreateTable creates tableName with the columns of df.
func (d *Dialect) CreateTable(tableName, orderBy string, overwrite bool, df DF, options ...string) error {
	var (
		e   error
		dts []DataTypes
	)

	cols := df.ColumnNames()

	noDesc := strings.ReplaceAll(strings.ReplaceAll(orderBy, "DESC", ""), " ", "")
	if orderBy != "" && !df.HasColumns(strings.Split(noDesc, ",")...) {
		return fmt.Errorf("not all columns present in OrderBy %s", noDesc)
	}

	if dts, e = df.ColumnTypes(cols...); e != nil {
		return e
	}

	return d.Create(tableName, noDesc, cols, dts, overwrite, options...)
}

func (d *Dialect) DB() *sql.DB {
	return d.db
}

func (d *Dialect) DialectName() string {
	return d.dialect
}

func (d *Dialect) DropTable(tableName string) error {
	qry := strings.ReplaceAll(d.dropIf, "?TableName", tableName)
	_, e := d.db.Exec(qry)

	return e
}

func (d *Dialect) Exists(tableName string) (bool, error) {
	switch d.DialectName() {
	case CH:
		var exist uint8
		if e := d.db.QueryRow(fmt.Sprintf("EXISTS TABLE %s", tableName)).Scan(&exist); e != nil {
			return false, e
		}

		return exist == 1, nil
	case PG:
		var exist any
		if e := d.db.QueryRow(fmt.Sprintf("SELECT to_regclass('%s')", tableName)).Scan(&exist); e != nil {
			return false, e
		}

		return exist != nil, nil
	case SL:
		var n int
		qry := fmt.Sprintf("SELECT count(*) FROM sqlite_master WHERE type='table' AND name='%s'", tableName)
		if e := d.db.QueryRow(qry).Scan(&n); e != nil {
			return false, e
		}

		return n > 0, nil
	}

	return false, fmt.Errorf("no Exists for dialect %s", d.DialectName())
}

func (d *Dialect) InsertValues(tableName string, values []byte) error {
	qry := fmt.Sprintf("INSERT INTO %s VALUES ", tableName) + string(values)
	_, e := d.db.Exec(qry)

	return e
}

// IterSave inserts the rows of df into tableName in batches of about BufSize MB.
func (d *Dialect) IterSave(tableName string, df DF) error {
	const (
		bSep   = byte(',')
		bOpen  = byte('(')
		bClose = byte(')')
	)

	var buffer []byte
	bsize := d.bufSize * 1024 * 1024

	for row, e := df.Iter(true); e == nil; row, e = df.Iter(false) {
		if buffer != nil {
			buffer = append(buffer, bSep)
		}

		buffer = append(buffer, bOpen)
		for ind := 0; ind < len(row); ind++ {
			buffer = append(append(buffer, []byte(d.ToString(row[ind]))...), bSep)
		}

		buffer[len(buffer)-1] = bClose

		if bsize > 0 && len(buffer) >= bsize {
			if e := d.InsertValues(tableName, buffer); e != nil {
				return e
			}

			buffer = nil
		}
	}

	if buffer != nil {
		if e := d.InsertValues(tableName, buffer); e != nil {
			return e
		}
	}

	return nil
}

// Load runs qry and returns its columns. SQL NULLs become missing elements.
func (d *Dialect) Load(qry string) ([]*Vector, []string, []DataTypes, error) {
	fieldNames, fieldTypes, e1 := d.Types(qry)
	if e1 != nil {
		return nil, nil, nil, e1
	}

	var (
		n       int
		e2      error
		memData []*Vector
	)
	if n, e2 = d.RowCount(qry); e2 != nil {
		return nil, nil, nil, e2
	}

	for ind := 0; ind < len(fieldTypes); ind++ {
		memData = append(memData, MakeVector(fieldTypes[ind], n))
	}

	var (
		rows *sql.Rows
		e3   error
	)
	if rows, e3 = d.db.Query(qry); e3 != nil {
		return nil, nil, nil, e3
	}
	defer func() { _ = rows.Close() }()

	row2read := make([]any, len(fieldTypes))
	for ind := range row2read {
		var x any
		row2read[ind] = &x
	}

	indx := 0
	for rows.Next() {
		if indx >= n {
			return nil, nil, nil, fmt.Errorf("query returned more than %d rows: %s", n, qry)
		}

		if e4 := rows.Scan(row2read...); e4 != nil {
			return nil, nil, nil, e4
		}

		for ind := 0; ind < len(memData); ind++ {
			z := deref(*row2read[ind].(*any))
			if e := memData[ind].SetAny(z, indx); e == nil {
				continue
			}

			// an int column whose later rows don't fit becomes float
			var wide *Vector
			if fieldTypes[ind] != DTint {
				return nil, nil, nil, fmt.Errorf("column %s row %d: cannot store %v as %s", fieldNames[ind], indx, z, fieldTypes[ind])
			}

			if wide = memData[ind].Coerce(DTfloat); wide == nil {
				return nil, nil, nil, fmt.Errorf("column %s: cannot widen to float", fieldNames[ind])
			}

			memData[ind], fieldTypes[ind] = wide, DTfloat
			if e := wide.SetAny(z, indx); e != nil {
				return nil, nil, nil, fmt.Errorf("column %s row %d: %w", fieldNames[ind], indx, e)
			}
		}

		indx++
	}

	if e5 := rows.Err(); e5 != nil {
		return nil, nil, nil, e5
	}

	// change any dates to midnight UTC o.w. comparisons may not work
	for c := 0; c < len(memData); c++ {
		if fieldTypes[c] == DTdate {
			utc(memData[c])
		}
	}

	return memData, fieldNames, fieldTypes, nil
}

func (d *Dialect) RowCount(qry string) (int, error) {
	const skeleton = "WITH %s AS (%s) SELECT count(*) AS n FROM %s"
	var n int

	sig := d.WithName()
	q := fmt.Sprintf(skeleton, sig, qry, sig)
	if e := d.db.QueryRow(q).Scan(&n); e != nil {
		return 0, e
	}

	return n, nil
}

// Save writes df to tableName, replacing it if overwrite is true.
func (d *Dialect) Save(tableName, orderBy string, overwrite bool, df DF, options ...string) error {
	var (
		exists bool
		e      error
	)
	if exists, e = d.Exists(tableName); e != nil {
		return e
	}

	if exists && !overwrite {
		return fmt.Errorf("table %s exists", tableName)
	}

	if ex := d.CreateTable(tableName, orderBy, overwrite, df, options...); ex != nil {
		return ex
	}

	return d.IterSave(tableName, df)
}

func (d *Dialect) SetBufSize(mb int) {
	d.bufSize = mb
}

// ToString returns a string version of val that can be placed into SQL
func (d *Dialect) ToString(val any) string {
	if val == nil {
		return "NULL"
	}

	var (
		xv any
		ok bool
	)
	if xv, ok = toString(val); !ok {
		return "NULL"
	}

	x := xv.(string)
	if dt := WhatAmI(val); dt == DTdate || dt == DTstring {
		x = fmt.Sprintf("'%s'", strings.ReplaceAll(x, "'", "''"))
	}

	return x
}

// Types returns the names and types of the fields returned by qry. A type is read from the first row
// returned and, if that's NULL or there are no rows, from the database's type name. An int in a
// column the database declares as decimal is read as float.
func (d *Dialect) Types(qry string) (fieldNames []string, fieldTypes []DataTypes, err error) {
	const skeleton = "WITH %s AS (%s) SELECT * FROM %s LIMIT 1"

	sig := d.WithName()
	q := fmt.Sprintf(skeleton, sig, qry, sig)

	var (
		r      *sql.Rows
		ct     []*sql.ColumnType
		e0, e1 error
	)
	if r, e0 = d.db.Query(q); e0 != nil {
		return nil, nil, e0
	}
	defer func() { _ = r.Close() }()

	if ct, e1 = r.ColumnTypes(); e1 != nil {
		return nil, nil, e1
	}

	ry := make([]any, len(ct))
	for ind := range ry {
		var x any
		ry[ind] = &x
	}

	for r.Next() {
		if e2 := r.Scan(ry...); e2 != nil {
			return nil, nil, e2
		}
	}

	for ind := 0; ind < len(ry); ind++ {
		fieldNames = append(fieldNames, ct[ind].Name())

		// NUMERIC columns may hand back whole numbers as ints
		declared := dbTypeToDT(ct[ind].DatabaseTypeName())
		dt := valueType(deref(*ry[ind].(*any)))
		if dt == DTunknown || (dt == DTint && declared == DTfloat) {
			dt = declared
		}

		fieldTypes = append(fieldTypes, dt)
	}

	return fieldNames, fieldTypes, nil
}

func (d *Dialect) WithName() string {
	const wLen = 4
	return "cte_" + RandomLetters(wLen)
}

func (d *Dialect) dbtype(dt DataTypes) (string, error) {
	pos := Position(dt.String(), d.dtTypes)
	if pos < 0 {
		return "", fmt.Errorf("cannot find type %s to map to DB type", dt.String())
	}

	return d.dbTypes[pos], nil
}

// ***************** Helpers *****************

// deref follows pointers returned by drivers for nullable columns.
func deref(x any) any {
	v := reflect.ValueOf(x)
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return nil
	}

	return v.Interface()
}

func valueType(z any) DataTypes {
	switch z.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return DTint
	case float32, float64:
		return DTfloat
	case string, []byte:
		return DTstring
	case time.Time:
		return DTdate
	default:
		return DTunknown
	}
}

// dbTypeToDT maps a driver's DatabaseTypeName (e.g. Nullable(Float64), INT4, INTEGER) to DataTypes.
func dbTypeToDT(dbType string) DataTypes {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIMESTAMP"):
		return DTdate
	case strings.Contains(t, "FLOAT"), strings.Contains(t, "REAL"), strings.Contains(t, "DOUBLE"),
		strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"):
		return DTfloat
	case strings.Contains(t, "INT"):
		return DTint
	default:
		return DTstring
	}
}

// utc changes the entries of date slices to be midnight UTC
func utc(v *Vector) {
	col, e := v.AsDate()
	if e != nil {
		return
	}

	for rx := 0; rx < v.Len(); rx++ {
		if v.IsNA(rx) {
			continue
		}

		col[rx] = time.Date(col[rx].Year(), col[rx].Month(), col[rx].Day(), 0, 0, 0, 0, time.UTC)
	}
}

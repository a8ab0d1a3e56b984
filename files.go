package df

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// All code interacting with files is here

const (
	Sep         = ','
	EOL         = '\n'
	StringDelim = '"'
	DateFormat  = "2006-01-02"
	FloatFormat = "%g"
	Header      = true
)

// Files reads and writes delimited text files. Missing elements are written as NAstring.
type Files struct {
	FieldNames  []string
	EOL         byte
	Sep         byte
	StringDelim byte
	DateFormat  string
	FloatFormat string
	Header      bool

	file     *os.File
	fileName string
}

func NewFiles() *Files {
	f := &Files{
		EOL:         byte(EOL),
		Sep:         byte(Sep),
		StringDelim: byte(StringDelim),
		DateFormat:  DateFormat,
		FloatFormat: FloatFormat,
		Header:      Header,
	}

	return f
}

func (f *Files) Open(fileName string) error {
	var e error
	f.fileName = fileName
	f.file, e = os.Open(fileName)

	return e
}

func (f *Files) Create(fileName string) error {
	var e error
	f.fileName = fileName
	f.file, e = os.Create(fileName)

	return e
}

func (f *Files) FileName() string {
	return f.fileName
}

func (f *Files) Close() error {
	if f.file != nil {
		e := f.file.Close()
		f.file = nil

		return e
	}

	return fmt.Errorf("no open files")
}

// Format returns the text of a single element as WriteLine writes it.
func (f *Files) Format(x any) string {
	switch d := x.(type) {
	case nil:
		return NAstring
	case float64:
		return fmt.Sprintf(f.FloatFormat, d)
	case int:
		return fmt.Sprintf("%d", d)
	case time.Time:
		return d.Format(f.DateFormat)
	case string:
		delim := string(f.StringDelim)
		return delim + strings.ReplaceAll(d, delim, delim+delim) + delim
	default:
		return "#err#"
	}
}

func (f *Files) WriteLine(v []any) error {
	if f.file == nil {
		return fmt.Errorf("no open file in WriteLine")
	}

	_, e := f.file.Write(f.line(v))

	return e
}

func (f *Files) line(v []any) []byte {
	var line []byte
	for ind := 0; ind < len(v); ind++ {
		line = append(line, []byte(f.Format(v[ind]))...)
		if ind < len(v)-1 {
			line = append(line, f.Sep)
		}
	}

	return append(line, f.EOL)
}

func (f *Files) WriteHeader() error {
	if !f.Header {
		return nil
	}

	if f.FieldNames == nil {
		return fmt.Errorf("field names not set in *Files")
	}

	if f.file == nil {
		return fmt.Errorf("no open file in WriteHeader")
	}

	_, e := f.file.WriteString(f.header())

	return e
}

func (f *Files) header() string {
	return strings.Join(f.FieldNames, string(rune(f.Sep))) + string(rune(f.EOL))
}

// Save writes df to fileName. Rows are written in df order so the same dataframe always
// produces the same bytes.
func (f *Files) Save(fileName string, df DF) error {
	if e := f.Create(fileName); e != nil {
		return e
	}

	if e := f.write(f.file, df); e != nil {
		_ = f.Close()
		return e
	}

	return f.Close()
}

// Bytes returns the text Save would write for df.
func (f *Files) Bytes(df DF) ([]byte, error) {
	var buf bytes.Buffer
	if e := f.write(&buf, df); e != nil {
		return nil, e
	}

	return buf.Bytes(), nil
}

func (f *Files) write(w io.Writer, df DF) error {
	f.FieldNames = df.ColumnNames()
	if f.Header {
		if _, e := io.WriteString(w, f.header()); e != nil {
			return e
		}
	}

	for row, e := df.Iter(true); e == nil; row, e = df.Iter(false) {
		if _, ex := w.Write(f.line(row)); ex != nil {
			return ex
		}
	}

	return nil
}

// Load reads fileName, which must have a header row. The type of each column is the narrowest type
// that holds all of its non-missing entries. Empty fields and NAstring are missing.
func (f *Files) Load(fileName string) ([]*Vector, []string, []DataTypes, error) {
	if e := f.Open(fileName); e != nil {
		return nil, nil, nil, e
	}
	defer func() { _ = f.Close() }()

	return f.Read(f.file)
}

// Read is Load from an io.Reader.
func (f *Files) Read(rdr io.Reader) ([]*Vector, []string, []DataTypes, error) {
	r := csv.NewReader(rdr)
	r.Comma = rune(f.Sep)

	var (
		records [][]string
		e       error
	)
	if records, e = r.ReadAll(); e != nil {
		return nil, nil, nil, e
	}

	if len(records) == 0 {
		return nil, nil, nil, fmt.Errorf("no header in %s", f.fileName)
	}

	fieldNames := records[0]
	for ind := range fieldNames {
		fieldNames[ind] = strings.TrimSpace(fieldNames[ind])
	}

	f.FieldNames = fieldNames
	data := records[1:]

	var (
		vecs []*Vector
		dts  []DataTypes
	)
	for c := 0; c < len(fieldNames); c++ {
		dt := DTunknown
		for _, rec := range data {
			if missing(rec[c]) {
				continue
			}

			dt = widen(dt, BestType(rec[c]))
		}

		if dt == DTunknown {
			dt = DTfloat
		}

		v := MakeVector(dt, len(data))
		for r, rec := range data {
			if missing(rec[c]) {
				_ = v.SetNA(r)
				continue
			}

			if ex := v.SetAny(strings.TrimSpace(rec[c]), r); ex != nil {
				return nil, nil, nil, fmt.Errorf("column %s row %d: %w", fieldNames[c], r+1, ex)
			}
		}

		vecs = append(vecs, v)
		dts = append(dts, dt)
	}

	return vecs, fieldNames, dts, nil
}

func missing(x string) bool {
	x = strings.TrimSpace(x)
	return x == "" || x == NAstring
}

// widen returns the narrowest type that holds values of both dt1 and dt2.
func widen(dt1, dt2 DataTypes) DataTypes {
	switch {
	case dt1 == DTunknown:
		return dt2
	case dt1 == dt2:
		return dt1
	case dt1.IsNumeric() && dt2.IsNumeric():
		return DTfloat
	default:
		return DTstring
	}
}

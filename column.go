package df

import "fmt"

// Column interface defines the methods the columns
type Column interface {
	CC

	Copy() Column
	Data() *Vector
	Len() int
	String() string
}

// CC interface defines the methods of ColCore
type CC interface {
	Core() *ColCore
	DataType() DataTypes
	Name() string
	Parent() DF
	Rename(newName string) error
}

// *********** ColCore ***********

// ColCore implements the nucleus of the Column interface.
type ColCore struct {
	name string
	dt   DataTypes

	parent DF
}

func NewColCore(dt DataTypes, ops ...ColOpt) (*ColCore, error) {
	c := &ColCore{dt: dt}

	for _, op := range ops {
		if e := op(c); e != nil {
			return nil, e
		}
	}

	return c, nil
}

// *********** Setters ***********

type ColOpt func(c CC) error

func ColDataType(dt DataTypes) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColDataType")
		}

		c.Core().dt = dt

		return nil
	}
}

func ColName(name string) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColName")
		}

		if c.Name() != "" {
			return fmt.Errorf("column already named -- use Rename method")
		}

		if e := validName(name); e != nil {
			return e
		}

		c.Core().name = name

		return nil
	}
}

func ColParent(df DF) ColOpt {
	return func(c CC) error {
		if c == nil {
			return fmt.Errorf("nil column to ColParent")
		}

		// A column with this name already exists in df and is not the column we're assigning the parent to
		if df != nil && df.Column(c.Name()) != nil && df.Column(c.Name()).Core() != c.Core() {
			return fmt.Errorf("cant assign parent: name collision on %s", c.Name())
		}

		c.Core().parent = df

		return nil
	}
}

// *********** Methods ***********

func (c *ColCore) Copy() *ColCore {
	// don't copy parent
	return &ColCore{name: c.name, dt: c.dt}
}

// Core returns itself. We need a method to return itself since structs embedding ColCore use it.
func (c *ColCore) Core() *ColCore {
	return c
}

func (c *ColCore) DataType() DataTypes {
	return c.dt
}

func (c *ColCore) Name() string {
	return c.name
}

func (c *ColCore) Parent() DF {
	return c.parent
}

func (c *ColCore) Rename(newName string) error {
	if e := validName(newName); e != nil {
		return e
	}

	if c.Parent() != nil && c.Parent().Column(newName) != nil {
		return fmt.Errorf("column %s already exists, cannot Rename", newName)
	}

	c.name = newName

	return nil
}

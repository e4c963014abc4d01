package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ArgType identifies the value type carried by an Arg
type ArgType string

const (
	TypeInteger      ArgType = "integer"
	TypeIntegerArray ArgType = "integer[]"
	TypeFloat        ArgType = "float"
	TypeDouble       ArgType = "double"
	TypeString       ArgType = "string"
	TypePoints       ArgType = "point[]"
)

// Arg is a named, typed value. Arg lists are used both for procedural
// parameters and for attribute batches passed to SetAttribute.
//
// Value holds int, []int, float32, float64, string or, for points, a flat
// []float32 with three components per point.
type Arg struct {
	Name  string
	Type  ArgType
	Count int
	Value any
}

// IntegerArg creates a single integer argument
func IntegerArg(name string, v int) Arg {
	return Arg{Name: name, Type: TypeInteger, Count: 1, Value: v}
}

// IntegerArrayArg creates an integer array argument
func IntegerArrayArg(name string, v []int) Arg {
	values := make([]int, len(v))
	copy(values, v)
	return Arg{Name: name, Type: TypeIntegerArray, Count: len(values), Value: values}
}

// FloatArg creates a single-precision float argument
func FloatArg(name string, v float32) Arg {
	return Arg{Name: name, Type: TypeFloat, Count: 1, Value: v}
}

// DoubleArg creates a double-precision float argument
func DoubleArg(name string, v float64) Arg {
	return Arg{Name: name, Type: TypeDouble, Count: 1, Value: v}
}

// StringArg creates a string argument
func StringArg(name, v string) Arg {
	return Arg{Name: name, Type: TypeString, Count: 1, Value: v}
}

// PointsArg creates a point array argument, flattened to xyz triples
func PointsArg(name string, points []mgl32.Vec3) Arg {
	flat := make([]float32, 0, len(points)*3)
	for _, p := range points {
		flat = append(flat, p[0], p[1], p[2])
	}
	return Arg{Name: name, Type: TypePoints, Count: len(points), Value: flat}
}

// Points returns the points held by a point array argument
func (a Arg) Points() ([]mgl32.Vec3, error) {
	if a.Type != TypePoints {
		return nil, fmt.Errorf("argument %s is %s, not %s", a.Name, a.Type, TypePoints)
	}
	flat, ok := a.Value.([]float32)
	if !ok || len(flat) != a.Count*3 {
		return nil, fmt.Errorf("argument %s has malformed point data", a.Name)
	}

	points := make([]mgl32.Vec3, a.Count)
	for i := range points {
		points[i] = mgl32.Vec3{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return points, nil
}

// ArgList is an unordered bag of arguments
type ArgList []Arg

// Find returns the first argument with the given name and type
func (l ArgList) Find(name string, typ ArgType) (Arg, bool) {
	for _, a := range l {
		if a.Name == name && a.Type == typ {
			return a, true
		}
	}
	return Arg{}, false
}

// FindString returns the first string argument with the given name
func (l ArgList) FindString(name string) (string, bool) {
	a, ok := l.Find(name, TypeString)
	if !ok {
		return "", false
	}
	v, ok := a.Value.(string)
	return v, ok
}

// FindInteger returns the first integer argument with the given name
func (l ArgList) FindInteger(name string) (int, bool) {
	a, ok := l.Find(name, TypeInteger)
	if !ok {
		return 0, false
	}
	v, ok := a.Value.(int)
	return v, ok
}

// FindFloat returns the first float argument with the given name
func (l ArgList) FindFloat(name string) (float32, bool) {
	a, ok := l.Find(name, TypeFloat)
	if !ok {
		return 0, false
	}
	v, ok := a.Value.(float32)
	return v, ok
}

// FindDouble returns the first double argument with the given name
func (l ArgList) FindDouble(name string) (float64, bool) {
	a, ok := l.Find(name, TypeDouble)
	if !ok {
		return 0, false
	}
	v, ok := a.Value.(float64)
	return v, ok
}

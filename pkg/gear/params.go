// Package gear implements a procedural that generates a flat gear mesh.
package gear

import (
	"errors"
	"math"

	"github.com/harun/gearproc/pkg/scene"
)

// Parameter names recognised by the procedural
const (
	ParamParentNode  = "parentnode"
	ParamNode        = "node"
	ParamTeeth       = "nb_teeth"
	ParamInnerRadius = "inner_radius"
	ParamOuterRadius = "outer_radius"
	ParamSlope       = "teeth_slope"
)

const (
	DefaultNode  = "gear"
	DefaultSlope = float32(0.75)
	MinTeeth     = 6
)

var (
	ErrInvalidTeeth       = errors.New("gear : invalid number of teeth")
	ErrInvalidInnerRadius = errors.New("gear : invalid inner radius")
	ErrInvalidOuterRadius = errors.New("gear : invalid outer radius")
	ErrInvalidSlope       = errors.New("gear : invalid teeth slope")
)

// Parameters are the validated inputs of one gear evaluation
type Parameters struct {
	ParentNode  string
	Node        string
	Teeth       int
	InnerRadius float32
	OuterRadius float32
	Slope       float32
}

// ParseParameters extracts and validates gear parameters from args.
// Checks run in a fixed order and stop at the first failure.
func ParseParameters(args scene.ArgList) (Parameters, error) {
	p := Parameters{
		ParentNode: scene.Root,
		Node:       DefaultNode,
		Slope:      DefaultSlope,
	}

	// Absent when evaluated through a procedural node rather than an
	// explicit evaluate call; the procedural then owns its own context.
	if v, ok := args.FindString(ParamParentNode); ok {
		p.ParentNode = v
	}
	if v, ok := args.FindString(ParamNode); ok {
		p.Node = v
	}

	teeth, ok := args.FindInteger(ParamTeeth)
	if !ok || teeth < MinTeeth {
		return Parameters{}, ErrInvalidTeeth
	}
	p.Teeth = teeth

	inner, ok := args.FindFloat(ParamInnerRadius)
	if !ok || !(inner > 0) || isInf(inner) {
		return Parameters{}, ErrInvalidInnerRadius
	}
	p.InnerRadius = inner

	outer, ok := args.FindFloat(ParamOuterRadius)
	if !ok || !(outer > inner) || isInf(outer) {
		return Parameters{}, ErrInvalidOuterRadius
	}
	p.OuterRadius = outer

	if v, ok := args.FindFloat(ParamSlope); ok {
		p.Slope = v
	}
	if !(p.Slope > 0 && p.Slope <= 1) {
		return Parameters{}, ErrInvalidSlope
	}

	return p, nil
}

func isInf(v float32) bool {
	return math.IsInf(float64(v), 0)
}

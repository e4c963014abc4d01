package procedural

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/harun/gearproc/pkg/scene"
)

// ParseArgs converts name=value pairs into typed arguments using the
// parameter declarations of manifest. Array values are comma separated;
// points are flat x,y,z triples. Order is preserved.
func ParseArgs(manifest Manifest, pairs []string) (scene.ArgList, error) {
	args := make(scene.ArgList, 0, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid argument %q (expected name=value)", pair)
		}

		decl, ok := manifest.Parameter(name)
		if !ok {
			return nil, fmt.Errorf("procedural %s has no parameter %s", manifest.ID, name)
		}

		arg, err := parseArg(decl, value)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

func parseArg(decl ParameterDecl, value string) (scene.Arg, error) {
	switch decl.Type {
	case scene.TypeString:
		return scene.StringArg(decl.Name, value), nil

	case scene.TypeInteger:
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return scene.Arg{}, fmt.Errorf("invalid integer %q", value)
		}
		return scene.IntegerArg(decl.Name, v), nil

	case scene.TypeFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
		if err != nil {
			return scene.Arg{}, fmt.Errorf("invalid float %q", value)
		}
		return scene.FloatArg(decl.Name, float32(v)), nil

	case scene.TypeDouble:
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return scene.Arg{}, fmt.Errorf("invalid double %q", value)
		}
		return scene.DoubleArg(decl.Name, v), nil

	case scene.TypeIntegerArray:
		fields := splitList(value)
		values := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return scene.Arg{}, fmt.Errorf("invalid integer %q at index %d", f, i)
			}
			values[i] = v
		}
		return scene.IntegerArrayArg(decl.Name, values), nil

	case scene.TypePoints:
		fields := splitList(value)
		if len(fields)%3 != 0 {
			return scene.Arg{}, fmt.Errorf("point data must be x,y,z triples, got %d values", len(fields))
		}
		points := make([]mgl32.Vec3, len(fields)/3)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return scene.Arg{}, fmt.Errorf("invalid coordinate %q at index %d", f, i)
			}
			points[i/3][i%3] = float32(v)
		}
		return scene.PointsArg(decl.Name, points), nil

	default:
		return scene.Arg{}, fmt.Errorf("unsupported parameter type %s", decl.Type)
	}
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	fields := strings.Split(value, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

package engine

import (
	"context"
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/trimesh/pkg/geom"
	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms trimesh script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: make-part -> make_part
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec.
type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMesh wraps a mesh so it can be passed between builtins. Builtins
// never modify the mesh they receive.
type sexpMesh struct {
	m *mesh.Mesh
}

func (s *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %q %d faces)", s.m.Name, s.m.Len())
}
func (s *sexpMesh) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Keyword at end with no value: a flag.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false and treats a bare flag keyword as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a geom.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec3OrScalar accepts a vec3 or a single number used on every axis.
func toVec3OrScalar(s zygo.Sexp) (geom.Vec, error) {
	if f, err := toFloat64(s); err == nil {
		return geom.Vec{X: f, Y: f, Z: f}, nil
	}
	return toVec3(s)
}

// vec3From reads exactly three numbers.
func vec3From(name string, args []zygo.Sexp) (geom.Vec, error) {
	if len(args) != 3 {
		return geom.Vec{}, fmt.Errorf("%s requires exactly 3 arguments, got %d", name, len(args))
	}
	var c [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return geom.Vec{}, fmt.Errorf("%s: %s: %w", name, axis, err)
		}
		c[i] = f
	}
	return geom.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// toMesh extracts the mesh from a sexpMesh.
func toMesh(s zygo.Sexp) (*mesh.Mesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m.m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toMeshes accepts meshes as separate arguments or as one list.
func toMeshes(args []zygo.Sexp) ([]*mesh.Mesh, error) {
	if len(args) == 1 {
		if items, err := sexpListToSlice(args[0]); err == nil {
			args = items
		}
	}
	out := make([]*mesh.Mesh, 0, len(args))
	for i, a := range args {
		m, err := toMesh(a)
		if err != nil {
			return nil, fmt.Errorf("operand %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// planeArgs reads the :at and :normal keywords, defaulting to the XY plane
// through the origin.
func planeArgs(pa kwArgs) (geom.Plane, error) {
	at, normal := geom.Vec{}, geom.Vec{Z: 1}
	if v, ok := pa.kw["at"]; ok {
		p, err := toVec3(v)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("at: %w", err)
		}
		at = p
	}
	if v, ok := pa.kw["normal"]; ok {
		n, err := toVec3(v)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("normal: %w", err)
		}
		if geom.IsZero(n.Length()) {
			return geom.Plane{}, fmt.Errorf("normal: zero vector")
		}
		normal = n
	}
	return geom.NewPlane(at, normal), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtins is the state shared by the functions of one evaluation.
type builtins struct {
	ctx context.Context
	k   *kernel.Kernel
	out *Result
}

func (b *builtins) live(name string) error {
	if err := b.ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// fold applies op left to right over two or more meshes.
func (b *builtins) fold(name string, args []zygo.Sexp,
	op func(context.Context, *mesh.Mesh, *mesh.Mesh) (*mesh.Mesh, error)) (zygo.Sexp, error) {
	ms, err := toMeshes(args)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	if len(ms) < 2 {
		return zygo.SexpNull, fmt.Errorf("%s requires at least 2 meshes, got %d", name, len(ms))
	}
	acc := ms[0]
	for _, m := range ms[1:] {
		if err := b.live(name); err != nil {
			return zygo.SexpNull, err
		}
		acc, err = op(b.ctx, acc, m)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
	}
	return &sexpMesh{m: acc}, nil
}

// meshAndVec parses the (op mesh vec3) shape shared by the transforms.
func meshAndVec(name string, args []zygo.Sexp, scalar bool) (*mesh.Mesh, geom.Vec, error) {
	if len(args) != 2 {
		return nil, geom.Vec{}, fmt.Errorf("%s requires a mesh and a vec3, got %d arguments", name, len(args))
	}
	m, err := toMesh(args[0])
	if err != nil {
		return nil, geom.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	var v geom.Vec
	if scalar {
		v, err = toVec3OrScalar(args[1])
	} else {
		v, err = toVec3(args[1])
	}
	if err != nil {
		return nil, geom.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return m, v, nil
}

// singleMesh parses the (op mesh) shape.
func singleMesh(name string, args []zygo.Sexp) (*mesh.Mesh, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s requires exactly 1 mesh, got %d arguments", name, len(args))
	}
	m, err := toMesh(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// registerBuiltins installs the geometry builtins into a zygomys
// environment. Source code must be preprocessed with preprocessSource()
// before evaluation so that :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, b *builtins) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vec3From("vec3", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v}, nil
	})

	// (box 10 20 30) or (box (vec3 10 20 30))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var size geom.Vec
		switch len(args) {
		case 1:
			v, err := toVec3OrScalar(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			size = v
		case 3:
			v, err := vec3From("box", args)
			if err != nil {
				return zygo.SexpNull, err
			}
			size = v
		default:
			return zygo.SexpNull, fmt.Errorf("box requires a size vec3 or 3 numbers, got %d arguments", len(args))
		}
		m, err := b.k.Box(size.X, size.Y, size.Z)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: m}, nil
	})

	// (sphere :radius 5)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r := 1.0
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			r = f
		} else if len(pa.positional) == 1 {
			f, err := toFloat64(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			r = f
		}
		m, err := b.k.Sphere(r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: m}, nil
	})

	// (cylinder :height 10 :radius 2)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, r := 1.0, 1.0
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
			}
			h = f
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
			}
			r = f
		}
		m, err := b.k.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: m}, nil
	})

	// (translate m (vec3 0 0 19))
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, v, err := meshAndVec("translate", args, false)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: b.k.Translate(m, v.X, v.Y, v.Z)}, nil
	})

	// (rotate m (vec3 0 0 90)), Euler angles in degrees
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, v, err := meshAndVec("rotate", args, false)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: b.k.Rotate(m, v.X, v.Y, v.Z)}, nil
	})

	// (scale m 2) or (scale m (vec3 1 1 -1))
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, v, err := meshAndVec("scale", args, true)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := b.k.Scale(m, v.X, v.Y, v.Z)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMesh{m: s}, nil
	})

	// (difference a b c ...) subtracts b, c, ... from a
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.fold("difference", args, b.k.Difference)
	})

	// (union a b ...)
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.fold("union", args, b.k.Union)
	})

	// (intersection a b ...)
	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.fold("intersection", args, b.k.Intersection)
	})

	// (cut m :at (vec3 0 0 5) :normal (vec3 0 0 1) :cap true)
	env.AddFunction("cut", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("cut requires a mesh as first argument")
		}
		m, err := toMesh(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		plane, err := planeArgs(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		capped := true
		if v, ok := pa.kw["cap"]; ok {
			if capped, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("cut: cap: %w", err)
			}
		}
		if err := b.live("cut"); err != nil {
			return zygo.SexpNull, err
		}
		out, err := b.k.Cut(b.ctx, m, plane, capped)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cut: %w", err)
		}
		return &sexpMesh{m: out}, nil
	})

	// (simplify m)
	env.AddFunction("simplify", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := singleMesh("simplify", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		s, _ := b.k.Simplify(m)
		return &sexpMesh{m: s}, nil
	})

	// (contains m (vec3 1 1 1))
	env.AddFunction("contains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, p, err := meshAndVec("contains", args, false)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpBool{Val: m.Flattened().Contains(p)}, nil
	})

	// (check m) returns the topology summary as a string
	env.AddFunction("check", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := singleMesh("check", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: m.Flattened().CheckCorrectness().String()}, nil
	})

	// (volume m)
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := singleMesh("volume", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: m.Flattened().Volume()}, nil
	})

	// (area m)
	env.AddFunction("area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := singleMesh("area", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpFloat{Val: m.Flattened().Area()}, nil
	})

	// (emit m) or (emit m "lid")
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("emit requires a mesh and an optional name, got %d arguments", len(args))
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: %w", err)
		}
		out := m.Flattened()
		if len(args) == 2 {
			if out.Name, err = toString(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("emit: name: %w", err)
			}
		}
		b.out.Meshes = append(b.out.Meshes, out)
		return args[0], nil
	})
}

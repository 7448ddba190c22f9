package pattern

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/roach88/vector/internal/curry"
)

// Kind identifies the pattern variant.
type Kind int

const (
	KindWildcard Kind = iota
	KindLiteral
	KindType
	KindNested
	KindPredicate
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWildcard:
		return "wildcard"
	case KindLiteral:
		return "literal"
	case KindType:
		return "type"
	case KindNested:
		return "nested"
	case KindPredicate:
		return "predicate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Boxed is implemented by optional values that nested patterns unwrap.
// maybe.Maybe implements it.
type Boxed interface {
	Unbox() (any, bool)
}

// Pattern is a compiled argument test.
//
// Patterns are immutable and safe to share between goroutines as long as
// any predicate they wrap is.
type Pattern struct {
	kind    Kind
	literal any
	tag     Tag
	inner   *Pattern
	pred    func(any) (bool, error)
	label   string
}

// Any is the wildcard sentinel.
var Any = Pattern{kind: KindWildcard}

// Literal builds a literal pattern for v without shape dispatch.
// Use it to match a value that Compile would otherwise treat specially,
// such as a func value or the wildcard itself.
func Literal(v any) Pattern {
	return Pattern{kind: KindLiteral, literal: v}
}

// Just builds a nested pattern: the argument must be a Boxed holding a
// value that matches inner. The bound value is the unwrapped content.
func Just(inner any) Pattern {
	p := Compile(inner)
	return Pattern{kind: KindNested, inner: &p}
}

// Predicate builds a predicate pattern from a plain test.
func Predicate(label string, fn func(any) bool) Pattern {
	return Pattern{
		kind:  KindPredicate,
		label: label,
		pred:  func(v any) (bool, error) { return fn(v), nil },
	}
}

// Compile turns a raw pattern into a Pattern.
//
// Compile never fails: every value is a valid literal. An already
// compiled Pattern is returned unchanged.
func Compile(raw any) Pattern {
	switch r := raw.(type) {
	case Pattern:
		return r
	case *Pattern:
		if r != nil {
			return *r
		}
		return Literal(nil)
	case nil:
		return Literal(nil)
	case func(any) bool:
		return Predicate(fmt.Sprintf("%T", r), r)
	}

	if curry.IsCallable(raw) {
		return callablePredicate(raw)
	}
	return Literal(raw)
}

// CompileAll compiles each raw pattern in order.
func CompileAll(raws ...any) []Pattern {
	out := make([]Pattern, len(raws))
	for i, r := range raws {
		out[i] = Compile(r)
	}
	return out
}

func callablePredicate(fn any) Pattern {
	label := fmt.Sprintf("%T", fn)
	if c, ok := fn.(*curry.Curried); ok && c.Name() != "" {
		label = c.Name()
	}
	return Pattern{
		kind:  KindPredicate,
		label: label,
		pred: func(v any) (bool, error) {
			out, err := curry.Invoke(fn, v)
			if err != nil {
				// A typed guard that cannot take the argument has not matched.
				if curry.IsArgumentError(err) {
					return false, nil
				}
				return false, err
			}
			b, ok := out.(bool)
			if !ok {
				return false, &PredicateResultError{Predicate: label, Result: fmt.Sprintf("%T", out)}
			}
			return b, nil
		},
	}
}

// Kind returns the pattern variant.
func (p Pattern) Kind() Kind {
	return p.kind
}

// Value returns the literal of a literal pattern.
func (p Pattern) Value() any {
	return p.literal
}

// Tag returns the type tag of a type pattern.
func (p Pattern) Tag() Tag {
	return p.tag
}

// Inner returns the pattern applied to the content of a nested pattern.
func (p Pattern) Inner() (Pattern, bool) {
	if p.inner == nil {
		return Pattern{}, false
	}
	return *p.inner, true
}

// Match tests arg.
//
// Only predicates can fail; their errors propagate unchanged.
func (p Pattern) Match(arg any) (bool, error) {
	switch p.kind {
	case KindWildcard:
		return true, nil
	case KindLiteral:
		return StrictEqual(p.literal, arg), nil
	case KindType:
		return p.tag.Has(arg), nil
	case KindNested:
		box, ok := arg.(Boxed)
		if !ok {
			return false, nil
		}
		v, ok := box.Unbox()
		if !ok {
			return false, nil
		}
		return p.inner.Match(v)
	case KindPredicate:
		return p.pred(arg)
	default:
		return false, fmt.Errorf("unknown pattern kind %d", int(p.kind))
	}
}

// Bind returns the value handed to a handler for a matched argument.
// Nested patterns bind the unwrapped content, recursively; every other
// kind binds the argument itself.
func (p Pattern) Bind(arg any) any {
	if p.kind != KindNested {
		return arg
	}
	box, ok := arg.(Boxed)
	if !ok {
		return arg
	}
	v, ok := box.Unbox()
	if !ok {
		return arg
	}
	return p.inner.Bind(v)
}

// String renders the pattern for diagnostics.
func (p Pattern) String() string {
	switch p.kind {
	case KindWildcard:
		return "_"
	case KindLiteral:
		if s, ok := p.literal.(string); ok {
			return strconv.Quote(s)
		}
		if p.literal == nil {
			return "nil"
		}
		return fmt.Sprintf("%v", p.literal)
	case KindType:
		return "type:" + string(p.tag)
	case KindNested:
		return "just(" + p.inner.String() + ")"
	case KindPredicate:
		return "pred:" + p.label
	default:
		return p.kind.String()
	}
}

// StrictEqual compares a and b without coercion.
//
// Values must belong to the same class (integer, float, string, bool,
// sequence, mapping, box) and hold the same value. Sequences and mappings
// compare element-wise; other values fall back to reflect.DeepEqual with
// identical dynamic types.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ba, ok := a.(Boxed); ok {
		bb, ok := b.(Boxed)
		if !ok {
			return false
		}
		va, okA := ba.Unbox()
		vb, okB := bb.Unbox()
		if okA != okB {
			return false
		}
		return !okA || StrictEqual(va, vb)
	}
	return strictEqual(reflect.ValueOf(a), reflect.ValueOf(b))
}

func strictEqual(a, b reflect.Value) bool {
	ka, kb := class(a.Kind()), class(b.Kind())
	if ka != kb {
		return false
	}

	switch ka {
	case classInt:
		return intEqual(a, b)
	case classFloat:
		return a.Float() == b.Float()
	case classString:
		return a.String() == b.String()
	case classBool:
		return a.Bool() == b.Bool()
	case classSeq:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !StrictEqual(a.Index(i).Interface(), b.Index(i).Interface()) {
				return false
			}
		}
		return true
	case classMap:
		if a.Len() != b.Len() || a.Type().Key() != b.Type().Key() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			other := b.MapIndex(iter.Key())
			if !other.IsValid() || !StrictEqual(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	default:
		return a.Type() == b.Type() && reflect.DeepEqual(a.Interface(), b.Interface())
	}
}

type valueClass int

const (
	classOther valueClass = iota
	classInt
	classFloat
	classString
	classBool
	classSeq
	classMap
)

func class(k reflect.Kind) valueClass {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return classInt
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	case reflect.Bool:
		return classBool
	case reflect.Slice, reflect.Array:
		return classSeq
	case reflect.Map:
		return classMap
	default:
		return classOther
	}
}

// intEqual compares integers of any width and signedness.
func intEqual(a, b reflect.Value) bool {
	aNeg := a.CanInt() && a.Int() < 0
	bNeg := b.CanInt() && b.Int() < 0
	if aNeg || bNeg {
		return aNeg && bNeg && a.Int() == b.Int()
	}
	return magnitude(a) == magnitude(b)
}

func magnitude(v reflect.Value) uint64 {
	if v.CanInt() {
		return uint64(v.Int())
	}
	return v.Uint()
}

package curry

import (
	"fmt"
	"math"
	"reflect"
)

// Callable is the uniform calling convention of the runtime.
//
// Host primitives that cannot be reflected implement Callable directly.
// Without an Arity method they are non-introspectable and must be wrapped
// with an explicit arity.
type Callable interface {
	Call(args ...any) (any, error)
}

// Func adapts an ordinary function to Callable.
// Func is variadic, so its inspected arity is 0.
type Func func(args ...any) (any, error)

// Call implements Callable.
func (f Func) Call(args ...any) (any, error) {
	return f(args...)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// reflectFunc calls an arbitrary Go func value.
// Parameter types are captured once at wrap time.
type reflectFunc struct {
	fn       reflect.Value
	params   []reflect.Type
	variadic reflect.Type // element type of the variadic parameter, or nil
	numOut   int
	lastErr  bool
}

// adapt returns a Callable for fn.
// Callables are used verbatim; func values are adapted by reflection.
func adapt(fn any) (Callable, bool) {
	if c, ok := fn.(Callable); ok {
		return c, true
	}

	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, false
	}

	t := rv.Type()
	rf := &reflectFunc{fn: rv, numOut: t.NumOut()}

	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
		rf.variadic = t.In(fixed).Elem()
	}
	rf.params = make([]reflect.Type, fixed)
	for i := 0; i < fixed; i++ {
		rf.params[i] = t.In(i)
	}
	if rf.numOut > 0 && t.Out(rf.numOut-1) == errorType {
		rf.lastErr = true
	}

	return rf, true
}

// Call converts args to the declared parameter types, invokes the func
// and unpacks its results.
//
// A non-variadic func receives exactly its declared parameters; surplus
// arguments are ignored. Missing arguments are an ArgumentError.
func (r *reflectFunc) Call(args ...any) (any, error) {
	if len(args) < len(r.params) {
		return nil, &ArgumentError{
			Position: len(args),
			Reason:   fmt.Sprintf("expected %d arguments, got %d", len(r.params), len(args)),
		}
	}

	in := make([]reflect.Value, 0, len(args))
	for i, p := range r.params {
		v, err := convertArg(args[i], p, i)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	if r.variadic != nil {
		for i := len(r.params); i < len(args); i++ {
			v, err := convertArg(args[i], r.variadic, i)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
		}
	}

	return r.unpack(r.fn.Call(in))
}

// unpack maps Go results onto (value, error).
//
//	()         -> nil, nil
//	(error)    -> nil, err
//	(T)        -> T, nil
//	(T, error) -> T, err
//
// Other shapes are returned as a []any tuple, with a trailing error split off.
func (r *reflectFunc) unpack(out []reflect.Value) (any, error) {
	var err error
	if r.lastErr {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		tuple := make([]any, len(out))
		for i, v := range out {
			tuple[i] = v.Interface()
		}
		return tuple, err
	}
}

// convertArg produces a reflect.Value assignable to p.
//
// Values assignable to p are used as-is. Numeric values are converted only
// when the conversion is lossless, so a decoded int64 can feed an int
// parameter but 1.5 cannot feed one.
func convertArg(arg any, p reflect.Type, pos int) (reflect.Value, error) {
	if arg == nil {
		switch p.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(p), nil
		}
		return reflect.Value{}, &ArgumentError{
			Position: pos,
			Expected: p.String(),
			Actual:   "nil",
		}
	}

	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(p) {
		return v, nil
	}

	if isNumeric(v.Kind()) && isNumeric(p.Kind()) {
		if converted, ok := convertNumeric(v, p); ok {
			return converted, nil
		}
	}

	return reflect.Value{}, &ArgumentError{
		Position: pos,
		Expected: p.String(),
		Actual:   v.Type().String(),
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertNumeric converts v to p and back, accepting the result only if
// the round trip preserves the value.
func convertNumeric(v reflect.Value, p reflect.Type) (reflect.Value, bool) {
	if !v.Type().ConvertibleTo(p) {
		return reflect.Value{}, false
	}
	toFloat := p.Kind() == reflect.Float32 || p.Kind() == reflect.Float64
	if v.CanFloat() {
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			if !toFloat {
				return reflect.Value{}, false
			}
			return v.Convert(p), true
		}
		if !toFloat && f != math.Trunc(f) {
			return reflect.Value{}, false
		}
	}
	toUnsigned := p.Kind() >= reflect.Uint && p.Kind() <= reflect.Uint64
	if toUnsigned && ((v.CanInt() && v.Int() < 0) || (v.CanFloat() && v.Float() < 0)) {
		return reflect.Value{}, false
	}

	converted := v.Convert(p)
	// A round trip through a signed type of the same width is lossless in
	// bits but not in sign.
	if v.CanUint() && converted.CanInt() && converted.Int() < 0 {
		return reflect.Value{}, false
	}
	back := converted.Convert(v.Type())
	if !back.Equal(v) {
		return reflect.Value{}, false
	}
	return converted, true
}

package pattern

import (
	"reflect"

	"github.com/roach88/vector/internal/curry"
)

// Tag names a runtime kind checked by a type pattern.
type Tag string

const (
	TagString  Tag = "string"
	TagInt     Tag = "int"
	TagFloat   Tag = "float"
	TagNumber  Tag = "number"
	TagBool    Tag = "bool"
	TagArray   Tag = "array"
	TagObject  Tag = "object"
	TagFunc    Tag = "func"
	TagNil     Tag = "nil"
	TagJust    Tag = "just"
	TagNothing Tag = "nothing"
)

// Tags lists every known tag in a stable order.
var Tags = []Tag{
	TagString, TagInt, TagFloat, TagNumber, TagBool,
	TagArray, TagObject, TagFunc, TagNil, TagJust, TagNothing,
}

// ParseTag validates a tag name.
func ParseTag(name string) (Tag, error) {
	for _, t := range Tags {
		if string(t) == name {
			return t, nil
		}
	}
	return "", &UnknownTagError{Tag: name}
}

// TypeOf builds a type pattern, failing on unknown tag names.
func TypeOf(name string) (Pattern, error) {
	t, err := ParseTag(name)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{kind: KindType, tag: t}, nil
}

// Type is like TypeOf but panics on an unknown tag.
// Intended for clause tables written in Go source.
func Type(name string) Pattern {
	p, err := TypeOf(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Has reports whether v belongs to the tag's kind.
func (t Tag) Has(v any) bool {
	if t == TagNil {
		return v == nil
	}
	if v == nil {
		return false
	}

	if box, ok := v.(Boxed); ok {
		_, full := box.Unbox()
		switch t {
		case TagJust:
			return full
		case TagNothing:
			return !full
		default:
			return false
		}
	}

	k := reflect.ValueOf(v).Kind()
	switch t {
	case TagString:
		return k == reflect.String
	case TagInt:
		return class(k) == classInt
	case TagFloat:
		return class(k) == classFloat
	case TagNumber:
		c := class(k)
		return c == classInt || c == classFloat
	case TagBool:
		return k == reflect.Bool
	case TagArray:
		return k == reflect.Slice || k == reflect.Array
	case TagObject:
		return k == reflect.Map || k == reflect.Struct
	case TagFunc:
		return curry.IsCallable(v)
	default:
		return false
	}
}

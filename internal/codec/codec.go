package codec

import (
	"math/big"

	"github.com/pkg/errors"

	"arc56/internal/arc56"
)

var (
	// ErrMissingField is returned when a struct value lacks a declared field
	ErrMissingField = errors.New("missing struct field")
	// ErrShapeMismatch is returned when a value does not have the shape of its type
	ErrShapeMismatch = errors.New("value does not match type shape")
	// ErrRawValue is returned when a raw bytes value is neither bytes nor a string
	ErrRawValue = errors.New("raw value must be bytes or a string")
)

// Codec converts between named-field values and ABI bytes
type Codec struct {
	resolver *Resolver
}

// New creates a codec over the resolver's struct table
func New(resolver *Resolver) *Codec {
	return &Codec{resolver: resolver}
}

// Resolver returns the type resolver backing the codec
func (c *Codec) Resolver() *Resolver {
	return c.resolver
}

// Encode serializes value as typeRef.
// Raw types are copied as-is, structs are flattened by declared field order.
func (c *Codec) Encode(typeRef string, value any) ([]byte, error) {
	if arc56.IsRawType(typeRef) {
		return rawBytes(value)
	}

	t, err := c.resolver.ABIType(typeRef)
	if err != nil {
		return nil, err
	}

	if s, ok := c.resolver.Struct(typeRef); ok {
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "struct %s expects named fields, got %T", s.Name, value)
		}
		value, err = toPositional(s.Name, s.Fields, fields)
		if err != nil {
			return nil, err
		}
	}

	encoded, err := t.Encode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", typeRef)
	}
	return encoded, nil
}

// Decode parses raw as typeRef.
// Raw types decode to a string, structs to a map keyed by field name.
func (c *Codec) Decode(typeRef string, raw []byte) (any, error) {
	if arc56.IsRawType(typeRef) {
		return string(raw), nil
	}

	t, err := c.resolver.ABIType(typeRef)
	if err != nil {
		return nil, err
	}
	decoded, err := t.Decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", typeRef)
	}

	shape, err := c.resolver.shape(typeRef)
	if err != nil {
		return nil, err
	}
	decoded = normalizeDecoded(shape, decoded)

	if s, ok := c.resolver.Struct(typeRef); ok {
		values, ok := decoded.([]any)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "struct %s decoded to %T", s.Name, decoded)
		}
		return fromPositional(s.Name, s.Fields, values)
	}
	return decoded, nil
}

func rawBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.Wrapf(ErrRawValue, "got %T", value)
}

func toPositional(path string, fields []arc56.Field, values map[string]any) ([]any, error) {
	out := make([]any, len(fields))
	for i, f := range fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingField, "%s.%s", path, f.Name)
		}
		if !f.IsGroup() {
			out[i] = v
			continue
		}
		nested, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s.%s expects named fields, got %T", path, f.Name, v)
		}
		group, err := toPositional(path+"."+f.Name, f.Fields, nested)
		if err != nil {
			return nil, err
		}
		out[i] = group
	}
	return out, nil
}

func fromPositional(path string, fields []arc56.Field, values []any) (map[string]any, error) {
	if len(values) != len(fields) {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s has %d fields, decoded %d values", path, len(fields), len(values))
	}
	out := make(map[string]any, len(fields))
	for i, f := range fields {
		if !f.IsGroup() {
			out[f.Name] = values[i]
			continue
		}
		nested, ok := values[i].([]any)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s.%s decoded to %T", path, f.Name, values[i])
		}
		group, err := fromPositional(path+"."+f.Name, f.Fields, nested)
		if err != nil {
			return nil, err
		}
		out[f.Name] = group
	}
	return out, nil
}

// normalizeDecoded widens small unsigned integers to uint64 and collapses byte arrays to []byte
func normalizeDecoded(n *typeNode, v any) any {
	switch n.kind {
	case kindUint, kindUfixed:
		if n.bits <= 64 {
			if u, ok := toUint64(v); ok {
				return u
			}
		}
	case kindArray:
		items, ok := v.([]any)
		if !ok {
			return v
		}
		if n.elem.kind == kindByte {
			out := make([]byte, len(items))
			for i, item := range items {
				b, ok := item.(byte)
				if !ok {
					return v
				}
				out[i] = b
			}
			return out
		}
		for i, item := range items {
			items[i] = normalizeDecoded(n.elem, item)
		}
		return items
	case kindTuple:
		items, ok := v.([]any)
		if !ok || len(items) != len(n.fields) {
			return v
		}
		for i, item := range items {
			items[i] = normalizeDecoded(n.fields[i], item)
		}
		return items
	}
	return v
}

func toUint64(v any) (uint64, bool) {
	switch u := v.(type) {
	case uint8:
		return uint64(u), true
	case uint16:
		return uint64(u), true
	case uint32:
		return uint64(u), true
	case uint64:
		return u, true
	case *big.Int:
		if u.IsUint64() {
			return u.Uint64(), true
		}
	}
	return 0, false
}

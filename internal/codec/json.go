package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/algorand/go-algorand-sdk/v2/types"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
)

// FromJSON converts a JSON document into a value Encode accepts for typeRef.
// Integers may be given as JSON numbers or decimal strings, byte arrays as
// number arrays or base64 strings, addresses in their checksummed form.
func (c *Codec) FromJSON(typeRef string, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrapf(err, "failed to parse JSON value for %s", typeRef)
	}

	if arc56.IsRawType(typeRef) {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Wrapf(ErrRawValue, "got JSON %T", v)
		}
		return s, nil
	}

	if s, ok := c.resolver.Struct(typeRef); ok {
		return c.structFromJSON(s.Name, s.Fields, v)
	}

	shape, err := c.resolver.shape(typeRef)
	if err != nil {
		return nil, err
	}
	return fromJSONValue(typeRef, shape, v)
}

func (c *Codec) structFromJSON(path string, fields []arc56.Field, v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s expects an object, got %T", path, v)
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		fv, ok := obj[f.Name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingField, "%s.%s", path, f.Name)
		}
		fieldPath := path + "." + f.Name
		if f.IsGroup() {
			nested, err := c.structFromJSON(fieldPath, f.Fields, fv)
			if err != nil {
				return nil, err
			}
			out[f.Name] = nested
			continue
		}
		shape, err := parseType(f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", fieldPath)
		}
		if out[f.Name], err = fromJSONValue(fieldPath, shape, fv); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fromJSONValue(path string, n *typeNode, v any) (any, error) {
	switch n.kind {
	case kindUint, kindUfixed:
		return jsonInteger(path, n.bits, v)
	case kindByte:
		u, err := jsonInteger(path, 8, v)
		if err != nil {
			return nil, err
		}
		return uint8(u.(uint64)), nil
	case kindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects a boolean, got %T", path, v)
		}
		return b, nil
	case kindString:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects a string, got %T", path, v)
		}
		return s, nil
	case kindAddress:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects an address, got %T", path, v)
		}
		addr, err := types.DecodeAddress(s)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		return addr[:], nil
	case kindArray:
		if s, ok := v.(string); ok && n.elem.kind == kindByte {
			raw, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", path)
			}
			return raw, nil
		}
		items, ok := v.([]any)
		if !ok {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects an array, got %T", path, v)
		}
		if n.length >= 0 && len(items) != n.length {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects %d elements, got %d", path, n.length, len(items))
		}
		out := make([]any, len(items))
		for i, item := range items {
			var err error
			if out[i], err = fromJSONValue(path+"["+strconv.Itoa(i)+"]", n.elem, item); err != nil {
				return nil, err
			}
		}
		return out, nil
	case kindTuple:
		items, ok := v.([]any)
		if !ok || len(items) != len(n.fields) {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s expects a %d-element array", path, len(n.fields))
		}
		out := make([]any, len(items))
		for i, item := range items {
			var err error
			if out[i], err = fromJSONValue(path+"["+strconv.Itoa(i)+"]", n.fields[i], item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return v, nil
}

func jsonInteger(path string, bits int, v any) (any, error) {
	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = t
	default:
		return nil, errors.Wrapf(ErrShapeMismatch, "%s expects an integer, got %T", path, v)
	}

	if bits <= 64 {
		u, err := strconv.ParseUint(text, 10, bits)
		if err != nil {
			return nil, errors.Wrapf(ErrShapeMismatch, "%s: %v", path, err)
		}
		return u, nil
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok || b.Sign() < 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%s: %q is not an unsigned integer", path, text)
	}
	return b, nil
}

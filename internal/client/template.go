package client

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// templatePattern matches a push of a TMPL_ placeholder: opcode, separator, name
var templatePattern = regexp.MustCompile(`\b(pushint|int|pushbytes|byte)([ \t]+)TMPL_([A-Za-z0-9_]+)\b`)

func isNumericTemplate(typ string) bool {
	return typ == "uint64" || typ == "AVMUint64"
}

// substituteTemplates replaces each declared placeholder with a literal of its declared kind.
// The supplied values must match the declared variables one for one.
func substituteTemplates(program []byte, declared map[string]string, values map[string]any) ([]byte, error) {
	if len(values) != len(declared) {
		return nil, errors.Wrapf(ErrTemplateVariableCountMismatch, "contract declares %d, got %d", len(declared), len(values))
	}

	literals := make(map[string][]byte, len(declared))
	for name, typ := range declared {
		value, ok := values[name]
		if !ok {
			return nil, errors.Wrapf(ErrMissingTemplateVariable, "%s", name)
		}
		literal, err := templateLiteral(typ, value)
		if err != nil {
			return nil, errors.Wrapf(err, "template variable %s", name)
		}
		literals[name] = literal
	}

	var subErr error
	out := templatePattern.ReplaceAllFunc(program, func(match []byte) []byte {
		parts := templatePattern.FindSubmatch(match)
		op, sep, name := string(parts[1]), parts[2], string(parts[3])

		literal, ok := literals[name]
		if !ok {
			// undeclared placeholders are left for the assembler to reject
			return match
		}
		numericOp := op == "pushint" || op == "int"
		if numericOp != isNumericTemplate(declared[name]) {
			if subErr == nil {
				subErr = errors.Wrapf(ErrTemplateOpcode, "%s TMPL_%s declared as %s", op, name, declared[name])
			}
			return match
		}

		replaced := make([]byte, 0, len(op)+len(sep)+len(literal))
		replaced = append(replaced, op...)
		replaced = append(replaced, sep...)
		return append(replaced, literal...)
	})
	if subErr != nil {
		return nil, subErr
	}
	return out, nil
}

// templateLiteral formats a value as a TEAL integer or 0x byte literal
func templateLiteral(typ string, value any) ([]byte, error) {
	if !isNumericTemplate(typ) {
		switch v := value.(type) {
		case []byte:
			return []byte("0x" + hex.EncodeToString(v)), nil
		case string:
			return []byte("0x" + hex.EncodeToString([]byte(v))), nil
		}
		return nil, errors.Errorf("%s value must be bytes or a string, got %T", typ, value)
	}

	var n uint64
	switch v := value.(type) {
	case uint64:
		n = v
	case uint:
		n = uint64(v)
	case uint32:
		n = uint64(v)
	case int:
		if v < 0 {
			return nil, errors.Errorf("%s value must not be negative", typ)
		}
		n = uint64(v)
	case int64:
		if v < 0 {
			return nil, errors.Errorf("%s value must not be negative", typ)
		}
		n = uint64(v)
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return nil, errors.Errorf("%s value %v is not an unsigned integer", typ, v)
		}
		n = uint64(v)
	case json.Number:
		u, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s value", typ)
		}
		n = u
	case string:
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s value", typ)
		}
		n = u
	default:
		return nil, errors.Errorf("%s value must be an unsigned integer, got %T", typ, value)
	}
	return []byte(strconv.FormatUint(n, 10)), nil
}

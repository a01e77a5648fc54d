package codec

import (
	"strings"

	"github.com/algorand/go-algorand-sdk/v2/abi"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"arc56/internal/arc56"
)

// DefaultCacheSize bounds the memoized type resolutions
const DefaultCacheSize = 256

// Resolver maps struct names to the ABI tuple types they flatten to
type Resolver struct {
	structs map[string]*arc56.Struct
	tuples  *lru.Cache[string, string]
	types   *lru.Cache[string, abi.Type]
	shapes  *lru.Cache[string, *typeNode]
}

// NewResolver creates a resolver over the given struct table
func NewResolver(structs map[string]*arc56.Struct, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	tuples, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tuple cache")
	}
	types, err := lru.New[string, abi.Type](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create type cache")
	}
	shapes, err := lru.New[string, *typeNode](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create shape cache")
	}
	if structs == nil {
		structs = map[string]*arc56.Struct{}
	}
	return &Resolver{structs: structs, tuples: tuples, types: types, shapes: shapes}, nil
}

// Struct returns the struct registered under name
func (r *Resolver) Struct(name string) (*arc56.Struct, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// Resolve returns the ABI type string for a type reference.
// Struct names become their flattened tuple; anything else is returned unchanged.
func (r *Resolver) Resolve(typeRef string) string {
	if t, ok := r.tuples.Get(typeRef); ok {
		return t
	}
	s, ok := r.structs[typeRef]
	if !ok {
		return typeRef
	}
	t := tupleOf(s.Fields)
	r.tuples.Add(typeRef, t)
	return t
}

// ABIType parses the resolved ABI type of a reference
func (r *Resolver) ABIType(typeRef string) (abi.Type, error) {
	if t, ok := r.types.Get(typeRef); ok {
		return t, nil
	}
	t, err := abi.TypeOf(r.Resolve(typeRef))
	if err != nil {
		return abi.Type{}, errors.Wrapf(err, "failed to parse ABI type %q", typeRef)
	}
	r.types.Add(typeRef, t)
	return t, nil
}

func (r *Resolver) shape(typeRef string) (*typeNode, error) {
	if n, ok := r.shapes.Get(typeRef); ok {
		return n, nil
	}
	n, err := parseType(r.Resolve(typeRef))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse ABI type %q", typeRef)
	}
	r.shapes.Add(typeRef, n)
	return n, nil
}

func tupleOf(fields []arc56.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.IsGroup() {
			parts[i] = tupleOf(f.Fields)
		} else {
			parts[i] = f.Type
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

package codec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type kind int

const (
	kindOther kind = iota
	kindUint
	kindUfixed
	kindByte
	kindBool
	kindAddress
	kindString
	kindArray
	kindTuple
)

// typeNode is the parsed shape of an ABI type string
type typeNode struct {
	kind   kind
	bits   int
	elem   *typeNode
	length int
	fields []*typeNode
}

func parseType(s string) (*typeNode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty type")
	}

	if strings.HasSuffix(s, "]") {
		i := strings.LastIndex(s, "[")
		if i <= 0 {
			return nil, errors.Errorf("malformed array type %q", s)
		}
		elem, err := parseType(s[:i])
		if err != nil {
			return nil, err
		}
		n := &typeNode{kind: kindArray, elem: elem, length: -1}
		if lenStr := s[i+1 : len(s)-1]; lenStr != "" {
			l, err := strconv.Atoi(lenStr)
			if err != nil || l < 0 {
				return nil, errors.Errorf("malformed array length in %q", s)
			}
			n.length = l
		}
		return n, nil
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		parts, err := splitTuple(s[1 : len(s)-1])
		if err != nil {
			return nil, errors.Wrapf(err, "malformed tuple %q", s)
		}
		n := &typeNode{kind: kindTuple, fields: make([]*typeNode, len(parts))}
		for i, p := range parts {
			if n.fields[i], err = parseType(p); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
	if strings.ContainsAny(s, "(),[]") {
		return nil, errors.Errorf("malformed type %q", s)
	}

	switch {
	case s == "byte":
		return &typeNode{kind: kindByte, bits: 8}, nil
	case s == "bool":
		return &typeNode{kind: kindBool}, nil
	case s == "address":
		return &typeNode{kind: kindAddress}, nil
	case s == "string":
		return &typeNode{kind: kindString}, nil
	case strings.HasPrefix(s, "uint"):
		bits, err := strconv.Atoi(s[len("uint"):])
		if err != nil {
			return nil, errors.Errorf("malformed uint type %q", s)
		}
		return &typeNode{kind: kindUint, bits: bits}, nil
	case strings.HasPrefix(s, "ufixed"):
		spec := s[len("ufixed"):]
		x := strings.Index(spec, "x")
		if x <= 0 {
			return nil, errors.Errorf("malformed ufixed type %q", s)
		}
		bits, err := strconv.Atoi(spec[:x])
		if err != nil {
			return nil, errors.Errorf("malformed ufixed type %q", s)
		}
		return &typeNode{kind: kindUfixed, bits: bits}, nil
	}
	return &typeNode{kind: kindOther}, nil
}

func splitTuple(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errors.New("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, errors.New("unbalanced parentheses")
	}
	return append(parts, s[start:]), nil
}

package arc56

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidContract is returned when a document is not a usable ARC-56 specification
var ErrInvalidContract = errors.New("invalid ARC-56 contract")

// Load reads and parses an ARC-56 document from disk
func Load(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read contract %s", path)
	}
	return Parse(data)
}

// Parse decodes an ARC-56 document.
// Struct fields are read in document order since their position defines the tuple layout.
func Parse(data []byte) (*Contract, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrInvalidContract, "malformed JSON")
	}

	var c Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(ErrInvalidContract, err.Error())
	}

	structs, err := parseStructs(gjson.GetBytes(data, "structs"))
	if err != nil {
		return nil, err
	}
	c.Structs = structs
	c.State.fillNames()

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func parseStructs(node gjson.Result) (map[string]*Struct, error) {
	structs := make(map[string]*Struct)
	if !node.Exists() {
		return structs, nil
	}
	if !node.IsObject() {
		return nil, errors.Wrap(ErrInvalidContract, "structs must be an object")
	}

	var err error
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		var fields []Field
		fields, err = parseFields(name, value)
		if err != nil {
			return false
		}
		structs[name] = &Struct{Name: name, Fields: fields}
		return true
	})
	if err != nil {
		return nil, err
	}
	return structs, nil
}

func parseFields(path string, node gjson.Result) ([]Field, error) {
	if !node.IsObject() {
		return nil, errors.Wrapf(ErrInvalidContract, "struct %s must be an object", path)
	}

	fields := []Field{}
	var err error
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case value.IsObject():
			var nested []Field
			nested, err = parseFields(path+"."+name, value)
			if err != nil {
				return false
			}
			fields = append(fields, Field{Name: name, Fields: nested})
		case value.Type == gjson.String:
			fields = append(fields, Field{Name: name, Type: value.String()})
		default:
			err = errors.Wrapf(ErrInvalidContract, "field %s.%s must be a type name or an object", path, name)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (c *Contract) validate() error {
	if c.Name == "" {
		return errors.Wrap(ErrInvalidContract, "missing name")
	}

	for _, m := range c.Methods {
		if m.Name == "" {
			return errors.Wrap(ErrInvalidContract, "method without a name")
		}
		for _, a := range m.Args {
			if a.Struct != "" {
				if _, ok := c.Structs[a.Struct]; !ok {
					return errors.Wrapf(ErrInvalidContract, "method %s references unknown struct %s", m.Name, a.Struct)
				}
			}
		}
		if m.Returns.Struct != "" {
			if _, ok := c.Structs[m.Returns.Struct]; !ok {
				return errors.Wrapf(ErrInvalidContract, "method %s returns unknown struct %s", m.Name, m.Returns.Struct)
			}
		}
		if err := validateActions(m.Name, m.Actions); err != nil {
			return err
		}
	}
	if err := validateActions("bare", c.BareActions); err != nil {
		return err
	}

	for name, typ := range c.TemplateVariables {
		if typ == "" {
			return errors.Wrapf(ErrInvalidContract, "template variable %s has no type", name)
		}
	}
	return nil
}

func validateActions(owner string, a Actions) error {
	for _, oc := range append(append([]OnComplete{}, a.Create...), a.Call...) {
		if !oc.Valid() {
			return errors.Wrapf(ErrInvalidContract, "%s declares unknown action %q", owner, oc)
		}
	}
	return nil
}

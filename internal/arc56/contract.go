package arc56

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Raw type names that bypass tuple framing when encoded
const (
	TypeVoid      = "void"
	TypeBytes     = "bytes"
	TypeAVMBytes  = "AVMBytes"
	TypeAVMString = "AVMString"
)

// IsRawType reports whether a type reference is stored as unframed bytes
func IsRawType(typeRef string) bool {
	switch typeRef {
	case TypeBytes, TypeAVMBytes, TypeAVMString:
		return true
	}
	return false
}

// OnComplete is the action an application call performs after the approval program runs
type OnComplete string

const (
	NoOp              OnComplete = "NoOp"
	OptIn             OnComplete = "OptIn"
	CloseOut          OnComplete = "CloseOut"
	ClearState        OnComplete = "ClearState"
	UpdateApplication OnComplete = "UpdateApplication"
	DeleteApplication OnComplete = "DeleteApplication"
)

// onCompleteCodes holds the protocol value of each action, indexed by position
var onCompleteCodes = []OnComplete{NoOp, OptIn, CloseOut, ClearState, UpdateApplication, DeleteApplication}

// Code returns the protocol value of the action
func (oc OnComplete) Code() (uint64, bool) {
	for i, v := range onCompleteCodes {
		if v == oc {
			return uint64(i), true
		}
	}
	return 0, false
}

// Valid reports whether oc names a known action
func (oc OnComplete) Valid() bool {
	_, ok := oc.Code()
	return ok
}

// ParseOnComplete accepts an action name, case-insensitively
func ParseOnComplete(s string) (OnComplete, error) {
	for _, v := range onCompleteCodes {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return "", errors.Errorf("unknown OnComplete action %q", s)
}

// Actions lists the OnComplete actions allowed at creation and on an existing application
type Actions struct {
	Create []OnComplete `json:"create"`
	Call   []OnComplete `json:"call"`
}

// Allows reports whether action is permitted in the given context
func (a Actions) Allows(creating bool, action OnComplete) bool {
	set := a.Call
	if creating {
		set = a.Create
	}
	for _, v := range set {
		if v == action {
			return true
		}
	}
	return false
}

// Field is one ordered member of a struct: a leaf with a type or a nested group
type Field struct {
	Name   string
	Type   string
	Fields []Field
}

// IsGroup reports whether the field is a nested group of fields
func (f Field) IsGroup() bool {
	return f.Fields != nil
}

// Struct is a named record type whose fields keep declaration order
type Struct struct {
	Name   string
	Fields []Field
}

// Arg is a method argument
type Arg struct {
	Name         string        `json:"name,omitempty"`
	Type         string        `json:"type"`
	Struct       string        `json:"struct,omitempty"`
	Desc         string        `json:"desc,omitempty"`
	DefaultValue *DefaultValue `json:"defaultValue,omitempty"`
}

// TypeRef is the name the codec resolves: the struct when present, otherwise the ABI type
func (a Arg) TypeRef() string {
	if a.Struct != "" {
		return a.Struct
	}
	return a.Type
}

// DefaultValue describes where a missing argument value can be read from
type DefaultValue struct {
	Data   string `json:"data"`
	Type   string `json:"type,omitempty"`
	Source string `json:"source"`
}

// Returns describes a method's return value
type Returns struct {
	Type   string `json:"type"`
	Struct string `json:"struct,omitempty"`
	Desc   string `json:"desc,omitempty"`
}

// TypeRef is the name the codec resolves for the return value
func (r Returns) TypeRef() string {
	if r.Struct != "" {
		return r.Struct
	}
	return r.Type
}

// Void reports whether the method returns nothing
func (r Returns) Void() bool {
	return r.Struct == "" && (r.Type == "" || r.Type == TypeVoid)
}

// EventArg is one field of an emitted event
type EventArg struct {
	Name   string `json:"name,omitempty"`
	Type   string `json:"type"`
	Struct string `json:"struct,omitempty"`
	Desc   string `json:"desc,omitempty"`
}

// Event is an ARC-28 event a method may emit
type Event struct {
	Name string     `json:"name"`
	Desc string     `json:"desc,omitempty"`
	Args []EventArg `json:"args"`
}

// BoxRecommendation names a box a method is expected to touch
type BoxRecommendation struct {
	App        uint64 `json:"app,omitempty"`
	Key        string `json:"key"`
	ReadBytes  uint64 `json:"readBytes"`
	WriteBytes uint64 `json:"writeBytes"`
}

// Recommendations carry resource hints for a method call
type Recommendations struct {
	InnerTransactionCount *uint64            `json:"innerTransactionCount,omitempty"`
	Boxes                 *BoxRecommendation `json:"boxes,omitempty"`
	Accounts              []string           `json:"accounts,omitempty"`
	Apps                  []uint64           `json:"apps,omitempty"`
	Assets                []uint64           `json:"assets,omitempty"`
}

// Method is an ABI method exposed by the contract
type Method struct {
	Name            string           `json:"name"`
	Desc            string           `json:"desc,omitempty"`
	Args            []Arg            `json:"args"`
	Returns         Returns          `json:"returns"`
	Actions         Actions          `json:"actions"`
	ReadOnly        bool             `json:"readonly,omitempty"`
	Events          []Event          `json:"events,omitempty"`
	Recommendations *Recommendations `json:"recommendations,omitempty"`
}

// Signature returns the ARC-4 method signature, e.g. foo(uint64,string)void
func (m *Method) Signature() string {
	types := make([]string, len(m.Args))
	for i, a := range m.Args {
		types[i] = a.Type
	}
	ret := m.Returns.Type
	if ret == "" {
		ret = TypeVoid
	}
	return fmt.Sprintf("%s(%s)%s", m.Name, strings.Join(types, ","), ret)
}

// SourceInfo maps program counters back to source lines and error messages
type SourceInfo struct {
	Teal         int      `json:"teal"`
	Source       int      `json:"source,omitempty"`
	PC           []uint64 `json:"pc"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
}

// Source holds the TEAL programs of the contract
type Source struct {
	Approval []byte `json:"approval"`
	Clear    []byte `json:"clear"`
}

// Network records a deployment of the contract
type Network struct {
	AppID uint64 `json:"appID"`
}

// Contract is a parsed ARC-56 application specification
type Contract struct {
	Name              string             `json:"name"`
	Desc              string             `json:"desc,omitempty"`
	Arcs              []int              `json:"arcs"`
	Networks          map[string]Network `json:"networks,omitempty"`
	Structs           map[string]*Struct `json:"-"`
	Methods           []Method           `json:"methods"`
	State             State              `json:"state"`
	BareActions       Actions            `json:"bareActions"`
	SourceInfo        []SourceInfo       `json:"sourceInfo,omitempty"`
	Source            *Source            `json:"source,omitempty"`
	TemplateVariables map[string]string  `json:"templateVariables,omitempty"`

	methodsByName map[string]int
	methodsBySig  map[string]int
	pcMessages    map[uint64]string
}

// Method looks a method up by exact name or by full signature
func (c *Contract) Method(name string) (*Method, bool) {
	idx, ok := c.methodsByName[name]
	if !ok {
		idx, ok = c.methodsBySig[name]
	}
	if !ok {
		return nil, false
	}
	return &c.Methods[idx], true
}

// Struct looks a struct up by name
func (c *Contract) Struct(name string) (*Struct, bool) {
	s, ok := c.Structs[name]
	return s, ok
}

// ErrorMessage returns the developer message recorded for a program counter
func (c *Contract) ErrorMessage(pc uint64) (string, bool) {
	msg := c.pcMessages[pc]
	return msg, msg != ""
}

// Programs returns the approval and clear programs
func (c *Contract) Programs() (approval, clearProg []byte, ok bool) {
	if c.Source == nil || len(c.Source.Approval) == 0 || len(c.Source.Clear) == 0 {
		return nil, nil, false
	}
	return c.Source.Approval, c.Source.Clear, true
}

// index builds the lookup tables used after load
func (c *Contract) index() {
	c.methodsByName = make(map[string]int, len(c.Methods))
	c.methodsBySig = make(map[string]int, len(c.Methods))
	for i := range c.Methods {
		m := &c.Methods[i]
		if _, dup := c.methodsByName[m.Name]; !dup {
			c.methodsByName[m.Name] = i
		}
		c.methodsBySig[m.Signature()] = i
	}

	// the first entry covering a pc decides, even when it carries no message
	c.pcMessages = make(map[uint64]string)
	for _, si := range c.SourceInfo {
		for _, pc := range si.PC {
			if _, seen := c.pcMessages[pc]; !seen {
				c.pcMessages[pc] = si.ErrorMessage
			}
		}
	}
}

package arc56

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Contract {
	t.Helper()
	c, err := Load("testdata/ARC56Test.arc56.json")
	require.NoError(t, err)
	return c
}

func TestLoad_Fixture(t *testing.T) {
	c := loadFixture(t)

	assert.Equal(t, "ARC56Test", c.Name)
	assert.Equal(t, []int{4, 56}, c.Arcs)
	assert.Len(t, c.Methods, 3)
	assert.Equal(t, map[string]string{"someNumber": "uint64"}, c.TemplateVariables)
	assert.Equal(t, StateCounts{Ints: 1, Bytes: 37}, c.State.Schema.Global)
	assert.Equal(t, StateCounts{Ints: 1, Bytes: 13}, c.State.Schema.Local)

	approval, clearProg, ok := c.Programs()
	require.True(t, ok)
	assert.Contains(t, string(approval), "pushint TMPL_someNumber")
	assert.NotEmpty(t, clearProg)
}

func TestLoad_StructFieldOrder(t *testing.T) {
	c := loadFixture(t)

	inputs, ok := c.Struct("Inputs")
	require.True(t, ok)
	require.Len(t, inputs.Fields, 2)
	assert.Equal(t, "add", inputs.Fields[0].Name)
	assert.Equal(t, "subtract", inputs.Fields[1].Name)
	assert.True(t, inputs.Fields[0].IsGroup())
	assert.Equal(t, []Field{{Name: "a", Type: "uint64"}, {Name: "b", Type: "uint64"}}, inputs.Fields[0].Fields)

	outputs, ok := c.Struct("Outputs")
	require.True(t, ok)
	assert.Equal(t, []Field{{Name: "sum", Type: "uint64"}, {Name: "difference", Type: "uint64"}}, outputs.Fields)

	_, ok = c.Struct("{ foo: uint16; bar: uint16 }")
	assert.True(t, ok)
}

func TestLoad_KeepsDeclarationOrderOverAlphabetical(t *testing.T) {
	doc := `{"name":"Z","arcs":[56],"methods":[],"structs":{"S":{"zeta":"uint8","alpha":"uint16","mid":{"y":"bool","b":"string"}}}}`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	s, _ := c.Struct("S")
	names := []string{}
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	assert.Equal(t, "y", s.Fields[2].Fields[0].Name)
}

func TestMethodLookup(t *testing.T) {
	c := loadFixture(t)

	m, ok := c.Method("foo")
	require.True(t, ok)
	assert.Equal(t, "foo(((uint64,uint64),(uint64,uint64)))(uint64,uint64)", m.Signature())
	assert.Equal(t, "Inputs", m.Args[0].TypeRef())
	assert.Equal(t, "Outputs", m.Returns.TypeRef())
	assert.False(t, m.Returns.Void())

	bySig, ok := c.Method(m.Signature())
	require.True(t, ok)
	assert.Equal(t, m, bySig)

	opt, ok := c.Method("optInToApplication")
	require.True(t, ok)
	assert.True(t, opt.Returns.Void())
	assert.True(t, opt.Actions.Allows(false, OptIn))
	assert.False(t, opt.Actions.Allows(true, OptIn))

	_, ok = c.Method("missing")
	assert.False(t, ok)
}

func TestErrorMessageByPC(t *testing.T) {
	c := loadFixture(t)

	msg, ok := c.ErrorMessage(81)
	require.True(t, ok)
	assert.Equal(t, "subtract.a must be greater than subtract.b", msg)

	_, ok = c.ErrorMessage(82)
	assert.False(t, ok)
}

func TestErrorMessage_FirstSourceEntryWins(t *testing.T) {
	c, err := Parse([]byte(`{
		"name": "Overlap",
		"methods": [],
		"sourceInfo": [
			{"teal": 1, "pc": [10, 11]},
			{"teal": 2, "pc": [11, 12], "errorMessage": "later"},
			{"teal": 3, "pc": [12], "errorMessage": "shadowed"}
		]
	}`))
	require.NoError(t, err)

	_, ok := c.ErrorMessage(11)
	assert.False(t, ok, "an earlier entry without a message covers pc 11")

	msg, ok := c.ErrorMessage(12)
	require.True(t, ok)
	assert.Equal(t, "later", msg)

	_, ok = c.ErrorMessage(10)
	assert.False(t, ok)
}

func TestStateLookup(t *testing.T) {
	c := loadFixture(t)

	ns, key, ok := c.State.Key("globalKey")
	require.True(t, ok)
	assert.Equal(t, Global, ns)
	assert.Equal(t, []byte("globalKey"), key.Key)
	assert.Equal(t, "globalKey", key.Name)

	ns, key, ok = c.State.Key("boxKey")
	require.True(t, ok)
	assert.Equal(t, Box, ns)
	assert.Equal(t, "string", key.ValueType)

	ns, m, ok := c.State.Map("localMap")
	require.True(t, ok)
	assert.Equal(t, Local, ns)
	assert.Equal(t, []byte("p"), m.PrefixBytes())

	_, _, ok = c.State.Map("nope")
	assert.False(t, ok)
	assert.Empty(t, c.State.Collisions())
}

func TestStateLookup_Precedence(t *testing.T) {
	doc := `{"name":"C","arcs":[56],"methods":[],"state":{"keys":{
		"global":{"dup":{"key":"Zw==","keyType":"bytes","valueType":"uint64"}},
		"box":{"dup":{"key":"Yg==","keyType":"bytes","valueType":"string"}}}}}`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	ns, key, ok := c.State.Key("dup")
	require.True(t, ok)
	assert.Equal(t, Global, ns)
	assert.Equal(t, []byte("g"), key.Key)
	assert.Equal(t, []string{"dup"}, c.State.Collisions())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"name":`},
		{"missing name", `{"methods":[]}`},
		{"unknown struct", `{"name":"C","methods":[{"name":"m","args":[{"type":"(uint8)","struct":"Nope"}],"returns":{"type":"void"},"actions":{"create":[],"call":["NoOp"]}}]}`},
		{"unknown action", `{"name":"C","methods":[{"name":"m","args":[],"returns":{"type":"void"},"actions":{"create":[],"call":["Explode"]}}]}`},
		{"bad field", `{"name":"C","methods":[],"structs":{"S":{"a":7}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidContract)
		})
	}
}

func TestOnComplete(t *testing.T) {
	code, ok := DeleteApplication.Code()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), code)

	oc, err := ParseOnComplete("optin")
	require.NoError(t, err)
	assert.Equal(t, OptIn, oc)

	_, err = ParseOnComplete("bogus")
	assert.Error(t, err)
	assert.True(t, IsRawType("AVMString"))
	assert.False(t, IsRawType("string"))
}

package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aa"}, obj.SortedKeys())
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(IRNull{}))
	assert.False(t, IsNull(IRString("")))
	assert.False(t, IsNull(IRInt(0)))
}

func TestString(t *testing.T) {
	tests := []struct {
		input    IRValue
		expected string
	}{
		{IRNull{}, "NULL"},
		{IRString("it's"), "'it''s'"},
		{IRInt(-3), "-3"},
		{IRBool(true), "true"},
		{IRArray{IRInt(1), IRString("a")}, "[1,'a']"},
		{IRObject{"b": IRInt(1), "a": IRNull{}}, `{"a":null,"b":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, String(tt.input))
		})
	}
}

func TestUnmarshalIRObject(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"s":"x","n":3,"b":true,"z":null,"a":[1,"two"]}`), &obj)
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"s": IRString("x"),
		"n": IRInt(3),
		"b": IRBool(true),
		"z": IRNull{},
		"a": IRArray{IRInt(1), IRString("two")},
	}, obj)
}

func TestUnmarshalRejectsFloats(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"f":1.5}`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats not allowed")
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "abc", IRString("abc")},
		{"int", 5, IRInt(5)},
		{"integral float", float64(7), IRInt(7)},
		{"bool", false, IRBool(false)},
		{"slice", []any{1, "x", nil}, IRArray{IRInt(1), IRString("x"), IRNull{}}},
		{"map", map[string]any{"k": 2}, IRObject{"k": IRInt(2)}},
		{"already ir", IRString("y"), IRString("y")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FromGo(2.5)
	assert.Error(t, err)
	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestMarshalIRValue(t *testing.T) {
	b, err := MarshalIRValue(IRArray{IRNull{}, IRInt(1), IRObject{"k": IRString("v")}})
	require.NoError(t, err)
	assert.Equal(t, `[null,1,{"k":"v"}]`, string(b))
}

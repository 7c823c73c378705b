package generator

import (
	"context"
	"testing"

	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTraitHeader(t *testing.T) {
	source := []byte(`#pragma once
#include <string>

struct Velocity {
    float dx;
    float dy;
    std::string label;
};
`)

	name, fields, err := ParseTraitHeader(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "Velocity", name)
	assert.Equal(t, []models.TraitField{
		{Type: "float", Name: "dx"},
		{Type: "float", Name: "dy"},
		{Type: "std::string", Name: "label"},
	}, fields)
}

// Only the first struct with a body is reported
func TestParseTraitHeader_ForwardDeclaration(t *testing.T) {
	source := []byte(`struct Entity;

struct Health {
    int current;
};

struct Unused {
    int other;
};
`)

	name, fields, err := ParseTraitHeader(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, "Health", name)
	assert.Equal(t, []models.TraitField{{Type: "int", Name: "current"}}, fields)
}

func TestParseTraitHeader_NoStruct(t *testing.T) {
	name, fields, err := ParseTraitHeader(context.Background(), []byte("#pragma once\nusing Tag = int;\n"))
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Empty(t, fields)
}

// Headers without a struct keep the file name as struct name
func TestInspector_Inspect(t *testing.T) {
	tp := newTestProject(t)
	tp.write("include/Mod/B.h", "#pragma once\n// tag trait\n")
	project := tp.project()

	traits := NewInspector(tp.fs).Inspect(context.Background(), project, Traits(project))

	require.Len(t, traits, 2)
	assert.Equal(t, "A", traits[0].StructName)
	assert.Equal(t, []models.TraitField{{Type: "int", Name: "value"}}, traits[0].Fields)
	assert.Equal(t, "B", traits[1].StructName)
	assert.Empty(t, traits[1].Fields)
}

package generator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/meysamhadeli/traitgen/generator/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testRoot = "/work/Mod"

	testHeaderBlueprint = `#pragma once
{% for trait in traits %}#include "{{ trait.fileStem }}{{ trait.fileExtension }}"
{% endfor %}enum class {{ module }}Trait { {% for trait in traits %}{{ trait.name }} = {{ trait.id }}, {% endfor %}};
`
	testSourceBlueprint = `#include "{{ module }}.h"
{% for trait in traits %}// {{ trait.name }}={{ trait.id }}
{% endfor %}const int kTraitCount = {{ count }};
`
)

// baseTime is the modification time every fixture file starts with
var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testProject is an in-memory trait project rooted at testRoot
type testProject struct {
	t  testing.TB
	fs afero.Fs
}

// newTestProject creates include/Mod/{A,B}.h, src/{A,B}.cpp and both blueprints,
// without a cache file.
func newTestProject(t testing.TB) *testProject {
	t.Helper()
	clearIgnoreCache()

	tp := &testProject{t: t, fs: afero.NewMemMapFs()}
	tp.write("include/Mod/A.h", "struct A { int value; };\n")
	tp.write("include/Mod/B.h", "struct B { float x; float y; };\n")
	tp.write("src/A.cpp", "#include \"Mod/A.h\"\n")
	tp.write("src/B.cpp", "#include \"Mod/B.h\"\n")
	tp.write("blueprints/object_blueprint.h", testHeaderBlueprint)
	tp.write("blueprints/object_blueprint.cpp", testSourceBlueprint)
	require.NoError(t, tp.fs.MkdirAll(tp.path("scripts"), 0755))
	return tp
}

func (tp *testProject) path(rel string) string {
	return filepath.Join(testRoot, filepath.FromSlash(rel))
}

// write creates rel with content and pins its modification time to baseTime
func (tp *testProject) write(rel, content string) {
	tp.t.Helper()
	tp.writeAt(rel, content, baseTime)
}

func (tp *testProject) writeAt(rel, content string, modTime time.Time) {
	tp.t.Helper()
	path := tp.path(rel)
	require.NoError(tp.t, tp.fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(tp.t, afero.WriteFile(tp.fs, path, []byte(content), 0644))
	tp.touch(rel, modTime)
}

func (tp *testProject) touch(rel string, modTime time.Time) {
	tp.t.Helper()
	require.NoError(tp.t, tp.fs.Chtimes(tp.path(rel), modTime, modTime))
}

func (tp *testProject) read(rel string) string {
	tp.t.Helper()
	data, err := afero.ReadFile(tp.fs, tp.path(rel))
	require.NoError(tp.t, err)
	return string(data)
}

func (tp *testProject) exists(rel string) bool {
	ok, _ := afero.Exists(tp.fs, tp.path(rel))
	return ok
}

func (tp *testProject) project() *models.ProjectDescriptor {
	tp.t.Helper()
	p, err := NewProject(tp.fs, testRoot, DefaultLayout)
	require.NoError(tp.t, err)
	return p
}

// list returns the entry names of a directory in name order
func (tp *testProject) list(rel string) ([]string, error) {
	entries, err := afero.ReadDir(tp.fs, tp.path(rel))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

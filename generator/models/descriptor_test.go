package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileDescriptor(t *testing.T) {
	path := filepath.Join("/proj", "include", "Mod", "Velocity.h")

	fd := NewFileDescriptor(path)

	assert.Equal(t, filepath.Join("/proj", "include", "Mod"), fd.Dir)
	assert.Equal(t, "Velocity", fd.Name)
	assert.Equal(t, ".h", fd.Ext)
	assert.Equal(t, "Velocity.h", fd.FileName())
	assert.Equal(t, path, fd.Path())
	assert.Equal(t, path, fd.String())
}

// Only the last extension is split off
func TestNewFileDescriptor_MultipleDots(t *testing.T) {
	fd := NewFileDescriptor(filepath.Join("/proj", "src", "Shape.inl.cpp"))

	assert.Equal(t, "Shape.inl", fd.Name)
	assert.Equal(t, ".cpp", fd.Ext)
}

func TestNewFileDescriptor_NoExtension(t *testing.T) {
	fd := NewFileDescriptor(filepath.Join("/proj", "src", "README"))

	assert.Equal(t, "README", fd.Name)
	assert.Empty(t, fd.Ext)
	assert.Equal(t, filepath.Join("/proj", "src", "README"), fd.Path())
}

func TestNewWatchedSet_Deduplicates(t *testing.T) {
	ws := NewWatchedSet("/a", "/b", "/a", "/c", "/b")

	assert.Equal(t, []string{"/a", "/b", "/c"}, ws.Paths())
	assert.Equal(t, 3, ws.Len())
}

// Paths hands out a copy
func TestWatchedSet_PathsIsCopy(t *testing.T) {
	ws := NewWatchedSet("/a", "/b")

	paths := ws.Paths()
	paths[0] = "/changed"

	assert.Equal(t, []string{"/a", "/b"}, ws.Paths())
}

func TestProjectDescriptor_WatchedSet(t *testing.T) {
	project := &ProjectDescriptor{
		IncludeFiles: []FileDescriptor{
			{Dir: "/p/include/Mod", Name: "A", Ext: ".h"},
			{Dir: "/p/include/Mod", Name: "B", Ext: ".h"},
		},
		SrcFiles: []FileDescriptor{
			{Dir: "/p/src", Name: "A", Ext: ".cpp"},
		},
		HeaderBlueprint: BlueprintDescriptor{
			Input:  FileDescriptor{Dir: "/p/blueprints", Name: "object_blueprint", Ext: ".h"},
			Output: FileDescriptor{Dir: "/p/include/Mod", Name: "Mod", Ext: ".h"},
		},
		SourceBlueprint: BlueprintDescriptor{
			Input:  FileDescriptor{Dir: "/p/blueprints", Name: "object_blueprint", Ext: ".cpp"},
			Output: FileDescriptor{Dir: "/p/src", Name: "Mod", Ext: ".cpp"},
		},
	}

	ws := project.WatchedSet()
	require.Equal(t, 5, ws.Len())
	assert.Equal(t, []string{
		filepath.Join("/p/src", "A.cpp"),
		filepath.Join("/p/include/Mod", "A.h"),
		filepath.Join("/p/include/Mod", "B.h"),
		filepath.Join("/p/blueprints", "object_blueprint.h"),
		filepath.Join("/p/blueprints", "object_blueprint.cpp"),
	}, ws.Paths())

	// outputs are never watched
	assert.NotContains(t, ws.Paths(), project.HeaderBlueprint.Output.Path())
	assert.NotContains(t, ws.Paths(), project.SourceBlueprint.Output.Path())

	blueprints := project.Blueprints()
	require.Len(t, blueprints, 2)
	assert.Equal(t, project.HeaderBlueprint, blueprints[0])
	assert.Equal(t, project.SourceBlueprint, blueprints[1])
}

package classgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestLoad_ExplicitFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a/zoo.go":  "package zoo\n",
		"a/pets.go": "package zoo\n",
		"b/farm.go": "package farm\n",
	})

	pkgs, err := Load(dir, []string{"a/zoo.go", "b/farm.go", "a/pets.go"})
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	assert.Equal(t, filepath.Join(dir, "a"), pkgs[0].Dir)
	require.Len(t, pkgs[0].Files, 2)
	assert.Equal(t, filepath.Join(dir, "a", "zoo.go"), pkgs[0].Files[0].Path)
	assert.Equal(t, "package zoo\n", string(pkgs[0].Files[0].Src))
	assert.Equal(t, filepath.Join(dir, "b"), pkgs[1].Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), []string{"nope.go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoad_Patterns(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the go command")
	}
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"go.mod":              "module example.com/zoo\n\ngo 1.21\n",
		"zoo.go":              "package zoo\n\n//dynasty:class\ntype Animal struct{}\n",
		"zoo_test.go":         "package zoo\n",
		"birds/birds.go":      "package birds\n",
		"birds/birds_more.go": "package birds\n",
	})

	pkgs, err := Load(dir, []string{"./..."})
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	byName := map[string]*Package{}
	for _, p := range pkgs {
		byName[p.Name] = p
	}
	require.Contains(t, byName, "zoo")
	require.Contains(t, byName, "birds")

	zoo := byName["zoo"]
	require.Len(t, zoo.Files, 1, "test files are not loaded")
	assert.Equal(t, "zoo.go", filepath.Base(zoo.Files[0].Path))
	assert.Len(t, byName["birds"].Files, 2)
}

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dynasty/config"
	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/version"
)

const zooSource = `package zoo

//dynasty:class
type Animal struct {
	Name string
}

//dynasty:inherit Animal
type Dog struct {
	Breed string
}
`

func resetFlags() {
	configPath = ""
	verbosity = 0
	jsonOutput = false
	generateDryRun = false
	generateWatch = false
	generateClean = false
	treeFormat = "text"
	configFormat = "toml"
	configForce = false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return buf.String(), err
}

func setupZoo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo.go"), []byte(zooSource), 0644))
	chdir(t, dir)
	return dir
}

func TestGenerateThenCheck(t *testing.T) {
	dir := setupZoo(t)

	out, err := execute(t, "check", "zoo.go")
	require.Error(t, err)
	assert.Contains(t, out, "zoo.go: base field not injected")
	assert.Contains(t, out, "zoo_dynasty.go: missing")
	assert.Contains(t, errors.GetAllHints(err), "run 'dynasty generate' to update")

	out, err = execute(t, "generate", "--dry-run", "zoo.go")
	require.NoError(t, err)
	assert.Contains(t, out, "Would change:")
	assert.NoFileExists(t, filepath.Join(dir, "zoo_dynasty.go"))

	out, err = execute(t, "generate", "zoo.go")
	require.NoError(t, err)
	assert.Contains(t, out, "Injected base fields into zoo.go")
	assert.Contains(t, out, "Generated zoo_dynasty.go")
	assert.FileExists(t, filepath.Join(dir, "zoo_dynasty.go"))

	out, err = execute(t, "generate", "zoo.go")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated code is up to date (1 file)")

	out, err = execute(t, "check", "zoo.go")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated code is up to date")
}

func TestGenerate_Diagnostics(t *testing.T) {
	dir := t.TempDir()
	src := "package zoo\n\n//dynasty:inherit *Animal\ntype Dog struct{}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zoo.go"), []byte(src), 0644))
	chdir(t, dir)

	_, err := execute(t, "generate", "zoo.go")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidParent))
	assert.Contains(t, err.Error(), "zoo.go:3:1")
	assert.NoFileExists(t, filepath.Join(dir, "zoo_dynasty.go"))
}

func TestTree_JSON(t *testing.T) {
	setupZoo(t)

	out, err := execute(t, "tree", "--format", "json", "zoo.go")
	require.NoError(t, err)

	var trees []packageTree
	require.NoError(t, json.Unmarshal([]byte(out), &trees))
	require.Len(t, trees, 1)
	assert.Equal(t, "zoo", trees[0].Package)
	require.Len(t, trees[0].Classes, 1)
	assert.Equal(t, "Animal", trees[0].Classes[0].Name)
	require.Len(t, trees[0].Classes[0].Children, 1)
	assert.Equal(t, "Dog", trees[0].Classes[0].Children[0].Name)
}

func TestTree_Text(t *testing.T) {
	setupZoo(t)

	out, err := execute(t, "tree", "zoo.go")
	require.NoError(t, err)
	assert.Contains(t, out, "Animal")
	assert.Contains(t, out, "Dog")

	_, err = execute(t, "tree", "--format", "xml", "zoo.go")
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	out, err := execute(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults are valid")

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, config.FileName))

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, errors.GetAllHints(err), "pass --force to overwrite it")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	typo := "[generate]\nbase_feild = \"parent\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(typo), 0644))

	out, err = execute(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Unknown key generate.base_feild")
}

func TestConfigShow(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DYNASTY_GENERATE_BASE_FIELD", "parent")

	out, err := execute(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "parent", cfg.Generate.BaseField)
	assert.Equal(t, config.DefaultSuffix, cfg.Generate.Suffix)
}

func TestVersion_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}

package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	t.Parallel()

	doc, err := New("plugin.star", "x = 1\n")
	require.NoError(t, err)
	assert.Equal(t, "plugin.star", doc.Name())
	assert.Equal(t, "x = 1\n", doc.Text())
	assert.Empty(t, doc.Path())
	assert.False(t, doc.Dirty())
	assert.Contains(t, doc.String(), "plugin.star")

	_, err = New("", "x")
	require.ErrorIs(t, err, ErrNameEmpty)

	require.ErrorIs(t, doc.Save(), ErrNoPath)
	require.ErrorIs(t, doc.Reload(), ErrNoPath)
}

func TestOpenSaveReload(t *testing.T) {
	t.Parallel()
	path := writeScript(t, "x = 1\n")

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "plugin.star", doc.Name())
	assert.Equal(t, path, doc.Path())
	assert.False(t, doc.Dirty())

	doc.SetText("x = 2\n")
	assert.True(t, doc.Dirty())

	require.NoError(t, doc.Save())
	assert.False(t, doc.Dirty())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	doc.SetText("unsaved")
	require.NoError(t, os.WriteFile(path, []byte("x = 3\n"), 0o600))
	require.NoError(t, doc.Reload())
	assert.Equal(t, "x = 3\n", doc.Text())
	assert.False(t, doc.Dirty())

	_, err = Open(filepath.Join(t.TempDir(), "missing.star"))
	require.Error(t, err)
}

func TestSaveAs(t *testing.T) {
	t.Parallel()
	doc, err := New("plugin.star", "x = 1\n")
	require.NoError(t, err)
	doc.SetText("x = 2\n")

	path := filepath.Join(t.TempDir(), "plugin.star")
	require.NoError(t, doc.SaveAs(path))
	assert.Equal(t, path, doc.Path())
	assert.False(t, doc.Dirty())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", string(content))
}

func TestSaveClean(t *testing.T) {
	t.Parallel()
	path := writeScript(t, "x = 1\n")
	doc, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("x = 9\n"), 0o600))

	require.NoError(t, doc.Save())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 9\n", string(content), "clean save must not rewrite the file")

	t.Run("save as writes a clean document", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "copy.star")
		require.NoError(t, doc.SaveAs(target))
		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "x = 1\n", string(content))
	})
}

func TestOnChange(t *testing.T) {
	t.Parallel()
	path := writeScript(t, "x = 1\n")
	doc, err := Open(path)
	require.NoError(t, err)

	var states []bool
	doc.OnChange(func(dirty bool) { states = append(states, dirty) })

	doc.SetText("x = 2\n")
	doc.SetText("x = 3\n")
	doc.SetText("x = 1\n")
	doc.UpdateCode("x = 4\n")
	require.NoError(t, doc.Save())

	assert.Equal(t, []bool{true, false, true, false}, states)
}

func TestCaret(t *testing.T) {
	t.Parallel()
	doc, err := New("plugin.star", "abcdef")
	require.NoError(t, err)

	doc.SetCaret(4)
	assert.Equal(t, 4, doc.CaretOffset())

	doc.SetCaret(100)
	assert.Equal(t, 6, doc.CaretOffset())

	doc.SetCaret(-1)
	assert.Equal(t, 0, doc.CaretOffset())

	doc.SetCaret(5)
	doc.UpdateCode("ab")
	assert.Equal(t, 2, doc.CaretOffset())
}

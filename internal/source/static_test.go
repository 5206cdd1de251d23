package source

import (
	"context"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
items:
  - text: first row
  - id: custom
    text: second row
  - text: third row
`)
	s, err := LoadYAML(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Name())

	page, err := s.LoadPage(context.Background(), 0, 2, "")
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, "first row", page.Items[0].Text)
	require.NotEmpty(t, page.Items[0].ID)
	require.Equal(t, "custom", page.Items[1].ID)

	page, err = s.LoadPage(context.Background(), 1, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "third row", page.Items[0].Text)
}

func TestLoadYAML_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadYAML(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no items", func(t *testing.T) {
		_, err := LoadYAML(writeFile(t, "items: []\n"))
		require.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadYAML(writeFile(t, "items: [\n"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse")
	})
}

func TestStatic_Filter(t *testing.T) {
	t.Parallel()

	s := NewStatic("test", []Item{
		{Text: "apple pie"},
		{Text: "banana bread"},
		{Text: "apple crumble"},
		{Text: "cherry tart"},
	})

	page, err := s.LoadPage(context.Background(), 0, 10, "apple")
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, "apple crumble", page.Items[1].Text)

	page, err = s.LoadPage(context.Background(), 1, 1, "apple")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "apple crumble", page.Items[0].Text)

	page, err = s.LoadPage(context.Background(), 0, 10, "")
	require.NoError(t, err)
	require.Equal(t, 4, page.Total)
}

func TestStatic_CanceledContext(t *testing.T) {
	t.Parallel()

	s := NewStatic("test", []Item{{Text: "a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.LoadPage(ctx, 0, 10, "")
	require.ErrorIs(t, err, context.Canceled)
}

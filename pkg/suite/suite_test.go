package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestSuite_LoadDir(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadDir("testdata"))

	assert.Equal(t, 6, s.Count())
	assert.Len(t, s.Sources(), 2)

	d, ok := s.Get("messages")
	require.True(t, ok)
	assert.Equal(t, ".msg", d.Target)
	assert.Equal(t, []string{"Welcome", "Invoice"}, d.Values)
	assert.Equal(t, []ID{"title"}, d.Dependencies)

	d, ok = s.Get("menu-not-empty")
	require.True(t, ok)
	assert.True(t, d.Negate)

	ids := make([]ID, 0)
	for _, d := range s.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []ID{"menu-not-empty", "menu-size", "messages", "no-errors", "session", "title"}, ids)
}

func TestSuite_LoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseFile(writeFile(t, dir, "checks.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported")

	_, err = ParseFile(writeFile(t, dir, "broken.json", "{"))
	assert.ErrorContains(t, err, "parse check file")

	s := New()
	err = s.LoadFile(writeFile(t, dir, "invalid.yaml", `
version: "1"
checks:
  - id: a
    condition: bogus
`))
	assert.ErrorContains(t, err, `checks[0].condition: unknown browser condition "bogus"`)
	assert.Equal(t, 0, s.Count())
}

func TestSuite_DuplicateAcrossFiles(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadFile(filepath.Join("testdata", "menu.json")))
	err := s.LoadFile(filepath.Join("testdata", "menu.json"))
	assert.ErrorContains(t, err, "already loaded")
	assert.Equal(t, 2, s.Count())
}

func TestSuite_Add(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Definition{ID: "t", Condition: "title", Value: "Home"}))
	assert.Error(t, s.Add(Definition{ID: "t", Condition: "title", Value: "Home"}))
	assert.Error(t, s.Add(Definition{Condition: "title"}))
	assert.Error(t, s.Add(Definition{ID: "x", Target: ".a", Condition: "texts"}))
	assert.Error(t, s.Add(Definition{ID: "y", Condition: "windows", Count: -1}))
	assert.Error(t, s.Add(Definition{ID: "z", Condition: "title", Timeout: "soon"}))
	assert.Equal(t, 1, s.Count())
}

func TestSuite_Order(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Definition{ID: "c", Condition: "title", Dependencies: []ID{"b"}}))
	require.NoError(t, s.Add(Definition{ID: "b", Condition: "title", Dependencies: []ID{"a"}}))
	require.NoError(t, s.Add(Definition{ID: "a", Condition: "title"}))
	require.NoError(t, s.Add(Definition{ID: "d", Condition: "title"}))

	ordered, err := s.Order()
	require.NoError(t, err)
	var ids []ID
	for _, d := range ordered {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []ID{"a", "d", "b", "c"}, ids)

	lv := levels(ordered)
	require.Len(t, lv, 3)
	assert.Len(t, lv[0], 2)
}

func TestSuite_OrderUnknownDependency(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Definition{ID: "a", Condition: "title", Dependencies: []ID{"ghost"}}))
	_, err := s.Order()
	assert.ErrorContains(t, err, "unknown check ghost")
}

func TestSuite_OrderCycle(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(Definition{ID: "a", Condition: "title", Dependencies: []ID{"b"}}))
	require.NoError(t, s.Add(Definition{ID: "b", Condition: "title", Dependencies: []ID{"a"}}))
	_, err := s.Order()
	assert.ErrorContains(t, err, "circular dependency detected: a -> b -> a")
}

package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	exts []string
	text string
}

func (f *fakeExtractor) Extensions() []string { return f.exts }
func (f *fakeExtractor) Extract(context.Context, []byte) (string, error) {
	return f.text, nil
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExtractor{exts: []string{".md", "TXT"}, text: "plain"})

	for _, suffix := range []string{".md", ".MD", "md", ".txt", "txt"} {
		e, ok := r.Lookup(suffix)
		require.True(t, ok, suffix)
		out, err := e.Extract(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "plain", out)
	}

	_, ok := r.Lookup(".exe")
	assert.False(t, ok)
	_, ok = r.Lookup("")
	assert.False(t, ok)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeExtractor{exts: []string{".txt"}, text: "first"})
	r.Register(&fakeExtractor{exts: []string{".txt"}, text: "second"})

	e, ok := r.Lookup(".txt")
	require.True(t, ok)
	out, _ := e.Extract(context.Background(), nil)
	assert.Equal(t, "second", out)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []string{
		".csv", ".docx", ".htm", ".html", ".log", ".md", ".pdf", ".txt", ".xlsm", ".xlsx",
	}, r.Extensions())

	_, ok := r.Lookup(".xls")
	assert.False(t, ok, "legacy binary spreadsheets have no extractor")
}

package credential

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name       string
		sources    []Source
		fallback   string
		wantValue  string
		wantSource string
		wantErr    bool
	}{
		{
			name:       "secret store wins over entered value",
			sources:    []Source{MapSource{"GOOGLE_API_KEY": "AIzaStore"}},
			fallback:   "AIzaTyped",
			wantValue:  "AIzaStore",
			wantSource: "static",
		},
		{
			name:       "blank store value falls through",
			sources:    []Source{MapSource{"GOOGLE_API_KEY": "   "}},
			fallback:   " AIzaTyped ",
			wantValue:  "AIzaTyped",
			wantSource: SourceFallback,
		},
		{
			name:       "first store in order",
			sources:    []Source{MapSource{}, MapSource{"GOOGLE_API_KEY": "AIzaSecond"}},
			wantValue:  "AIzaSecond",
			wantSource: "static",
		},
		{
			name:    "nothing anywhere",
			sources: []Source{MapSource{}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver("GOOGLE_API_KEY", tt.sources...)
			c, err := r.Resolve(tt.fallback)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMissingCredential))
				assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, c.Value)
			assert.Equal(t, tt.wantSource, c.Source)
		})
	}
}

func TestResolveNotRequired(t *testing.T) {
	r := NewResolver("")
	assert.False(t, r.Required())

	c, err := r.Resolve("")
	require.NoError(t, err)
	assert.Empty(t, c.Value)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("VEGAN_TEST_KEY", "from-env")
	r := NewResolver("VEGAN_TEST_KEY", EnvSource{})

	c, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Value)
	assert.Equal(t, "env", c.Source)
}

func TestFileSourceToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secrets.toml")
	require.NoError(t, os.WriteFile(path, []byte("GOOGLE_API_KEY = \"AIzaFromFile\"\n"), 0o600))

	fs, err := NewFileSource(path)
	require.NoError(t, err)

	v, ok := fs.Lookup("GOOGLE_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "AIzaFromFile", v)

	_, ok = fs.Lookup("OPENAI_API_KEY")
	assert.False(t, ok)
}

func TestFileSourceMissingFileIsEmpty(t *testing.T) {
	fs, err := NewFileSource(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	_, ok := fs.Lookup("GOOGLE_API_KEY")
	assert.False(t, ok)
}

func TestFileSourceBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.toml")
	require.NoError(t, os.WriteFile(path, []byte("GOOGLE_API_KEY = = broken"), 0o600))

	_, err := NewFileSource(path)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	t.Run("valid google key", func(t *testing.T) {
		in := NewResolver("GOOGLE_API_KEY", MapSource{"GOOGLE_API_KEY": "AIzaSyExample"}).Inspect("")
		assert.True(t, in.Found)
		assert.True(t, in.LooksValid)
		assert.Equal(t, "AIza", in.Prefix)
		assert.Equal(t, "static", in.Source)
	})

	t.Run("wrong looking key", func(t *testing.T) {
		in := NewResolver("GOOGLE_API_KEY").Inspect("sk-something")
		assert.True(t, in.Found)
		assert.False(t, in.LooksValid)
		assert.Equal(t, "sk-s", in.Prefix)
		assert.Equal(t, SourceFallback, in.Source)
		assert.Contains(t, in.Message, "looks wrong")
	})

	t.Run("missing", func(t *testing.T) {
		in := NewResolver("GOOGLE_API_KEY").Inspect("")
		assert.False(t, in.Found)
		assert.Empty(t, in.Prefix)
	})

	t.Run("other providers only need presence", func(t *testing.T) {
		in := NewResolver("OPENAI_API_KEY").Inspect("sk-abc")
		assert.True(t, in.LooksValid)
	})

	t.Run("not required", func(t *testing.T) {
		in := NewResolver("").Inspect("")
		assert.False(t, in.Required)
		assert.True(t, in.LooksValid)
	})
}

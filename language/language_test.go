package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]Language{
		"js":         JavaScript,
		"JS":         JavaScript,
		"javascript": JavaScript,
		"node":       JavaScript,
		"ts":         TypeScript,
		"typescript": TypeScript,
		"py":         Python,
		"python":     Python,
		"Python3":    Python,
		"go":         Go,
		"golang":     Go,
		"java":       Java,
		"rs":         Rust,
		"rust":       Rust,
		"sh":         Bash,
		"shell":      Bash,
		"bash":       Bash,
	}
	for tag, want := range cases {
		got, ok := Normalize(tag)
		assert.True(t, ok, "tag %q should be supported", tag)
		assert.Equal(t, want, got, "tag %q", tag)
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	for _, tag := range []string{"ruby", "haskell", "text", "", "c++", "yaml"} {
		_, ok := Normalize(tag)
		assert.False(t, ok, "tag %q should be unsupported", tag)
	}
}

func TestRecipeForAllLanguages(t *testing.T) {
	for _, lang := range All() {
		recipe, ok := RecipeFor(lang)
		require.True(t, ok, "language %q should have a recipe", lang)
		assert.NotEmpty(t, recipe.FileName)
		assert.NotEmpty(t, recipe.Argv)
		assert.NotEmpty(t, recipe.CommentPrefix)
	}
}

func TestRecipeShapes(t *testing.T) {
	t.Run("InterpretedTakesFile", func(t *testing.T) {
		recipe, ok := RecipeFor(Python)
		require.True(t, ok)
		assert.Equal(t, []string{"python3"}, recipe.Argv)
		assert.True(t, recipe.ArgvTakesFile)
		assert.Empty(t, recipe.BuildArgv)
	})

	t.Run("RustCompilesFirst", func(t *testing.T) {
		recipe, ok := RecipeFor(Rust)
		require.True(t, ok)
		assert.NotEmpty(t, recipe.BuildArgv)
		assert.False(t, recipe.ArgvTakesFile)
	})

	t.Run("CommentPrefixes", func(t *testing.T) {
		hash := []Language{Python, Bash}
		for _, lang := range hash {
			recipe, _ := RecipeFor(lang)
			assert.Equal(t, "#", recipe.CommentPrefix, "language %q", lang)
		}
		slash := []Language{JavaScript, TypeScript, Go, Java, Rust}
		for _, lang := range slash {
			recipe, _ := RecipeFor(lang)
			assert.Equal(t, "//", recipe.CommentPrefix, "language %q", lang)
		}
	})

	t.Run("GoCacheStaysInSandbox", func(t *testing.T) {
		recipe, _ := RecipeFor(Go)
		assert.Contains(t, recipe.Env["GOCACHE"], "${SANDBOX}")
	})
}

func TestRecipeForUnknown(t *testing.T) {
	_, ok := RecipeFor(Language("cobol"))
	assert.False(t, ok)
}

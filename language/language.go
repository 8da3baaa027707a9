// Package language normalizes free-form code-fence tags onto the closed set
// of supported execution targets and provides the execution recipe for each.
package language

// Language is a canonical, lower-case supported language tag.
type Language string

// Supported execution targets.
const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Go         Language = "go"
	Java       Language = "java"
	Rust       Language = "rust"
	Bash       Language = "bash"
)

// aliases maps lower-cased fence tags and common shorthand onto canonical
// languages. Tags not present here are unsupported.
var aliases = map[string]Language{
	"javascript": JavaScript,
	"js":         JavaScript,
	"node":       JavaScript,
	"nodejs":     JavaScript,
	"typescript": TypeScript,
	"ts":         TypeScript,
	"python":     Python,
	"python3":    Python,
	"py":         Python,
	"go":         Go,
	"golang":     Go,
	"java":       Java,
	"rust":       Rust,
	"rs":         Rust,
	"bash":       Bash,
	"sh":         Bash,
	"shell":      Bash,
	"zsh":        Bash,
}

// Normalize resolves a free-form fence tag to a supported language.
// Matching is case-insensitive. The second return value reports whether the
// tag resolved to a supported target.
func Normalize(tag string) (Language, bool) {
	lang, ok := aliases[lower(tag)]
	return lang, ok
}

// All returns every supported language in a fixed order.
func All() []Language {
	return []Language{JavaScript, TypeScript, Python, Go, Java, Rust, Bash}
}

// lower is an ASCII-only strings.ToLower; fence tags are word characters.
func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// Recipe describes how one language's snippets are materialized and invoked
// inside a sandbox directory.
type Recipe struct {
	// FileName is the name the snippet is written to inside the sandbox.
	FileName string

	// BuildArgv is an optional compile step, run before Argv from the
	// sandbox directory. The source file name is appended as the final
	// argument. Empty for interpreted languages.
	BuildArgv []string

	// Argv invokes the snippet. For interpreted languages the source file
	// name is appended as the final argument; compiled languages run the
	// produced binary directly.
	Argv []string

	// ArgvTakesFile reports whether the source file name is appended to
	// Argv. False when Argv runs a compiled artifact.
	ArgvTakesFile bool

	// Env holds language-specific environment hygiene. Values may contain
	// the ${SANDBOX} placeholder, replaced with the sandbox directory path.
	Env map[string]string

	// CommentPrefix is the line-comment prefix used for expectation
	// annotations ("expected: <text>") in this language.
	CommentPrefix string
}

// recipes is the fixed execution recipe table. Interpreters and compilers
// are assumed present on PATH; a missing binary surfaces as an execution
// error at run time, never at startup.
var recipes = map[Language]Recipe{
	JavaScript: {
		FileName:      "example.js",
		Argv:          []string{"node"},
		ArgvTakesFile: true,
		Env:           map[string]string{"NODE_DISABLE_COLORS": "1", "NO_COLOR": "1"},
		CommentPrefix: "//",
	},
	TypeScript: {
		FileName:      "example.ts",
		Argv:          []string{"npx", "--yes", "tsx"},
		ArgvTakesFile: true,
		Env:           map[string]string{"NODE_DISABLE_COLORS": "1", "NO_COLOR": "1", "NPM_CONFIG_UPDATE_NOTIFIER": "false"},
		CommentPrefix: "//",
	},
	Python: {
		FileName:      "example.py",
		Argv:          []string{"python3"},
		ArgvTakesFile: true,
		Env:           map[string]string{"PYTHONDONTWRITEBYTECODE": "1", "PYTHONUNBUFFERED": "1"},
		CommentPrefix: "#",
	},
	Go: {
		FileName:      "example.go",
		Argv:          []string{"go", "run"},
		ArgvTakesFile: true,
		Env: map[string]string{
			"GOCACHE":     "${SANDBOX}/.gocache",
			"GOPATH":      "${SANDBOX}/.gopath",
			"GOFLAGS":     "-mod=mod",
			"GO111MODULE": "auto",
		},
		CommentPrefix: "//",
	},
	Java: {
		FileName:      "Example.java",
		Argv:          []string{"java"}, // single-file source launcher
		ArgvTakesFile: true,
		Env:           map[string]string{},
		CommentPrefix: "//",
	},
	Rust: {
		FileName:      "example.rs",
		BuildArgv:     []string{"rustc", "-o", "example"},
		Argv:          []string{"./example"},
		ArgvTakesFile: false,
		Env:           map[string]string{},
		CommentPrefix: "//",
	},
	Bash: {
		FileName:      "example.sh",
		Argv:          []string{"bash"},
		ArgvTakesFile: true,
		Env:           map[string]string{},
		CommentPrefix: "#",
	},
}

// RecipeFor returns the execution recipe for a supported language.
func RecipeFor(lang Language) (Recipe, bool) {
	r, ok := recipes[lang]
	return r, ok
}

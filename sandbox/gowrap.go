package sandbox

import "strings"

// wrapGoSource turns a Go snippet into a runnable single-file program.
//
// Documentation snippets are rarely complete programs. A snippet that
// already declares package main is used verbatim; one that defines
// func main gets the package clause prepended; anything else is treated as
// a bare statement list and wrapped in a synthesized main. The heuristic is
// best-effort: a snippet that is neither a full program nor a statement
// list (say, a lone type declaration) still gets wrapped and surfaces its
// compile error as a normal execution error.
func wrapGoSource(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	if strings.Contains(code, "func main(") {
		return "package main\n\n" + code
	}

	var sb strings.Builder
	sb.WriteString("package main\n\nfunc main() {\n")
	for _, line := range strings.Split(code, "\n") {
		sb.WriteString("\t")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

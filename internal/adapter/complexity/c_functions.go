// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package complexity

import (
	"regexp"
	"strings"
)

var cFuncHeader = regexp.MustCompile(`\b([a-zA-Z_][\w:~]*)\s*\(([^()]*)\)\s*(?:const\s*)?(?:noexcept\s*)?(?:override\s*)?$`)

// cFunctions finds top-level function definitions in C and C++ sources by
// tracking braces. It does not understand the preprocessor and will miss
// functions whose header is produced by a macro.
func cFunctions(src []byte) []FunctionMetrics {
	lines := strings.Split(string(src), "\n")

	var (
		out         []FunctionMetrics
		header      strings.Builder
		headerStart = -1
		current     *FunctionMetrics
		depth       int
		outerDepth  int
	)

	for i, line := range lines {
		code := strings.TrimSpace(stripStringLiterals(line))

		if current != nil {
			depth += strings.Count(code, "{") - strings.Count(code, "}")
			if depth > outerDepth {
				continue
			}
			current.EndLine = i + 1
			current.NLOC, current.CCN, current.MaxNesting = textMetrics(lines, current.StartLine, current.EndLine)
			out = append(out, *current)
			current = nil
			continue
		}

		if code == "" || strings.HasPrefix(code, "//") || strings.HasPrefix(code, "/*") ||
			strings.HasPrefix(code, "*") || strings.HasPrefix(code, "#") {
			header.Reset()
			headerStart = -1
			continue
		}

		// namespace and extern "C" blocks do not open a function
		if strings.HasPrefix(code, "namespace") || strings.HasPrefix(code, "extern") {
			depth += strings.Count(code, "{") - strings.Count(code, "}")
			header.Reset()
			headerStart = -1
			continue
		}

		if headerStart == -1 {
			headerStart = i + 1
		}
		if header.Len() > 0 {
			header.WriteByte(' ')
		}
		header.WriteString(code)

		idx := strings.Index(code, "{")
		if idx < 0 {
			if strings.HasSuffix(code, ";") || strings.HasSuffix(code, "}") {
				depth += strings.Count(code, "{") - strings.Count(code, "}")
				header.Reset()
				headerStart = -1
			}
			continue
		}

		candidate := header.String()
		candidate = strings.TrimSpace(candidate[:strings.Index(candidate, "{")])
		m := cFuncHeader.FindStringSubmatch(candidate)
		opened := strings.Count(code, "{") - strings.Count(code, "}")

		if m != nil && !isControlKeyword(m[1]) {
			outerDepth = depth
			depth += opened
			current = &FunctionMetrics{
				Name:       m[1],
				StartLine:  headerStart,
				Parameters: countCParams(m[2]),
			}
			if depth <= outerDepth {
				current.EndLine = i + 1
				current.NLOC, current.CCN, current.MaxNesting = textMetrics(lines, current.StartLine, current.EndLine)
				out = append(out, *current)
				current = nil
			}
		} else {
			depth += opened
		}
		header.Reset()
		headerStart = -1
	}
	return out
}

func countCParams(list string) int {
	list = strings.TrimSpace(list)
	if list == "" || list == "void" {
		return 0
	}
	return strings.Count(list, ",") + 1
}

func isControlKeyword(name string) bool {
	switch name {
	case "if", "for", "while", "switch", "return", "catch", "sizeof":
		return true
	default:
		return false
	}
}

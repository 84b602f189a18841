// SPDX-FileCopyrightText: 2024-2025 Rafael V. Volkmer <rafael.v.volkmer@gmail.com>
// SPDX-License-Identifier: MIT

package complexity

import (
	"regexp"
	"strings"
)

// FunctionMetrics describes one function body.
type FunctionMetrics struct {
	Name       string
	StartLine  int
	EndLine    int
	NLOC       int
	CCN        int
	MaxNesting int
	Parameters int
}

var decisionKeywords = regexp.MustCompile(`\b(if|for|while|case|catch)\b`)

var boolOps = regexp.MustCompile(`&&|\|\||\?`)

// textMetrics scans lines [start, end] (1-based, inclusive) of a brace
// language. Nesting is counted from the function's own braces, so the body
// itself is level 0.
func textMetrics(lines []string, start, end int) (nloc, ccn, maxNesting int) {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}

	ccn = 1
	depth := 0
	inBlockComment := false

	for i := start - 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}

		if inBlockComment {
			idx := strings.Index(trimmed, "*/")
			if idx < 0 {
				continue
			}
			inBlockComment = false
			trimmed = strings.TrimSpace(trimmed[idx+2:])
		}

		code := stripComments(stripStringLiterals(trimmed), &inBlockComment)
		if code == "" || strings.HasPrefix(code, "#") {
			continue
		}
		nloc++

		ccn += len(decisionKeywords.FindAllString(code, -1))
		ccn += len(boolOps.FindAllString(code, -1))

		for _, ch := range code {
			switch ch {
			case '{':
				depth++
				if depth-1 > maxNesting {
					maxNesting = depth - 1
				}
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
	}
	return nloc, ccn, maxNesting
}

// codeLines counts the non-blank, non-comment lines in [start, end].
func codeLines(lines []string, start, end int) int {
	n, _, _ := textMetrics(lines, start, end)
	return n
}

// stripComments drops // comments and /* */ blocks from an already
// literal-free line, tracking blocks that continue past it.
func stripComments(code string, inBlock *bool) string {
	var b strings.Builder
	for len(code) > 0 {
		if *inBlock {
			idx := strings.Index(code, "*/")
			if idx < 0 {
				return strings.TrimSpace(b.String())
			}
			*inBlock = false
			code = code[idx+2:]
			continue
		}
		line := strings.Index(code, "//")
		block := strings.Index(code, "/*")
		switch {
		case line >= 0 && (block < 0 || line < block):
			b.WriteString(code[:line])
			return strings.TrimSpace(b.String())
		case block >= 0:
			b.WriteString(code[:block])
			*inBlock = true
			code = code[block+2:]
		default:
			b.WriteString(code)
			code = ""
		}
	}
	return strings.TrimSpace(b.String())
}

// stripStringLiterals removes the contents of quoted strings and character
// literals so braces and keywords inside them are not counted.
func stripStringLiterals(s string) string {
	var b strings.Builder
	inSingle, inDouble, escape := false, false, false

	for _, r := range s {
		if escape {
			escape = false
			continue
		}
		switch {
		case r == '\\' && (inSingle || inDouble):
			escape = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case !inSingle && !inDouble:
			b.WriteRune(r)
		}
	}
	return b.String()
}

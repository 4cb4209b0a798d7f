package internal

import (
	"regexp"
	"strconv"
	"strings"
)

// Text-show operators in a decoded PDF content stream:
// (literal) Tj or ', and [ (a) -120 (b) ] TJ arrays.
var (
	showTextRe  = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*(?:Tj|'|")`)
	showArrayRe = regexp.MustCompile(`\[((?:\\.|[^\\\[\]])*)\]\s*TJ`)
	literalRe   = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)`)
)

// contentStreamText pulls the text-show operands out of a page content
// stream. Positioning, fonts and graphics operators are dropped; good
// enough for building a retrieval index over text PDFs.
func contentStreamText(raw []byte) string {
	src := string(raw)
	var b strings.Builder

	emit := func(s string) {
		s = strings.TrimSpace(unescapePDFString(s))
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s)
	}

	// Walk the stream once, keeping Tj/TJ in document order.
	for len(src) > 0 {
		tj := showTextRe.FindStringSubmatchIndex(src)
		arr := showArrayRe.FindStringSubmatchIndex(src)

		switch {
		case tj == nil && arr == nil:
			return b.String()
		case arr == nil || (tj != nil && tj[0] < arr[0]):
			emit(src[tj[2]:tj[3]])
			src = src[tj[1]:]
		default:
			var parts []string
			for _, m := range literalRe.FindAllStringSubmatch(src[arr[2]:arr[3]], -1) {
				parts = append(parts, unescapePDFString(m[1]))
			}
			emit(strings.Join(parts, ""))
			src = src[arr[1]:]
		}
	}
	return b.String()
}

// unescapePDFString resolves the escape sequences of a PDF literal
// string: \( \) \\ \n \r \t and octal \ddd.
func unescapePDFString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch n := s[i]; n {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(n)
		default:
			if n >= '0' && n <= '7' {
				end := i + 1
				for end < len(s) && end < i+3 && s[end] >= '0' && s[end] <= '7' {
					end++
				}
				if v, err := strconv.ParseUint(s[i:end], 8, 16); err == nil && v < 256 {
					b.WriteByte(byte(v))
				}
				i = end - 1
			} else {
				b.WriteByte(n)
			}
		}
	}
	return b.String()
}

package glsl

import "strings"

// MaskComments returns src with every byte inside a // or /* */ comment
// replaced by a space. Newlines inside block comments are preserved, so the
// result has the same length and the same line structure as the input:
// a byte offset into the masked text is valid in the original.
//
// Hook tokens (<name>, <name.sub(args)>, ...) encountered in code are
// skipped atomically, so // or /* */ appearing inside hook argument text
// does not open a comment. Hook tokens that start inside a comment are
// masked like any other comment text.
//
// An unterminated block comment is masked through to the end of the source.
func MaskComments(src string) string {
	buf := []byte(src)
	const (
		code = iota
		lineComment
		blockComment
	)
	state := code
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case code:
			if c == '<' {
				if loc := hookTokenRe.FindStringIndex(src[i:]); loc != nil {
					i += loc[1] - 1
					continue
				}
			}
			if c == '/' && i+1 < len(buf) {
				switch buf[i+1] {
				case '/':
					state = lineComment
					buf[i], buf[i+1] = ' ', ' '
					i++
				case '*':
					state = blockComment
					buf[i], buf[i+1] = ' ', ' '
					i++
				}
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				buf[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(buf) && buf[i+1] == '/' {
				buf[i], buf[i+1] = ' ', ' '
				state = code
				i++
			} else if c != '\n' {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

// RemoveComments strips comments from src. Line structure is preserved so
// diagnostic line numbers computed against the result still match the
// original source; trailing whitespace left behind by removed comments is
// trimmed per line.
func RemoveComments(src string) string {
	masked := MaskComments(src)
	lines := strings.Split(masked, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

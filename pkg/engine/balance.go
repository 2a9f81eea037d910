package engine

import "fmt"

// openForm is a bracket still waiting for its closer.
type openForm struct {
	ch        byte
	line, col int
	head      string
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

func (f openForm) String() string {
	if f.head == "" {
		return string(f.ch)
	}
	return fmt.Sprintf("%c%s ...%c", f.ch, f.head, closers[f.ch])
}

// checkBalance locates the first unbalanced bracket or unterminated string
// in plan source. An unclosed form is reported at the line and column of
// its outermost open bracket, so a missing paren points at the wall or
// room it belongs to rather than at the end of the file.
func checkBalance(source string) []EvalError {
	fail := func(line, col int, format string, args ...any) []EvalError {
		return []EvalError{{Line: line, Col: col, Message: fmt.Sprintf(format, args...)}}
	}

	var stack []openForm
	b := []byte(source)
	line, col := 1, 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		col++
		switch {
		case c == '\n':
			line, col = line+1, 0
		case c == '"' || c == '`':
			startLine, startCol := line, col
			for i++; i < len(b) && b[i] != c; i++ {
				col++
				switch {
				case b[i] == '\n':
					line, col = line+1, 0
				case c == '"' && b[i] == '\\' && i+1 < len(b):
					i++
					col++
				}
			}
			if i >= len(b) {
				return fail(startLine, startCol, "unterminated string")
			}
			col++
		case c == ';' || (c == '/' && i+1 < len(b) && b[i+1] == '/'):
			for i+1 < len(b) && b[i+1] != '\n' {
				i++
			}
		case closers[c] != 0:
			stack = append(stack, openForm{ch: c, line: line, col: col, head: formHead(b[i+1:])})
		case c == ')' || c == ']' || c == '}':
			if len(stack) == 0 {
				return fail(line, col, "unexpected %q", c)
			}
			top := stack[len(stack)-1]
			if closers[top.ch] != c {
				return fail(line, col, "%q closes %s opened on line %d", c, top, top.line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		f := stack[0]
		return fail(f.line, f.col, "unclosed %s", f)
	}
	return nil
}

// formHead returns the symbol directly after an open bracket.
func formHead(rest []byte) string {
	j := 0
	for j < len(rest) && isKWChar(rest[j]) {
		j++
	}
	return string(rest[:j])
}

package sqlconvert

import (
	"fmt"
	"strings"
)

// insertStatement is one parsed INSERT INTO statement: the target
// table, its column list, and the literal rows of its VALUES clause.
// NULL values arrive as empty strings.
type insertStatement struct {
	Table   string
	Columns []string
	Rows    [][]string
}

// splitStatements cuts a SQL script into statements at top-level
// semicolons. Quoted strings and comments are respected, and comments
// are dropped from the output. Whitespace-only statements are omitted.
func splitStatements(src string) []string {
	var statements []string
	var current strings.Builder

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			current.WriteRune(r)
			for i++; i < len(runes); i++ {
				current.WriteRune(runes[i])
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						i++
						current.WriteRune(runes[i])
						continue
					}
					break
				}
			}
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			current.WriteRune('\n')
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
		case r == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// scanner walks one statement rune by rune.
type scanner struct {
	src []rune
	pos int
}

func newScanner(stmt string) *scanner {
	return &scanner{src: []rune(stmt)}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// keyword consumes the given word case-insensitively. The word must be
// followed by a non-identifier rune.
func (s *scanner) keyword(word string) bool {
	s.skipSpace()
	end := s.pos + len(word)
	if end > len(s.src) {
		return false
	}
	if !strings.EqualFold(string(s.src[s.pos:end]), word) {
		return false
	}
	if end < len(s.src) && isIdentRune(s.src[end]) {
		return false
	}
	s.pos = end
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// expect consumes one literal rune.
func (s *scanner) expect(r rune) error {
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != r {
		return fmt.Errorf("expected %q at offset %d", r, s.pos)
	}
	s.pos++
	return nil
}

func (s *scanner) peek() (rune, bool) {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos], true
}

// ident reads one identifier, unwrapping [brackets], `backticks`, or
// "double quotes".
func (s *scanner) ident() (string, error) {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return "", fmt.Errorf("expected identifier at offset %d", s.pos)
	}
	switch s.src[s.pos] {
	case '[':
		return s.delimited(']')
	case '`':
		return s.delimited('`')
	case '"':
		return s.delimited('"')
	}
	start := s.pos
	for s.pos < len(s.src) && isIdentRune(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", fmt.Errorf("expected identifier at offset %d", s.pos)
	}
	return string(s.src[start:s.pos]), nil
}

func (s *scanner) delimited(closing rune) (string, error) {
	s.pos++
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != closing {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return "", fmt.Errorf("unterminated identifier at offset %d", start)
	}
	name := string(s.src[start:s.pos])
	s.pos++
	return name, nil
}

// qualifiedName reads a possibly schema-qualified name and returns its
// last segment.
func (s *scanner) qualifiedName() (string, error) {
	name, err := s.ident()
	if err != nil {
		return "", err
	}
	for {
		if r, ok := s.peek(); !ok || r != '.' {
			return name, nil
		}
		s.pos++
		name, err = s.ident()
		if err != nil {
			return "", err
		}
	}
}

// stringLiteral reads a '...' literal after the opening quote has been
// consumed, collapsing '' escapes.
func (s *scanner) stringLiteral() (string, error) {
	var b strings.Builder
	for s.pos < len(s.src) {
		r := s.src[s.pos]
		s.pos++
		if r != '\'' {
			b.WriteRune(r)
			continue
		}
		if s.pos < len(s.src) && s.src[s.pos] == '\'' {
			b.WriteRune('\'')
			s.pos++
			continue
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unterminated string at offset %d", s.pos)
}

// value reads one literal in a VALUES tuple. NULL becomes the empty
// string; numbers and other bare tokens are kept verbatim.
func (s *scanner) value() (string, error) {
	r, ok := s.peek()
	if !ok {
		return "", fmt.Errorf("expected value at offset %d", s.pos)
	}
	switch {
	case r == '\'':
		s.pos++
		return s.stringLiteral()
	case r == 'N' || r == 'n':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '\'' {
			s.pos += 2
			return s.stringLiteral()
		}
		if s.keyword("NULL") {
			return "", nil
		}
		return s.bareToken(), nil
	default:
		return s.bareToken(), nil
	}
}

func (s *scanner) bareToken() string {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ',' && s.src[s.pos] != ')' {
		s.pos++
	}
	return strings.TrimSpace(string(s.src[start:s.pos]))
}

// parseInsert parses one INSERT INTO statement. The second return
// value is false when the statement is not an INSERT.
func parseInsert(stmt string) (*insertStatement, bool, error) {
	s := newScanner(stmt)
	if !s.keyword("INSERT") {
		return nil, false, nil
	}
	if !s.keyword("INTO") {
		return nil, false, nil
	}

	table, err := s.qualifiedName()
	if err != nil {
		return nil, true, err
	}

	if err := s.expect('('); err != nil {
		return nil, true, err
	}
	var columns []string
	for {
		col, err := s.ident()
		if err != nil {
			return nil, true, err
		}
		columns = append(columns, col)
		r, ok := s.peek()
		if !ok {
			return nil, true, fmt.Errorf("unterminated column list")
		}
		s.pos++
		if r == ')' {
			break
		}
		if r != ',' {
			return nil, true, fmt.Errorf("unexpected %q in column list", r)
		}
	}

	if !s.keyword("VALUES") {
		return nil, true, fmt.Errorf("expected VALUES clause")
	}

	var rows [][]string
	for {
		if err := s.expect('('); err != nil {
			return nil, true, err
		}
		row := make([]string, 0, len(columns))
		for {
			v, err := s.value()
			if err != nil {
				return nil, true, err
			}
			row = append(row, v)
			r, ok := s.peek()
			if !ok {
				return nil, true, fmt.Errorf("unterminated value tuple")
			}
			s.pos++
			if r == ')' {
				break
			}
			if r != ',' {
				return nil, true, fmt.Errorf("unexpected %q in value tuple", r)
			}
		}
		rows = append(rows, row)
		if r, ok := s.peek(); !ok || r != ',' {
			break
		}
		s.pos++
	}

	return &insertStatement{Table: table, Columns: columns, Rows: rows}, true, nil
}

package parse

import (
	"bytes"
	"fmt"
	"strings"
	"text/scanner"
)

// token is one lexical element of a header.
type token struct {
	tok  rune // scanner.Ident, scanner.String, ... or the character itself
	text string
	line int
	off  int // byte offset of the first character
	end  int // byte offset past the last character
}

func (t token) is(r rune) bool { return t.tok == r }

func (t token) ident(name string) bool {
	return t.tok == scanner.Ident && t.text == name
}

// wordy reports whether two adjacent wordy tokens need a space between them.
func (t token) wordy() bool {
	switch t.tok {
	case scanner.Ident, scanner.Int, scanner.Float, scanner.Char, scanner.String:
		return true
	}
	return false
}

// stripPreprocessor blanks preprocessor directives, continuation lines
// included, keeping line numbers intact.
func stripPreprocessor(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	inDirective := false
	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if inDirective || bytes.HasPrefix(trimmed, []byte("#")) {
			inDirective = bytes.HasSuffix(bytes.TrimRight(line, " \t\r"), []byte("\\"))
			lines[i] = nil
		}
	}
	return bytes.Join(lines, []byte("\n"))
}

// tokenize splits src into tokens, skipping comments. Token offsets index
// src, which is expected to be stripped of preprocessor lines already.
func tokenize(file string, src []byte) ([]token, error) {
	var (
		s    scanner.Scanner
		errs []string
	)
	s.Init(bytes.NewReader(src))
	s.Filename = file
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.Error = func(s *scanner.Scanner, msg string) {
		errs = append(errs, fmt.Sprintf("line %d: %s", s.Pos().Line, msg))
	}
	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		text := s.TokenText()
		toks = append(toks, token{
			tok:  tok,
			text: text,
			line: s.Position.Line,
			off:  s.Position.Offset,
			end:  s.Position.Offset + len(text),
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return toks, nil
}

// joinTokens renders tokens as compact source text, e.g.
// "const std::vector<int>&" or "(int value, float* out) const".
func joinTokens(toks []token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			spaced := prev.wordy() || prev.is(')') || prev.is('*') || prev.is('&')
			if (spaced && t.wordy()) || prev.is(',') {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.text)
	}
	return b.String()
}

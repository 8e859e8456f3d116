package parse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/scanner"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

// Parse implements Parser.
func (p *HeaderParser) Parse(ctx context.Context, path string) (*entity.ParsingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, kodgen.NewParseError(path, 0, "cannot read file", err)
	}
	src := stripPreprocessor(raw)
	toks, err := tokenize(path, src)
	if err != nil {
		return nil, kodgen.NewParseError(path, 0, "invalid source", err)
	}
	fp := &fileParser{p: p, res: entity.NewParsingResult(path), src: src, toks: toks}
	if err := fp.parseScope(nil, false); err != nil {
		return nil, err
	}
	if p.rules != nil && !fp.aborted() {
		p.rules.ValidateTree(fp.res, p.settings.AbortOnFirstError)
	}
	if fp.aborted() {
		return nil, kodgen.NewParseError(path, 0, "aborted on first error", fp.res.Errors[0])
	}
	p.logger.Debug("parsed file",
		"file", path,
		"entities", fp.res.Tree.Len()-1,
		"errors", len(fp.res.Errors),
	)
	return fp.res, nil
}

// annotation is one annotation macro invocation.
type annotation struct {
	kind  entity.Kind
	macro string
	line  int
	props entity.PropertyGroup
}

// fileParser holds the state of parsing one file.
type fileParser struct {
	p    *HeaderParser
	res  *entity.ParsingResult
	src  []byte
	toks []token
	i    int
}

func (fp *fileParser) peekAt(n int) token {
	if j := fp.i + n; j < len(fp.toks) {
		return fp.toks[j]
	}
	eof := token{tok: scanner.EOF, text: "end of file"}
	if len(fp.toks) > 0 {
		eof.line = fp.toks[len(fp.toks)-1].line
	}
	return eof
}

func (fp *fileParser) peek() token { return fp.peekAt(0) }

func (fp *fileParser) next() token {
	t := fp.peek()
	if fp.i < len(fp.toks) {
		fp.i++
	}
	return t
}

func (fp *fileParser) aborted() bool {
	return fp.p.settings.AbortOnFirstError && len(fp.res.Errors) > 0
}

// recoverable records a problem that does not prevent generating the file.
func (fp *fileParser) recoverable(line int, cause error, format string, args ...any) {
	fp.res.Errors = append(fp.res.Errors, kodgen.NewParseError(fp.res.File, line, fmt.Sprintf(format, args...), cause))
}

func (fp *fileParser) fatal(line int, format string, args ...any) error {
	return kodgen.NewParseError(fp.res.File, line, fmt.Sprintf(format, args...), nil)
}

func (fp *fileParser) isMacro(t token) bool {
	if t.tok != scanner.Ident {
		return false
	}
	_, ok := fp.p.settings.Macros.Kind(t.text)
	return ok
}

// parseScope parses the body of the file, a namespace or a record. When
// closed is set the scope ends at a matching '}'.
func (fp *fileParser) parseScope(parent *entity.Entity, closed bool) error {
	for !fp.aborted() {
		var err error
		t := fp.peek()
		switch {
		case t.tok == scanner.EOF:
			if closed {
				return fp.fatal(t.line, "unexpected end of file: missing '}'")
			}
			return nil
		case t.is('}'):
			if !closed {
				return fp.fatal(t.line, "unbalanced '}'")
			}
			fp.next()
			return nil
		case t.is(';'):
			fp.next()
		case t.ident("inline") && fp.peekAt(1).ident("namespace"):
			fp.next()
		case t.ident("namespace"):
			err = fp.parseNamespace(parent)
		case t.ident("class"), t.ident("struct"):
			err = fp.parseRecord(parent)
		case t.ident("enum"):
			err = fp.parseEnum(parent)
		case t.ident("template"):
			fp.next()
			if fp.peek().is('<') {
				err = fp.skipGroup('<', '>')
			}
		case isAccessSpecifier(t) && fp.peekAt(1).is(':'):
			fp.next()
			fp.next()
		case t.ident("extern") && fp.peekAt(1).tok == scanner.String && fp.peekAt(2).is('{'):
			fp.i += 3
			err = fp.parseScope(parent, true)
		default:
			err = fp.parseDeclaration(parent)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// readAnnotation consumes an annotation macro and its argument list.
func (fp *fileParser) readAnnotation() (*annotation, error) {
	t := fp.next()
	kind, _ := fp.p.settings.Macros.Kind(t.text)
	a := &annotation{kind: kind, macro: t.text, line: t.line}
	if !fp.peek().is('(') {
		return a, nil
	}
	open := fp.next()
	for depth := 1; ; {
		c := fp.next()
		switch {
		case c.tok == scanner.EOF:
			return nil, fp.fatal(open.line, "unterminated %s annotation", t.text)
		case c.is('('):
			depth++
		case c.is(')'):
			depth--
			if depth > 0 {
				continue
			}
			props, err := fp.p.splitter.Split(string(fp.src[open.end:c.off]))
			if err != nil {
				fp.recoverable(t.line, err, "invalid %s annotation", t.text)
			}
			a.props = props
			return a, nil
		}
	}
}

// annotate reads an annotation and checks it applies to one of kinds. A nil
// annotation with a nil error means the annotation was rejected.
func (fp *fileParser) annotate(prev *annotation, what string, kinds ...entity.Kind) (*annotation, error) {
	a, err := fp.readAnnotation()
	if err != nil {
		return nil, err
	}
	switch {
	case prev != nil:
		fp.recoverable(a.line, nil, "duplicate annotation %s on %s", a.macro, what)
		return prev, nil
	case !entity.Kinds(kinds...).Has(a.kind):
		fp.recoverable(a.line, nil, "%s cannot annotate a %s", a.macro, what)
		return nil, nil
	}
	return a, nil
}

func (fp *fileParser) add(parent *entity.Entity, kind entity.Kind, name token, a *annotation) *entity.Entity {
	e, err := fp.res.Tree.Add(parent, kind, name.text)
	if err != nil {
		fp.recoverable(name.line, err, "cannot declare %s %s here", kind, name.text)
		return nil
	}
	e.Line = name.line
	if a != nil {
		e.Properties = a.props
	}
	return e
}

func (fp *fileParser) parseNamespace(parent *entity.Entity) error {
	fp.next()
	var (
		names []token
		ann   *annotation
		err   error
	)
	for {
		t := fp.peek()
		switch {
		case fp.isMacro(t):
			if ann, err = fp.annotate(ann, "namespace", entity.Namespace); err != nil {
				return err
			}
			continue
		case t.tok == scanner.Ident:
			names = append(names, t)
		case t.is(':'):
		case t.is('['):
			if err := fp.skipGroup('[', ']'); err != nil {
				return err
			}
			continue
		case t.is('='):
			// Namespace alias.
			return fp.skipStatement()
		case t.is('{'):
			fp.next()
			return fp.namespaceBody(parent, names, ann)
		default:
			return fp.fatal(t.line, "unexpected %q in namespace declaration", t.text)
		}
		fp.next()
	}
}

func (fp *fileParser) namespaceBody(parent *entity.Entity, names []token, ann *annotation) error {
	scope := parent
	for i, n := range names {
		e := fp.findNamespace(scope, n.text)
		if e == nil {
			if e = fp.add(scope, entity.Namespace, n, nil); e == nil {
				return fp.skipBlockBody()
			}
		}
		if i == len(names)-1 && ann != nil {
			e.Properties = append(e.Properties, ann.props...)
		}
		scope = e
	}
	return fp.parseScope(scope, true)
}

// findNamespace returns the namespace reopened in scope, if any.
func (fp *fileParser) findNamespace(scope *entity.Entity, name string) *entity.Entity {
	if scope == nil {
		scope = fp.res.Root()
	}
	for _, c := range scope.Children {
		if c.Kind == entity.Namespace && c.Name == name {
			return c
		}
	}
	return nil
}

func (fp *fileParser) parseRecord(parent *entity.Entity) error {
	start := fp.i
	kind := entity.Class
	if fp.next().text == "struct" {
		kind = entity.Struct
	}
	var (
		ann        *annotation
		name       token
		named      bool
		afterColon bool
		err        error
	)
	for {
		t := fp.peek()
		switch {
		case fp.isMacro(t):
			if ann, err = fp.annotate(ann, kind.String(), entity.Class, entity.Struct); err != nil {
				return err
			}
			continue
		case t.is('{'):
			return fp.recordBody(parent, kind, ann, name, named)
		case t.tok == scanner.EOF, t.is(';'), t.is('='), t.is('('), t.is(')'), t.is('}'), t.is(','):
			// Forward declaration or a variable of record type.
			fp.i = start
			return fp.parseDeclaration(parent)
		case t.is('<'):
			if err := fp.skipGroup('<', '>'); err != nil {
				return err
			}
			continue
		case t.is('['):
			if err := fp.skipGroup('[', ']'); err != nil {
				return err
			}
			continue
		case isAttributeKeyword(t):
			fp.next()
			if fp.peek().is('(') {
				if err := fp.skipGroup('(', ')'); err != nil {
					return err
				}
			}
			continue
		case t.is(':'):
			if fp.peekAt(1).is(':') {
				fp.next()
			} else {
				afterColon = true
			}
		case t.tok == scanner.Ident && !afterColon && t.text != "final":
			name, named = t, true
		}
		fp.next()
	}
}

func (fp *fileParser) recordBody(parent *entity.Entity, kind entity.Kind, ann *annotation, name token, named bool) error {
	if ann == nil || !named {
		if err := fp.skipBlock(); err != nil {
			return err
		}
		return fp.skipTrailing()
	}
	e := fp.add(parent, kind, name, ann)
	if e == nil {
		if err := fp.skipBlock(); err != nil {
			return err
		}
		return fp.skipTrailing()
	}
	fp.next()
	if err := fp.parseScope(e, true); err != nil {
		return err
	}
	return fp.skipTrailing()
}

func (fp *fileParser) parseEnum(parent *entity.Entity) error {
	start := fp.i
	fp.next()
	if t := fp.peek(); t.ident("class") || t.ident("struct") {
		fp.next()
	}
	var (
		ann        *annotation
		name       token
		named      bool
		afterColon bool
		base       []token
		err        error
	)
	for {
		t := fp.peek()
		switch {
		case fp.isMacro(t):
			if ann, err = fp.annotate(ann, "enum", entity.Enum); err != nil {
				return err
			}
			continue
		case t.is('{'):
			return fp.enumBody(parent, ann, name, named, base)
		case t.tok == scanner.EOF, t.is(';'), t.is('='), t.is('('), t.is(')'), t.is('}'), t.is(','):
			fp.i = start
			return fp.parseDeclaration(parent)
		case t.is('['):
			if err := fp.skipGroup('[', ']'); err != nil {
				return err
			}
			continue
		case afterColon:
			base = append(base, t)
		case t.is(':'):
			afterColon = true
		case t.tok == scanner.Ident:
			name, named = t, true
		}
		fp.next()
	}
}

func (fp *fileParser) enumBody(parent *entity.Entity, ann *annotation, name token, named bool, base []token) error {
	var e *entity.Entity
	if ann != nil && named {
		e = fp.add(parent, entity.Enum, name, ann)
	}
	if e == nil {
		if err := fp.skipBlock(); err != nil {
			return err
		}
		return fp.skipTrailing()
	}
	e.Type = joinTokens(base)
	open := fp.next()
	var pending *annotation
	for {
		t := fp.peek()
		switch {
		case t.tok == scanner.EOF:
			return fp.fatal(open.line, "unexpected end of file in enum %s", e.Name)
		case t.is('}'):
			fp.next()
			return fp.skipTrailing()
		case t.is(','):
			fp.next()
		case fp.isMacro(t):
			a, err := fp.annotate(pending, "enum value", entity.EnumValue)
			if err != nil {
				return err
			}
			pending = a
		case t.tok == scanner.Ident:
			if err := fp.parseEnumValue(e, pending); err != nil {
				return err
			}
			pending = nil
		default:
			fp.recoverable(t.line, nil, "unexpected %q in enum %s", t.text, e.Name)
			fp.next()
		}
	}
}

func (fp *fileParser) parseEnumValue(enum *entity.Entity, ann *annotation) error {
	name := fp.next()
	var (
		first, last token
		hasValue    bool
		err         error
	)
	for {
		t := fp.peek()
		switch {
		case fp.isMacro(t):
			if ann, err = fp.annotate(ann, "enum value", entity.EnumValue); err != nil {
				return err
			}
			continue
		case t.is('['):
			if err := fp.skipGroup('[', ']'); err != nil {
				return err
			}
			continue
		case t.is('='):
			fp.next()
			for depth := 0; ; {
				c := fp.peek()
				if c.tok == scanner.EOF || (depth == 0 && (c.is(',') || c.is('}'))) {
					break
				}
				switch {
				case c.is('('):
					depth++
				case c.is(')'):
					depth--
				}
				if !hasValue {
					first = c
				}
				last, hasValue = c, true
				fp.next()
			}
		}
		break
	}
	v := fp.add(enum, entity.EnumValue, name, ann)
	if v != nil && hasValue {
		v.Value = strings.TrimSpace(string(fp.src[first.off:last.end]))
	}
	return nil
}

// parseDeclaration reads a declaration up to its terminating ';' or function
// body. Only declarations carrying a field or method annotation enter the
// tree.
func (fp *fileParser) parseDeclaration(parent *entity.Entity) error {
	var (
		plain []token
		anns  []*annotation
		depth int
	)
loop:
	for {
		t := fp.peek()
		switch {
		case t.tok == scanner.EOF:
			if depth > 0 {
				return fp.fatal(t.line, "unexpected end of file in declaration")
			}
			break loop
		case depth == 0 && t.is(';'):
			fp.next()
			break loop
		case depth == 0 && t.is('}'):
			break loop
		case depth == 0 && fp.isMacro(t):
			a, err := fp.readAnnotation()
			if err != nil {
				return err
			}
			anns = append(anns, a)
		case t.is('(') || t.is('['):
			depth++
			plain = append(plain, fp.next())
		case t.is(')') || t.is(']'):
			if depth > 0 {
				depth--
			}
			plain = append(plain, fp.next())
		case t.is('{'):
			body := depth == 0 && isFunctionBody(plain)
			if err := fp.skipBlock(); err != nil {
				return err
			}
			if body {
				break loop
			}
			plain = append(plain, t)
		default:
			plain = append(plain, fp.next())
		}
	}
	if len(anns) == 0 {
		return nil
	}
	a := anns[0]
	for _, extra := range anns[1:] {
		fp.recoverable(extra.line, nil, "duplicate annotation %s on declaration", extra.macro)
	}
	switch a.kind {
	case entity.Field:
		fp.addField(parent, a, plain)
	case entity.Method:
		fp.addMethod(parent, a, plain)
	default:
		fp.recoverable(a.line, nil, "%s cannot annotate a member declaration", a.macro)
	}
	return nil
}

func (fp *fileParser) addField(parent *entity.Entity, a *annotation, plain []token) {
	cut, angles := len(plain), 0
	for j, t := range plain {
		switch {
		case t.is('<'):
			angles++
			continue
		case t.is('>'):
			angles--
			continue
		}
		lone := t.is(':') && !(j+1 < len(plain) && plain[j+1].is(':')) && !(j > 0 && plain[j-1].is(':'))
		// Only the first declarator of "int x, y;" is annotated.
		if t.is('=') || t.is('{') || t.is('[') || lone || (t.is(',') && angles == 0) {
			cut = j
			break
		}
	}
	head := plain[:cut]
	idx := lastIdent(head)
	if idx < 0 {
		fp.recoverable(a.line, nil, "cannot find the name of the field annotated with %s", a.macro)
		return
	}
	if e := fp.add(parent, entity.Field, head[idx], a); e != nil {
		e.Type = joinTokens(dropSpecifiers(head[:idx], "mutable", "inline"))
	}
}

func (fp *fileParser) addMethod(parent *entity.Entity, a *annotation, plain []token) {
	open := -1
	for j, t := range plain {
		if t.is('(') {
			open = j
			break
		}
	}
	if open <= 0 {
		fp.recoverable(a.line, nil, "cannot find the name of the method annotated with %s", a.macro)
		return
	}
	nameStart := open - 1
	if !plain[nameStart].wordy() {
		// Operator overloads, e.g. operator==.
		for nameStart >= 0 && !plain[nameStart].ident("operator") {
			nameStart--
		}
		if nameStart < 0 {
			fp.recoverable(a.line, nil, "cannot find the name of the method annotated with %s", a.macro)
			return
		}
	}
	name := plain[nameStart]
	if nameStart < open-1 {
		var b strings.Builder
		for _, t := range plain[nameStart:open] {
			b.WriteString(t.text)
		}
		name.text = b.String()
	}
	e := fp.add(parent, entity.Method, name, a)
	if e == nil {
		return
	}
	e.Type = joinTokens(dropSpecifiers(plain[:nameStart], "virtual", "static", "inline", "explicit", "constexpr", "friend"))
	sig := plain[open:]
	for j, t := range sig {
		if t.is('=') {
			sig = sig[:j]
			break
		}
	}
	e.Value = joinTokens(sig)
}

// skipGroup skips a balanced open/close group starting at the current token.
func (fp *fileParser) skipGroup(open, close rune) error {
	start := fp.next()
	for depth := 1; depth > 0; {
		t := fp.next()
		switch {
		case t.tok == scanner.EOF:
			return fp.fatal(start.line, "unbalanced %q", open)
		case t.is(open):
			depth++
		case t.is(close):
			depth--
		}
	}
	return nil
}

// skipBlock skips the brace block starting at the current token.
func (fp *fileParser) skipBlock() error {
	return fp.skipGroup('{', '}')
}

// skipBlockBody skips to the '}' closing a block whose '{' was consumed.
func (fp *fileParser) skipBlockBody() error {
	fp.i--
	return fp.skipBlock()
}

// skipStatement skips to and past the next ';' at brace depth 0.
func (fp *fileParser) skipStatement() error {
	for {
		t := fp.peek()
		switch {
		case t.tok == scanner.EOF:
			return nil
		case t.is(';'):
			fp.next()
			return nil
		case t.is('{'):
			if err := fp.skipBlock(); err != nil {
				return err
			}
		default:
			fp.next()
		}
	}
}

// skipTrailing skips the declarators following a record or enum body, up to
// and including ';'.
func (fp *fileParser) skipTrailing() error {
	for {
		t := fp.peek()
		switch {
		case t.is(';'):
			fp.next()
			return nil
		case t.tok == scanner.Ident, t.is('*'), t.is('&'), t.is(','):
			fp.next()
		case t.is('['):
			if err := fp.skipGroup('[', ']'); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func isAccessSpecifier(t token) bool {
	return t.ident("public") || t.ident("protected") || t.ident("private")
}

func isAttributeKeyword(t token) bool {
	return t.ident("alignas") || t.ident("__declspec") || t.ident("__attribute__")
}

// isFunctionBody reports whether a '{' following plain opens a function body
// rather than a brace initializer.
func isFunctionBody(plain []token) bool {
	if len(plain) == 0 {
		return false
	}
	last := plain[len(plain)-1]
	if last.is(')') {
		return true
	}
	for _, q := range []string{"const", "override", "final", "noexcept", "volatile"} {
		if last.ident(q) {
			for _, t := range plain {
				if t.is('(') {
					return true
				}
			}
		}
	}
	return false
}

func lastIdent(toks []token) int {
	for j := len(toks) - 1; j >= 0; j-- {
		if toks[j].tok == scanner.Ident {
			return j
		}
	}
	return -1
}

func dropSpecifiers(toks []token, specifiers ...string) []token {
	out := make([]token, 0, len(toks))
next:
	for _, t := range toks {
		for _, s := range specifiers {
			if t.ident(s) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

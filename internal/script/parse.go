package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-shellwords"

	"scene-studio/internal/scene"
)

var (
	headerRE    = regexp.MustCompile(`^function\s*([A-Za-z_$][\w$]*)?\s*\(([^)]*)\)\s*\{`)
	anonRE      = regexp.MustCompile(`function\s*\(`)
	identRE     = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	callRE      = regexp.MustCompile(`^([A-Za-z_$][\w$]*)\s*\(([^)]*)\)$`)
	propKeyRE   = regexp.MustCompile(`^[a-z]+$`)
	declStartRE = regexp.MustCompile(`^function[\s(]`)
)

// Program is a compiled scene script. Its source is always a full function declaration
// with a name, so Parse(p.Source()) compiles to the same statements.
type Program struct {
	Name   string
	Params []string
	Body   string

	source string
	stmts  []statement
}

// Source returns the serialized, name-injected function declaration.
func (p *Program) Source() string { return p.source }

func (p *Program) String() string { return p.source }

// Len returns the number of statements.
func (p *Program) Len() int { return len(p.stmts) }

// Run executes the statements in order against the handles. It stops at the first failing
// statement and leaves whatever the earlier statements did in place.
func (p *Program) Run(eng *Engine, root *scene.Node, cam *scene.Camera, r scene.Renderer) error {
	if eng == nil {
		eng = NewEngine(nil, nil)
	}
	rc := &runContext{eng: eng, root: root, cam: cam, renderer: r}
	for _, st := range p.stmts {
		if err := st.exec(rc); err != nil {
			return fmt.Errorf("%w: line %d: %s: %v", ErrExec, st.line, st.verb, err)
		}
	}
	return nil
}

// MustParse is Parse for compiled-in scripts.
func MustParse(text string) *Program {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse compiles text. Text that starts with a function declaration is compiled as such,
// with CanonicalName injected when the declaration is anonymous. Anything else is treated
// as a statement sequence and wrapped in a declaration with CanonicalParams.
func Parse(text string) (*Program, error) {
	src := strings.TrimSpace(text)
	if src == "" {
		return nil, fmt.Errorf("%w: empty script", ErrSyntax)
	}
	if declStartRE.MatchString(src) {
		return parseDeclaration(src)
	}
	p := &Program{
		Name:   CanonicalName,
		Params: append([]string(nil), CanonicalParams...),
		Body:   src,
		source: fmt.Sprintf("function %s(%s) {\n%s\n}", CanonicalName, strings.Join(CanonicalParams, ", "), src),
	}
	stmts, err := compileBody(src, 1)
	if err != nil {
		return nil, err
	}
	p.stmts = stmts
	return p, nil
}

func parseDeclaration(src string) (*Program, error) {
	m := headerRE.FindStringSubmatchIndex(src)
	if m == nil {
		return nil, fmt.Errorf("%w: line 1: malformed function header", ErrSyntax)
	}
	if m[2] < 0 {
		loc := anonRE.FindStringIndex(src)
		src = src[:loc[0]] + "function " + CanonicalName + "(" + src[loc[1]:]
		m = headerRE.FindStringSubmatchIndex(src)
		if m == nil {
			return nil, fmt.Errorf("%w: line 1: malformed function header", ErrSyntax)
		}
	}
	name := src[m[2]:m[3]]
	params, err := parseParams(src[m[4]:m[5]])
	if err != nil {
		return nil, err
	}

	headerEnd := m[1]
	code := blankComments(src)
	closing := strings.LastIndex(code, "}")
	if closing < headerEnd {
		return nil, fmt.Errorf("%w: missing closing brace", ErrSyntax)
	}
	if err := checkTrailer(code[closing+1:], name); err != nil {
		return nil, err
	}
	body := src[headerEnd:closing]
	stmts, err := compileBody(body, strings.Count(src[:headerEnd], "\n"))
	if err != nil {
		return nil, err
	}
	return &Program{
		Name:   name,
		Params: params,
		Body:   strings.TrimSpace(body),
		source: src,
		stmts:  stmts,
	}, nil
}

// checkTrailer accepts what may follow the closing brace: nothing, semicolons, or a call of
// the declared function itself with at most len(CanonicalParams) arguments. The call is a
// no-op; the runtime invokes the unit.
func checkTrailer(rest, name string) error {
	rest = strings.TrimRight(strings.TrimSpace(rest), "; \t\r\n")
	if rest == "" {
		return nil
	}
	if m := callRE.FindStringSubmatch(rest); m != nil && m[1] == name {
		args := strings.TrimSpace(m[2])
		if args == "" || len(strings.Split(args, ",")) <= len(CanonicalParams) {
			return nil
		}
	}
	return fmt.Errorf("%w: unexpected text after function body: %q", ErrSyntax, clip(rest))
}

// blankComments replaces line comments with spaces so offsets into the result match src.
func blankComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if kept := stripComment(line); len(kept) < len(line) {
			lines[i] = kept + strings.Repeat(" ", len(line)-len(kept))
		}
	}
	return strings.Join(lines, "\n")
}

func parseParams(list string) ([]string, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	if len(parts) > len(CanonicalParams) {
		return nil, fmt.Errorf("%w: line 1: %d parameters declared, at most %d allowed", ErrSyntax, len(parts), len(CanonicalParams))
	}
	params := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !identRE.MatchString(p) {
			return nil, fmt.Errorf("%w: line 1: invalid parameter %q", ErrSyntax, p)
		}
		params[i] = p
	}
	return params, nil
}

// rawStatement is one statement's text and the source line it came from.
type rawStatement struct {
	line int
	text string
}

// splitStatements splits body into statements on newlines and unquoted semicolons, dropping
// comments. lineOffset is the number of source lines before the body's first line.
func splitStatements(body string, lineOffset int) []rawStatement {
	var out []rawStatement
	for i, line := range strings.Split(body, "\n") {
		line = stripComment(line)
		for _, piece := range splitUnquoted(line, ';') {
			if piece = strings.TrimSpace(piece); piece != "" {
				out = append(out, rawStatement{line: lineOffset + i + 1, text: piece})
			}
		}
	}
	return out
}

// stripComment removes // comments that are not inside quotes.
func stripComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '/' && strings.HasPrefix(line[i:], "//"):
			return line[:i]
		}
	}
	return line
}

func splitUnquoted(s string, sep rune) []string {
	var (
		out   []string
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == sep:
			out = append(out, s[start:i])
			start = i + len(string(sep))
		}
	}
	return append(out, s[start:])
}

// directive is a tokenized statement: a verb, positional arguments and key=value properties.
type directive struct {
	line  int
	verb  string
	args  []string
	props map[string]string
}

func tokenize(raw rawStatement) (directive, error) {
	words, err := shellwords.Parse(raw.text)
	if err != nil {
		return directive{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, raw.line, err)
	}
	if len(words) == 0 {
		return directive{}, fmt.Errorf("%w: line %d: empty statement", ErrSyntax, raw.line)
	}
	d := directive{line: raw.line, verb: strings.ToLower(words[0]), props: make(map[string]string)}
	for _, w := range words[1:] {
		if key, value, ok := strings.Cut(w, "="); ok && propKeyRE.MatchString(key) {
			if _, dup := d.props[key]; dup {
				return directive{}, fmt.Errorf("%w: line %d: %s: %s given twice", ErrSyntax, raw.line, d.verb, key)
			}
			d.props[key] = value
			continue
		}
		d.args = append(d.args, w)
	}
	return d, nil
}

func compileBody(body string, lineOffset int) ([]statement, error) {
	raws := splitStatements(body, lineOffset)
	stmts := make([]statement, 0, len(raws))
	for _, raw := range raws {
		d, err := tokenize(raw)
		if err != nil {
			return nil, err
		}
		st, err := compile(d)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrSyntax, d.line, d.verb, err)
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

func clip(s string) string {
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

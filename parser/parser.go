// Package parser tokenizes and parses ledger source text into the ast
// package's directive tree. Unlike a one-shot grammar library, this parser
// never aborts on the first malformed directive: each parse error becomes
// one errorfmt.Diagnostic and parsing resumes at the next line, so a single
// typo in a thousand-line ledger doesn't hide every other diagnostic behind
// it.
package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

// Parser consumes a token stream produced by Lexer and builds directives.
type Parser struct {
	source    []byte
	filename  string
	fileID    int
	tokens    []Token
	pos       int
	nextOrder func() int
	diags     []errorfmt.Diagnostic
}

// Parse lexes and parses source, returning every directive it could
// recover plus any diagnostics encountered. nextOrder is a caller-owned,
// concurrency-safe counter used to assign ast.Directive.SourceOrder
// consistently across an include-expanded set of files parsed in parallel;
// pass the same function to every file in one top-level load.
func Parse(source []byte, filename string, fileID int, nextOrder func() int) ([]ast.Directive, []errorfmt.Diagnostic) {
	lx := NewLexer(source, filename)
	tokens, err := lx.ScanAll()
	if err != nil {
		span := ast.SourceSpan{FileID: fileID}
		if e, ok := err.(*InvalidUTF8Error); ok {
			span.Line, span.Column = e.Line, e.Column
		}
		return nil, []errorfmt.Diagnostic{errorfmt.New(errorfmt.KindSyntaxError, filename, span, "%s", err)}
	}

	p := &Parser{source: source, filename: filename, fileID: fileID, tokens: tokens, nextOrder: nextOrder}
	return p.parseFile()
}

func (p *Parser) parseFile() ([]ast.Directive, []errorfmt.Diagnostic) {
	var directives []ast.Directive

	for !p.isAtEnd() {
		var d ast.Directive
		var ok bool

		switch p.peek().Type {
		case NEWLINE, COMMENT:
			p.advance()
			continue
		case EOF:
			return directives, p.diags
		case OPTION:
			d, ok = p.parseOption()
		case INCLUDE:
			d, ok = p.parseInclude()
		case PLUGIN:
			d, ok = p.parsePlugin()
		default:
			d, ok = p.parseDirective()
		}

		if ok && d != nil {
			directives = append(directives, d)
		}
		if !ok {
			p.recoverToNextLine()
		}
	}
	return directives, p.diags
}

// recoverToNextLine skips the rest of the offending line, up to its
// NEWLINE, so the next loop iteration resumes parsing at the following
// line, costing one directive, not the rest of the file.
func (p *Parser) recoverToNextLine() {
	for !p.isAtEnd() && !p.check(NEWLINE) {
		p.advance()
	}
}

func (p *Parser) startBase(date ast.Date, startTok Token) ast.Base {
	return ast.Base{
		Date:     date,
		Position: ast.Position{FileID: p.fileID, Offset: startTok.Start, Line: startTok.Line, Column: startTok.Column},
		Span:     ast.SourceSpan{FileID: p.fileID, ByteStart: startTok.Start, Line: startTok.Line, Column: startTok.Column},
		Order:    p.nextOrder(),
	}
}

func (p *Parser) parseDirective() (ast.Directive, bool) {
	startTok := p.peek()
	if startTok.Type != DATE {
		p.errorf(startTok, errorfmt.KindSyntaxError, "expected date, got %s", startTok.Type)
		return nil, false
	}
	date, err := ast.ParseDate(startTok.Text(p.source))
	if err != nil {
		p.errorf(startTok, errorfmt.KindSyntaxError, "%s", err)
		return nil, false
	}
	p.advance()
	b := p.startBase(date, startTok)

	kw := p.peek()
	switch kw.Type {
	case OPEN:
		return p.parseOpen(b)
	case CLOSE:
		return p.parseClose(b)
	case COMMODITY:
		return p.parseCommodity(b)
	case PRICE:
		return p.parsePrice(b)
	case BALANCE:
		return p.parseBalance(b)
	case NOTE:
		return p.parseNote(b)
	case DOCUMENT:
		return p.parseDocument(b)
	case EVENT:
		return p.parseEvent(b)
	case CUSTOM:
		return p.parseCustom(b)
	case TXN, ASTERISK, EXCLAIM, STRING:
		return p.parseTransaction(b)
	default:
		p.errorf(kw, errorfmt.KindSyntaxError, "unexpected token %s after date", kw.Type)
		return nil, false
	}
}

func (p *Parser) parseMetadataBlock(indentCol int) ast.Metadata {
	var md ast.Metadata
	for {
		tok := p.peek()
		if tok.Type == NEWLINE || tok.Type == COMMENT {
			p.advance()
			continue
		}
		if tok.Column <= indentCol || tok.Type == EOF {
			break
		}
		switch tok.Type {
		case TAG:
			md.Tags = append(md.Tags, tok.Text(p.source)[1:])
			p.advance()
		case LINK:
			md.Links = append(md.Links, tok.Text(p.source)[1:])
			p.advance()
		case IDENT:
			if p.peekAt(1).Type == COLON {
				key := tok.Text(p.source)
				p.advance()
				p.advance()
				val, ok := p.parseMetadataValue()
				if !ok {
					return md
				}
				md.Pairs = append(md.Pairs, ast.MetadataPair{Key: key, Value: val})
			} else {
				return md
			}
		default:
			return md
		}
	}
	return md
}

func (p *Parser) parseMetadataValue() (ast.MetadataValue, bool) {
	tok := p.peek()
	switch tok.Type {
	case STRING:
		s, _ := p.parseString()
		return ast.MetadataValue{Kind: ast.MetaString, Str: s}, true
	case NUMBER:
		n, ok := p.parseNumber()
		if !ok {
			return ast.MetadataValue{}, false
		}
		amt := ast.Amount{Number: n}
		if p.check(IDENT) {
			amt.Commodity, _ = p.parseIdent()
		}
		return ast.MetadataValue{Kind: ast.MetaNumber, Number: amt}, true
	case ACCOUNT:
		acct, _ := p.parseAccount()
		return ast.MetadataValue{Kind: ast.MetaAccount, Account: acct}, true
	case TAG:
		p.advance()
		return ast.MetadataValue{Kind: ast.MetaTag, Str: tok.Text(p.source)[1:]}, true
	case IDENT:
		text := tok.Text(p.source)
		p.advance()
		if text == "TRUE" || text == "FALSE" {
			return ast.MetadataValue{Kind: ast.MetaBool, Bool: text == "TRUE"}, true
		}
		return ast.MetadataValue{Kind: ast.MetaString, Str: text}, true
	default:
		p.errorf(tok, errorfmt.KindSyntaxError, "expected metadata value, got %s", tok.Type)
		return ast.MetadataValue{}, false
	}
}

func (p *Parser) errorf(tok Token, kind errorfmt.Kind, format string, args ...any) {
	span := ast.SourceSpan{FileID: p.fileID, ByteStart: tok.Start, ByteEnd: tok.End, Line: tok.Line, Column: tok.Column}
	p.diags = append(p.diags, errorfmt.New(kind, p.filename, span, format, args...))
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t TokenType) bool { return p.peek().Type == t }

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t TokenType, msg string) (Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	p.errorf(p.peek(), errorfmt.KindSyntaxError, "%s (got %s)", msg, p.peek().Type)
	return Token{}, false
}

func (p *Parser) isAtEnd() bool { return p.check(EOF) }

func (p *Parser) parseAccount() (ast.Account, bool) {
	tok, ok := p.consume(ACCOUNT, "expected account")
	if !ok {
		return "", false
	}
	acct := ast.Account(tok.Text(p.source))
	if err := acct.Validate(); err != nil {
		p.errorf(tok, errorfmt.KindSyntaxError, "%s", err)
		return acct, false
	}
	return acct, true
}

func (p *Parser) parseIdent() (string, bool) {
	tok, ok := p.consume(IDENT, "expected identifier")
	if !ok {
		return "", false
	}
	return tok.Text(p.source), true
}

func (p *Parser) parseString() (string, bool) {
	tok, ok := p.consume(STRING, "expected string")
	if !ok {
		return "", false
	}
	return unquote(tok.Text(p.source)), true
}

// unquote decodes a quoted ledger string literal, applying the JSON-style
// escapes spec §4.1 "Strings" lists: \", \\, \/, \b, \f, \n, \r, \t,
// \uXXXX, and \u{XXXX}. It scans left to right and consumes each escape
// once, so an escaped backslash followed by a literal letter (`\\n`, which
// per JSON rules decodes to a backslash plus the letter n) can never be
// mistaken for the two-character escape `\n`.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			b.WriteByte(ch)
			continue
		}
		next := s[i+1]
		switch next {
		case '"':
			b.WriteByte('"')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		case '/':
			b.WriteByte('/')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'u':
			if r, consumed, ok := unquoteUnicodeEscape(s[i+2:]); ok {
				b.WriteRune(r)
				i += 1 + consumed
			} else {
				b.WriteByte(ch)
			}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// unquoteUnicodeEscape decodes the payload following `\u`, in either the
// fixed-width `XXXX` form or the braced `{XXXX}` form, returning the
// decoded rune and how many bytes of rest were consumed.
func unquoteUnicodeEscape(rest string) (rune, int, bool) {
	if strings.HasPrefix(rest, "{") {
		end := strings.IndexByte(rest, '}')
		if end < 1 {
			return 0, 0, false
		}
		n, err := strconv.ParseUint(rest[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return 0, 0, false
		}
		return rune(n), end + 1, true
	}
	if len(rest) < 4 {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(rest[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(n), 4, true
}

func (p *Parser) parseNumber() (decimal.Decimal, bool) {
	tok := p.peek()
	if tok.Type != NUMBER {
		p.errorf(tok, errorfmt.KindSyntaxError, "expected number, got %s", tok.Type)
		return decimal.Decimal{}, false
	}
	p.advance()
	text := strings.ReplaceAll(tok.Text(p.source), ",", "")
	n, err := decimal.NewFromString(text)
	if err != nil {
		p.errorf(tok, errorfmt.KindSyntaxError, "invalid number %q: %s", text, err)
		return decimal.Decimal{}, false
	}
	return n, true
}

func (p *Parser) parseAmount() (ast.Amount, bool) {
	n, ok := p.parseNumber()
	if !ok {
		return ast.Amount{}, false
	}
	commodity, ok := p.parseIdent()
	if !ok {
		return ast.Amount{}, false
	}
	return ast.Amount{Number: n, Commodity: commodity}, true
}

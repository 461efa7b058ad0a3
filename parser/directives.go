package parser

import (
	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

// parseOpen parses: DATE open ACCOUNT [CCY[,CCY]*] ["BOOKING_METHOD"]
func (p *Parser) parseOpen(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'open'
	account, ok := p.parseAccount()
	if !ok {
		return nil, false
	}
	open := ast.Open{Base: b, Account: account}
	if p.check(IDENT) {
		ccy, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		open.Commodities = append(open.Commodities, ccy)
		for p.match(COMMA) {
			ccy, ok := p.parseIdent()
			if !ok {
				return nil, false
			}
			open.Commodities = append(open.Commodities, ccy)
		}
	}
	if p.check(STRING) {
		method, ok := p.parseString()
		if !ok {
			return nil, false
		}
		open.BookingMethod = method
	}
	open.Metadata = p.finishLine(&open.Base)
	return open, true
}

// parseClose parses: DATE close ACCOUNT
func (p *Parser) parseClose(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'close'
	account, ok := p.parseAccount()
	if !ok {
		return nil, false
	}
	c := ast.Close{Base: b, Account: account}
	c.Metadata = p.finishLine(&c.Base)
	return c, true
}

// parseCommodity parses: DATE commodity CCY
func (p *Parser) parseCommodity(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'commodity'
	symbol, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	c := ast.Commodity{Base: b, Symbol: symbol}
	c.Metadata = p.finishLine(&c.Base)
	return c, true
}

// parsePrice parses: DATE price CCY AMOUNT
func (p *Parser) parsePrice(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'price'
	commodity, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	amount, ok := p.parseAmount()
	if !ok {
		return nil, false
	}
	pr := ast.Price{Base: b, Commodity: commodity, Amount: amount}
	pr.Metadata = p.finishLine(&pr.Base)
	return pr, true
}

// parseBalance parses: DATE balance ACCOUNT AMOUNT ["with" ["pad"]] [ACCOUNT]
// the trailing optional pad account folds the teacher's separate Pad
// directive into Balance, matching the spec's
// balance(account, amount, [pad_account]) signature.
func (p *Parser) parseBalance(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'balance'
	account, ok := p.parseAccount()
	if !ok {
		return nil, false
	}
	amount, ok := p.parseAmount()
	if !ok {
		return nil, false
	}
	bal := ast.Balance{Base: b, Account: account, Amount: amount}
	if p.check(IDENT) && p.peek().Text(p.source) == "with" {
		p.advance() // 'with'
		if p.check(IDENT) && p.peek().Text(p.source) == "pad" {
			p.advance() // 'pad'
		}
	}
	if p.check(ACCOUNT) {
		padAccount, ok := p.parseAccount()
		if !ok {
			return nil, false
		}
		bal.PadAccount = padAccount
	}
	bal.Metadata = p.finishLine(&bal.Base)
	return bal, true
}

// parseNote parses: DATE note ACCOUNT "comment"
func (p *Parser) parseNote(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'note'
	account, ok := p.parseAccount()
	if !ok {
		return nil, false
	}
	comment, ok := p.parseString()
	if !ok {
		return nil, false
	}
	n := ast.Note{Base: b, Account: account, Comment: comment}
	n.Metadata = p.finishLine(&n.Base)
	return n, true
}

// parseDocument parses: DATE document ACCOUNT "path"
func (p *Parser) parseDocument(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'document'
	account, ok := p.parseAccount()
	if !ok {
		return nil, false
	}
	path, ok := p.parseString()
	if !ok {
		return nil, false
	}
	d := ast.Document{Base: b, Account: account, Path: path}
	d.Metadata = p.finishLine(&d.Base)
	return d, true
}

// parseEvent parses: DATE event "name" "value"
func (p *Parser) parseEvent(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'event'
	name, ok := p.parseString()
	if !ok {
		return nil, false
	}
	value, ok := p.parseString()
	if !ok {
		return nil, false
	}
	e := ast.Event{Base: b, Name: name, Value: value}
	e.Metadata = p.finishLine(&e.Base)
	return e, true
}

// parseCustom parses: DATE custom "type" VALUE*
func (p *Parser) parseCustom(b ast.Base) (ast.Directive, bool) {
	p.advance() // 'custom'
	typ, ok := p.parseString()
	if !ok {
		return nil, false
	}
	c := ast.Custom{Base: b, Type: typ}
	for !p.atLineEnd() {
		v, ok := p.parseMetadataValue()
		if !ok {
			return nil, false
		}
		c.Values = append(c.Values, v)
	}
	c.Metadata = p.finishLine(&c.Base)
	return c, true
}

// parseOption parses: option "key" "value" — column-zero only, no date.
func (p *Parser) parseOption() (ast.Directive, bool) {
	startTok := p.peek()
	p.advance() // 'option'
	key, ok := p.parseString()
	if !ok {
		return nil, false
	}
	value, ok := p.parseString()
	if !ok {
		return nil, false
	}
	b := p.startBase(ast.Date{}, startTok)
	o := ast.Option{Base: b, Key: key, Value: value}
	o.Metadata = p.finishLine(&o.Base)
	return o, true
}

// parseInclude parses: include "glob-pattern" — column-zero only, no date.
func (p *Parser) parseInclude() (ast.Directive, bool) {
	startTok := p.peek()
	p.advance() // 'include'
	pattern, ok := p.parseString()
	if !ok {
		return nil, false
	}
	b := p.startBase(ast.Date{}, startTok)
	inc := ast.Include{Base: b, Pattern: pattern}
	inc.Metadata = p.finishLine(&inc.Base)
	return inc, true
}

// parsePlugin parses: plugin "name" ["config"] — column-zero only, no date.
func (p *Parser) parsePlugin() (ast.Directive, bool) {
	startTok := p.peek()
	p.advance() // 'plugin'
	name, ok := p.parseString()
	if !ok {
		return nil, false
	}
	b := p.startBase(ast.Date{}, startTok)
	pl := ast.Plugin{Base: b, Name: name}
	if p.check(STRING) {
		cfg, ok := p.parseString()
		if !ok {
			return nil, false
		}
		pl.Config = cfg
	}
	pl.Metadata = p.finishLine(&pl.Base)
	return pl, true
}

func (p *Parser) atLineEnd() bool {
	t := p.peek().Type
	return t == NEWLINE || t == COMMENT || t == EOF
}

// finishLine consumes trailing inline tags/links on the directive's own
// line, then attaches any indented metadata/tag/link block that follows,
// and returns the combined Metadata.
func (p *Parser) finishLine(b *ast.Base) ast.Metadata {
	var md ast.Metadata
	for {
		tok := p.peek()
		switch tok.Type {
		case TAG:
			md.Tags = append(md.Tags, tok.Text(p.source)[1:])
			p.advance()
			continue
		case LINK:
			md.Links = append(md.Links, tok.Text(p.source)[1:])
			p.advance()
			continue
		}
		break
	}
	endTok := p.peek()
	b.Span.ByteEnd = endTok.Start
	if !p.atLineEnd() {
		p.errorf(p.peek(), errorfmt.KindSyntaxError, "unexpected trailing token %s", p.peek().Type)
	}
	if p.check(NEWLINE) {
		p.advance()
	}
	indentCol := b.Position.Column
	more := p.parseMetadataBlock(indentCol)
	md.Pairs = append(md.Pairs, more.Pairs...)
	md.Tags = append(md.Tags, more.Tags...)
	md.Links = append(md.Links, more.Links...)
	return md
}

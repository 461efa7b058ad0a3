package parser

import (
	"github.com/ledgerfile/ledgerfile/ast"
	"github.com/ledgerfile/ledgerfile/errorfmt"
)

// parseTransaction parses a transaction header line:
//
//	DATE ['txn'|'*'|'!'] ["PAYEE"] "NARRATION" [#tag]* [^link]*
//
// followed by an indented block of postings and metadata. The column of
// the first posting line establishes the "indent cookie": every further
// posting in the block must start at that same column, and a line back at
// or before the header's own column ends the transaction.
func (p *Parser) parseTransaction(b ast.Base) (ast.Directive, bool) {
	txn := ast.Transaction{Base: b, Flag: '*'}

	switch p.peek().Type {
	case TXN:
		p.advance()
	case ASTERISK:
		txn.Flag = '*'
		p.advance()
	case EXCLAIM:
		txn.Flag = '!'
		p.advance()
	}

	if p.check(STRING) {
		first, ok := p.parseString()
		if !ok {
			return nil, false
		}
		if p.check(STRING) {
			second, ok := p.parseString()
			if !ok {
				return nil, false
			}
			txn.Payee = first
			txn.Narration = second
		} else {
			txn.Narration = first
		}
	}

	for {
		tok := p.peek()
		if tok.Type == TAG {
			txn.Metadata.Tags = append(txn.Metadata.Tags, tok.Text(p.source)[1:])
			p.advance()
			continue
		}
		if tok.Type == LINK {
			txn.Metadata.Links = append(txn.Metadata.Links, tok.Text(p.source)[1:])
			p.advance()
			continue
		}
		break
	}

	headerCol := b.Position.Column
	if !p.atLineEnd() {
		p.errorf(p.peek(), errorfmt.KindSyntaxError, "unexpected trailing token %s in transaction header", p.peek().Type)
		return nil, false
	}
	if p.check(NEWLINE) {
		p.advance()
	}

	indentCookie := -1
	for {
		p.skipBlankLines()
		tok := p.peek()
		if tok.Type == EOF {
			break
		}
		if tok.Column <= headerCol {
			break
		}
		if indentCookie == -1 {
			indentCookie = tok.Column
		} else if tok.Column != indentCookie {
			// A line indented differently than the established cookie
			// ends the block; it will be reparsed as its own directive
			// or reported as a syntax error by the outer loop.
			break
		}

		switch tok.Type {
		case ACCOUNT:
			posting, ok := p.parsePosting()
			if !ok {
				return nil, false
			}
			txn.Postings = append(txn.Postings, posting)
		case IDENT:
			if p.peekAt(1).Type == COLON {
				md := p.parseMetadataBlock(headerCol)
				txn.Metadata.Pairs = append(txn.Metadata.Pairs, md.Pairs...)
				txn.Metadata.Tags = append(txn.Metadata.Tags, md.Tags...)
				txn.Metadata.Links = append(txn.Metadata.Links, md.Links...)
				continue
			}
			p.errorf(tok, errorfmt.KindSyntaxError, "expected posting account or metadata key, got %s", tok.Type)
			return nil, false
		default:
			p.errorf(tok, errorfmt.KindSyntaxError, "expected posting, got %s", tok.Type)
			return nil, false
		}
	}

	if len(txn.Postings) == 0 {
		p.errorf(p.tokens[p.startIndexFor(b)], errorfmt.KindSyntaxError, "transaction has no postings")
	}
	return txn, true
}

// startIndexFor returns the index of the token just before the current
// position, clamped to the token slice, for anchoring the no-postings
// error; it does not look up the header token from b.
func (p *Parser) startIndexFor(b ast.Base) int {
	idx := p.pos - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.tokens) {
		idx = len(p.tokens) - 1
	}
	return idx
}

func (p *Parser) skipBlankLines() {
	for p.peek().Type == NEWLINE || p.peek().Type == COMMENT {
		p.advance()
	}
}

// parsePosting parses one posting line:
//
//	ACCOUNT [[-]AMOUNT CCY] [{COST}] [@ PRICE | @@ TOTAL_PRICE]
func (p *Parser) parsePosting() (ast.Posting, bool) {
	startTok := p.peek()
	account, ok := p.parseAccount()
	if !ok {
		return ast.Posting{}, false
	}
	posting := ast.Posting{Account: account}

	if p.check(NUMBER) {
		amt, ok := p.parseAmount()
		if !ok {
			return ast.Posting{}, false
		}
		posting.Amount = &amt
	}

	if p.check(LBRACE) || p.check(LDBRACE) {
		cost, ok := p.parseCost()
		if !ok {
			return ast.Posting{}, false
		}
		posting.Cost = &cost
	}

	if p.check(AT) || p.check(ATAT) {
		price, ok := p.parsePriceAnnotation()
		if !ok {
			return ast.Posting{}, false
		}
		posting.Price = &price
	}

	endTok := p.peek()
	posting.Span = ast.SourceSpan{
		FileID: p.fileID, ByteStart: startTok.Start, ByteEnd: endTok.Start,
		Line: startTok.Line, Column: startTok.Column,
	}

	for {
		tok := p.peek()
		if tok.Type == TAG {
			posting.Metadata.Tags = append(posting.Metadata.Tags, tok.Text(p.source)[1:])
			p.advance()
			continue
		}
		if tok.Type == LINK {
			posting.Metadata.Links = append(posting.Metadata.Links, tok.Text(p.source)[1:])
			p.advance()
			continue
		}
		break
	}
	if !p.atLineEnd() {
		p.errorf(p.peek(), errorfmt.KindSyntaxError, "unexpected trailing token %s in posting", p.peek().Type)
		return ast.Posting{}, false
	}
	if p.check(NEWLINE) {
		p.advance()
	}
	md := p.parseMetadataBlock(startTok.Column)
	posting.Metadata.Pairs = append(posting.Metadata.Pairs, md.Pairs...)
	posting.Metadata.Tags = append(posting.Metadata.Tags, md.Tags...)
	posting.Metadata.Links = append(posting.Metadata.Links, md.Links...)
	return posting, true
}

// parseCost parses `{AMOUNT CCY}` or `{{AMOUNT CCY}}`, with an optional
// trailing `, DATE` or `, "label"`.
func (p *Parser) parseCost() (ast.Cost, bool) {
	kind := ast.CostPerUnit
	var closeType TokenType
	if p.check(LDBRACE) {
		kind = ast.CostTotal
		closeType = RDBRACE
		p.advance()
	} else {
		closeType = RBRACE
		p.advance()
	}
	amount, ok := p.parseAmount()
	if !ok {
		return ast.Cost{}, false
	}
	cost := ast.Cost{Kind: kind, Amount: amount}
	for p.match(COMMA) {
		if p.check(DATE) {
			tok := p.advance()
			d, err := ast.ParseDate(tok.Text(p.source))
			if err != nil {
				p.errorf(tok, errorfmt.KindSyntaxError, "%s", err)
				return ast.Cost{}, false
			}
			cost.Date = &d
		} else if p.check(STRING) {
			label, ok := p.parseString()
			if !ok {
				return ast.Cost{}, false
			}
			cost.Label = label
		}
	}
	if _, ok := p.consume(closeType, "expected closing brace"); !ok {
		return ast.Cost{}, false
	}
	return cost, true
}

// parsePriceAnnotation parses `@ AMOUNT CCY` (per-unit) or `@@ AMOUNT CCY`
// (total).
func (p *Parser) parsePriceAnnotation() (ast.PriceAnnotation, bool) {
	kind := ast.CostPerUnit
	if p.check(ATAT) {
		kind = ast.CostTotal
	}
	p.advance()
	amount, ok := p.parseAmount()
	if !ok {
		return ast.PriceAnnotation{}, false
	}
	return ast.PriceAnnotation{Kind: kind, Amount: amount}, true
}

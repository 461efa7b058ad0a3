package mutation

import (
	"fmt"
	"strings"

	"github.com/ledgerfile/ledgerfile/ast"
)

// RenderTransaction exposes renderTransaction for callers outside this
// package (the export command's normalized dump, spec §6's `export`).
func RenderTransaction(t ast.Transaction) string { return renderTransaction(t) }

// RenderBalance exposes renderBalanceDirective for callers outside this
// package.
func RenderBalance(b ast.Balance) string { return renderBalanceDirective(b) }

// RenderDocument exposes renderDocumentDirective for callers outside this
// package.
func RenderDocument(d ast.Document) string { return renderDocumentDirective(d) }

// renderTransaction formats t in the canonical two-space posting indent the
// spec requires of anything the mutation service writes (spec §6: the
// service never reprints existing source, it only appends new, canonically
// formatted text — unlike the teacher's round-trip-preserving `formatter`
// package, which this module deliberately does not reuse).
func renderTransaction(t ast.Transaction) string {
	var b strings.Builder

	flag := t.Flag
	if flag == 0 {
		flag = '*'
	}
	b.WriteString(t.Date.String())
	b.WriteByte(' ')
	b.WriteByte(flag)
	if t.Payee != "" {
		fmt.Fprintf(&b, " %q", t.Payee)
	}
	if t.Narration != "" {
		fmt.Fprintf(&b, " %q", t.Narration)
	}
	for _, tag := range t.Metadata.Tags {
		fmt.Fprintf(&b, " #%s", tag)
	}
	for _, link := range t.Metadata.Links {
		fmt.Fprintf(&b, " ^%s", link)
	}
	b.WriteByte('\n')

	for _, p := range t.Postings {
		b.WriteString("  ")
		b.WriteString(string(p.Account))
		if p.Amount != nil {
			b.WriteByte(' ')
			b.WriteString(p.Amount.Number.String())
			b.WriteByte(' ')
			b.WriteString(p.Amount.Commodity)
		}
		if p.Cost != nil {
			open, close := "{", "}"
			if p.Cost.Kind == ast.CostTotal {
				open, close = "{{", "}}"
			}
			fmt.Fprintf(&b, " %s%s %s", open, p.Cost.Amount.Number.String(), p.Cost.Amount.Commodity)
			if p.Cost.Label != "" {
				fmt.Fprintf(&b, ", %q", p.Cost.Label)
			}
			b.WriteString(close)
		}
		if p.Price != nil {
			at := "@"
			if p.Price.Kind == ast.CostTotal {
				at = "@@"
			}
			fmt.Fprintf(&b, " %s %s %s", at, p.Price.Amount.Number.String(), p.Price.Amount.Commodity)
		}
		b.WriteByte('\n')
		for _, pair := range p.Metadata.Pairs {
			fmt.Fprintf(&b, "    %s: %s\n", pair.Key, renderMetaValue(pair.Value))
		}
	}

	for _, pair := range t.Metadata.Pairs {
		fmt.Fprintf(&b, "  %s: %s\n", pair.Key, renderMetaValue(pair.Value))
	}

	return b.String()
}

func renderMetaValue(v ast.MetadataValue) string {
	switch v.Kind {
	case ast.MetaString:
		return fmt.Sprintf("%q", v.Str)
	case ast.MetaNumber:
		return v.Number.String()
	case ast.MetaAccount:
		return string(v.Account)
	case ast.MetaBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.Str
	}
}

// renderDocumentDirective formats a standalone document directive.
func renderDocumentDirective(d ast.Document) string {
	return fmt.Sprintf("%s document %s %q\n", d.Date.String(), d.Account, d.Path)
}

// renderBalanceDirective formats a balance directive, with the optional
// pad account folded in per spec's balance(account, amount, [pad_account]).
func renderBalanceDirective(b ast.Balance) string {
	if b.PadAccount == "" {
		return fmt.Sprintf("%s balance %s %s %s\n", b.Date.String(), b.Account, b.Amount.Number.String(), b.Amount.Commodity)
	}
	return fmt.Sprintf("%s balance %s %s %s with pad %s\n",
		b.Date.String(), b.Account, b.Amount.Number.String(), b.Amount.Commodity, b.PadAccount)
}

package parser

// TokenType classifies a lexed token.
type TokenType uint8

const (
	EOF TokenType = iota
	ILLEGAL

	TXN
	BALANCE
	OPEN
	CLOSE
	COMMODITY
	NOTE
	DOCUMENT
	PRICE
	EVENT
	CUSTOM
	OPTION
	INCLUDE
	PLUGIN

	DATE
	ACCOUNT
	STRING
	NUMBER
	IDENT

	TAG
	LINK

	ASTERISK // *
	EXCLAIM  // !
	COLON    // :
	COMMA    // ,
	AT       // @
	ATAT     // @@
	LBRACE   // {
	RBRACE   // }
	LDBRACE  // {{
	RDBRACE  // }}

	NEWLINE
	COMMENT
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", ILLEGAL: "ILLEGAL",
	TXN: "txn", BALANCE: "balance", OPEN: "open", CLOSE: "close",
	COMMODITY: "commodity", NOTE: "note", DOCUMENT: "document", PRICE: "price",
	EVENT: "event", CUSTOM: "custom", OPTION: "option", INCLUDE: "include",
	PLUGIN: "plugin",
	DATE:   "DATE", ACCOUNT: "ACCOUNT", STRING: "STRING", NUMBER: "NUMBER", IDENT: "IDENT",
	TAG: "TAG", LINK: "LINK",
	ASTERISK: "*", EXCLAIM: "!", COLON: ":", COMMA: ",", AT: "@", ATAT: "@@",
	LBRACE: "{", RBRACE: "}", LDBRACE: "{{", RDBRACE: "}}",
	NEWLINE: "NEWLINE", COMMENT: "COMMENT",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"txn": TXN, "balance": BALANCE, "open": OPEN, "close": CLOSE,
	"commodity": COMMODITY, "note": NOTE, "document": DOCUMENT, "price": PRICE,
	"event": EVENT, "custom": CUSTOM, "option": OPTION, "include": INCLUDE,
	"plugin": PLUGIN,
}

// Token is a lexed token stored as byte offsets into the source buffer
// rather than as a materialized string, so scanning a large ledger file
// performs no per-token allocation.
type Token struct {
	Type   TokenType
	Start  int
	End    int
	Line   int
	Column int
}

// Text materializes the token's source text. Only called when a token's
// text is actually needed (identifiers, strings, numbers).
func (t Token) Text(source []byte) string {
	if t.Start < 0 || t.End > len(source) || t.Start > t.End {
		return ""
	}
	return string(source[t.Start:t.End])
}

func (t Token) Len() int { return t.End - t.Start }

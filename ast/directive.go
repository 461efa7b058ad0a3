package ast

// Kind identifies a directive's concrete variant, used by the evaluator to
// dispatch to the right handler without a type switch at every call site.
type Kind string

const (
	KindOpen        Kind = "open"
	KindClose       Kind = "close"
	KindCommodity   Kind = "commodity"
	KindPrice       Kind = "price"
	KindBalance     Kind = "balance"
	KindNote        Kind = "note"
	KindDocument    Kind = "document"
	KindEvent       Kind = "event"
	KindCustom      Kind = "custom"
	KindOption      Kind = "option"
	KindInclude     Kind = "include"
	KindPlugin      Kind = "plugin"
	KindTransaction Kind = "transaction"
)

// Directive is the common interface satisfied by every grammar production
// that stands alone at column zero (or, for transactions, heads an indented
// block). The evaluator sorts and replays directives purely through this
// interface.
type Directive interface {
	Kind() Kind
	GetDate() Date
	GetPosition() Position
	GetSpan() SourceSpan
	GetMetadata() Metadata
	// SourceOrder is the directive's position within the flattened,
	// include-expanded file sequence, used as the sort tie-break.
	SourceOrder() int
}

// Base is embedded by every directive variant to provide the common
// interface fields without repeating them.
type Base struct {
	Date     Date
	Position Position
	Span     SourceSpan
	Metadata Metadata
	Order    int
}

func (b Base) GetDate() Date             { return b.Date }
func (b Base) GetPosition() Position     { return b.Position }
func (b Base) GetSpan() SourceSpan       { return b.Span }
func (b Base) GetMetadata() Metadata     { return b.Metadata }
func (b Base) SourceOrder() int          { return b.Order }

// Open declares an account's opening date and, optionally, the commodities
// it is restricted to.
type Open struct {
	Base
	Account     Account
	Commodities []string
	BookingMethod string
}

func (Open) Kind() Kind { return KindOpen }

// Close declares an account's closing date; postings after this date are a
// validation error.
type Close struct {
	Base
	Account Account
}

func (Close) Kind() Kind { return KindClose }

// Commodity declares a commodity symbol, optionally carrying display
// metadata (e.g. precision).
type Commodity struct {
	Base
	Symbol string
}

func (Commodity) Kind() Kind { return KindCommodity }

// Price records a point-in-time exchange rate between two commodities.
type Price struct {
	Base
	Commodity string
	Amount    Amount
}

func (Price) Kind() Kind { return KindPrice }

// Balance asserts an account's running balance in a commodity as of the
// directive's date. PadAccount, when non-empty, names the account that
// should absorb the difference via a synthetic transaction inserted just
// before this assertion — this folds the teacher's separate Pad directive
// into Balance's own optional field, matching spec §3's
// `balance(account, amount, [pad_account])` signature.
type Balance struct {
	Base
	Account    Account
	Amount     Amount
	PadAccount Account
}

func (Balance) Kind() Kind { return KindBalance }

// Note attaches a free-text annotation to an account on a given date.
type Note struct {
	Base
	Account Account
	Comment string
}

func (Note) Kind() Kind { return KindNote }

// Document links an external file to an account on a given date.
type Document struct {
	Base
	Account Account
	Path    string
}

func (Document) Kind() Kind { return KindDocument }

// Event records a named state change (e.g. "location") effective on a date.
type Event struct {
	Base
	Name  string
	Value string
}

func (Event) Kind() Kind { return KindEvent }

// Custom carries an application-defined directive: a type tag plus an
// ordered list of untyped values, passed through without interpretation by
// the evaluator beyond recording it.
type Custom struct {
	Base
	Type   string
	Values []MetadataValue
}

func (Custom) Kind() Kind { return KindCustom }

// Option sets a file-scoped key/value pair (e.g. "operating_currency").
type Option struct {
	Base
	Key   string
	Value string
}

func (Option) Kind() Kind { return KindOption }

// Include names a glob pattern, resolved relative to its containing file's
// directory, whose matches are spliced into the directive stream in place.
type Include struct {
	Base
	Pattern string
}

func (Include) Kind() Kind { return KindInclude }

// Plugin names a processing plugin to load; recorded but not executed,
// matching spec's scope (plugin execution is a Non-goal).
type Plugin struct {
	Base
	Name   string
	Config string
}

func (Plugin) Kind() Kind { return KindPlugin }

// Posting is one leg of a Transaction: an account plus an optional amount,
// cost, and price. A posting with no Amount is elided and its value is
// inferred by the evaluator from the other postings in the same
// transaction (spec §4.4.1).
type Posting struct {
	Account  Account
	Amount   *Amount
	Cost     *Cost
	Price    *PriceAnnotation
	Flag     byte // '*', '!', or 0
	Metadata Metadata
	Span     SourceSpan
}

// Transaction is a dated group of postings that must balance to zero per
// commodity (after cost/price conversion), plus the narration/payee/flag
// header fields.
type Transaction struct {
	Base
	Flag     byte // '*' cleared, '!' pending
	Payee    string
	Narration string
	Postings []Posting
}

func (Transaction) Kind() Kind { return KindTransaction }

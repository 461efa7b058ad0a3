package server

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ledgerfile/ledgerfile/ast"
)

// TransactionRequest is the JSON body for POST /api/transactions.
type TransactionRequest struct {
	Date      string            `json:"date"`
	Payee     string            `json:"payee"`
	Narration string            `json:"narration"`
	Postings  []PostingRequest  `json:"postings"`
}

type PostingRequest struct {
	Account   string           `json:"account"`
	Amount    *decimal.Decimal `json:"amount"`
	Commodity string           `json:"commodity"`
}

// handlePostTransaction appends a transaction via the mutation service,
// per spec §4.6's append_transaction. Grounded on the teacher's
// web.handlePutSource request/validate/respond shape, generalized from a
// whole-file replace to a single-transaction append.
func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	date, err := ast.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	if len(req.Postings) < 2 {
		http.Error(w, "a transaction needs at least two postings", http.StatusBadRequest)
		return
	}

	postings := make([]ast.Posting, 0, len(req.Postings))
	for _, p := range req.Postings {
		posting := ast.Posting{Account: ast.Account(p.Account)}
		if p.Amount != nil {
			posting.Amount = &ast.Amount{Number: *p.Amount, Commodity: p.Commodity}
		}
		postings = append(postings, posting)
	}

	txn := ast.Transaction{
		Base:      ast.Base{Date: date},
		Flag:      '*',
		Payee:     req.Payee,
		Narration: req.Narration,
		Postings:  postings,
	}

	path, err := s.mutator.AppendTransaction(txn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, map[string]string{"file": path})
}

// BalancePadRequest is the JSON body for POST /api/balance-pad.
type BalancePadRequest struct {
	Date       string          `json:"date"`
	Account    string          `json:"account"`
	Amount     decimal.Decimal `json:"amount"`
	Commodity  string          `json:"commodity"`
	PadAccount string          `json:"padAccount"`
}

// handlePostBalancePad appends a `balance ... with pad ...` line, per spec
// §4.6's set_balance_pad.
func (s *Server) handlePostBalancePad(w http.ResponseWriter, r *http.Request) {
	var req BalancePadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := ast.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	bal := ast.Balance{
		Base:       ast.Base{Date: date},
		Account:    ast.Account(req.Account),
		Amount:     ast.Amount{Number: req.Amount, Commodity: req.Commodity},
		PadAccount: ast.Account(req.PadAccount),
	}
	path, err := s.mutator.SetBalancePad(bal)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, map[string]string{"file": path})
}

// handlePostDocument uploads a file and appends a document directive, per
// spec §4.6's upload_document. The client sends a multipart form with
// fields "account", "date", and the file under "file".
func (s *Server) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	account := r.FormValue("account")
	dateStr := r.FormValue("date")
	date, err := ast.ParseDate(dateStr)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data := make([]byte, header.Size)
	if _, err := file.Read(data); err != nil {
		http.Error(w, "failed to read upload", http.StatusInternalServerError)
		return
	}

	ext := ""
	for i := len(header.Filename) - 1; i >= 0; i-- {
		if header.Filename[i] == '.' {
			ext = header.Filename[i+1:]
			break
		}
	}

	blobPath, ledgerPath, err := s.mutator.UploadDocument(ast.Account(account), date, data, ext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, map[string]string{"blob": blobPath, "file": ledgerPath})
}

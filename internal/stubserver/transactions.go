package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"budgetbook/internal/budget"
)

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var draft budget.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := draft.Validate(); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	u := currentUser(r)

	s.mu.Lock()
	s.nextID++
	tx := &storedTx{
		Transaction: budget.Transaction{
			ID:          s.nextID,
			Name:        draft.Name,
			Description: draft.Description,
			Category:    draft.Category,
			Type:        draft.Type,
			Amount:      draft.Amount,
			Date:        draft.Date,
		},
		userID: u.id,
	}
	s.txs = append(s.txs, tx)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, tx.Transaction)
}

type listResponse struct {
	Transactions []budget.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	query := r.URL.Query()

	skip, _ := strconv.Atoi(query.Get("skip"))
	if skip < 0 {
		skip = 0
	}

	limit := 15
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	typeFilter := budget.Type(query.Get("type"))
	categoryFilter := budget.Category(query.Get("category"))

	var startDate, endDate budget.Date
	if v := query.Get("start_date"); v != "" {
		d, err := budget.ParseDate(v)
		if err != nil {
			writeValidation(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		startDate = d
	}

	if v := query.Get("end_date"); v != "" {
		d, err := budget.ParseDate(v)
		if err != nil {
			writeValidation(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		endDate = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]budget.Transaction, 0)

	for _, tx := range s.txs {
		if tx.userID != u.id {
			continue
		}

		if typeFilter != "" && tx.Type != typeFilter {
			continue
		}

		if categoryFilter != "" && tx.Category != categoryFilter {
			continue
		}

		if !startDate.IsZero() && tx.Date.Before(startDate.Time) {
			continue
		}

		if !endDate.IsZero() && tx.Date.After(endDate.Time) {
			continue
		}

		matched = append(matched, tx.Transaction)
	}

	// Total counts all matches; skip/limit carve out the page afterwards.
	total := len(matched)

	if skip > len(matched) {
		skip = len(matched)
	}

	matched = matched[skip:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	writeJSON(w, http.StatusOK, listResponse{Transactions: matched, Total: total})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	var sum budget.Summary

	for _, tx := range s.txs {
		if tx.userID != u.id {
			continue
		}

		switch tx.Type {
		case budget.TypeIncome:
			sum.TotalIncome += tx.Amount
		case budget.TypeExpense:
			sum.TotalExpense += tx.Amount
		}
	}

	sum.NetBalance = sum.TotalIncome - sum.TotalExpense

	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.findLocked(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, tx.Transaction)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var draft budget.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := draft.Validate(); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.findLocked(w, r)
	if !ok {
		return
	}

	tx.Name = draft.Name
	tx.Description = draft.Description
	tx.Category = draft.Category
	tx.Type = draft.Type
	tx.Amount = draft.Amount
	tx.Date = draft.Date

	writeJSON(w, http.StatusOK, tx.Transaction)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.findLocked(w, r)
	if !ok {
		return
	}

	for i, stored := range s.txs {
		if stored == tx {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted"})
}

// findLocked resolves the {id} route param to the caller's transaction,
// writing the appropriate error response when it can't. Callers must hold
// s.mu.
func (s *Server) findLocked(w http.ResponseWriter, r *http.Request) (*storedTx, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid transaction id")
		return nil, false
	}

	for _, tx := range s.txs {
		if tx.ID != id {
			continue
		}

		if tx.userID != currentUser(r).id {
			writeDetail(w, http.StatusForbidden, "Not authorized")
			return nil, false
		}

		return tx, true
	}

	writeDetail(w, http.StatusNotFound, "Transaction not found")

	return nil, false
}

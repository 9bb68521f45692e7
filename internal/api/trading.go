package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"

	"github.com/nerrad567/ths-gateway/internal/trading"
)

// handleQuery returns today's data for one query category.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	data, err := s.trading.Query(r.Context(), chi.URLParam(r, "category"))
	s.respond(w, data, err)
}

// handleSendOrder places a buy or sell order.
//
// Body: {"gddm": "...", "gpdm": "...", "price": 10.5, "quantity": 100}
func (s *Server) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	var req trading.OrderRequest
	if err := gojson.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, msgBadBody+": "+err.Error())
		return
	}

	data, err := s.trading.SendOrder(r.Context(), chi.URLParam(r, "category"), req)
	s.respond(w, data, err)
}

// handleCancelOrder cancels a pending order by its ID.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	data, err := s.trading.CancelOrder(r.Context(), chi.URLParam(r, "order_id"))
	s.respond(w, data, err)
}

// handleQueryHistory returns historical orders or fills.
//
// Query parameters (both required, passed through unparsed):
//   - begin_date
//   - end_date
func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("begin_date") || !q.Has("end_date") {
		writeBadRequest(w, msgMissingDates)
		return
	}

	data, err := s.trading.QueryHistory(r.Context(), chi.URLParam(r, "category"), q.Get("begin_date"), q.Get("end_date"))
	s.respond(w, data, err)
}

// respond writes the envelope for a trading call. A nil payload is sent
// as JSON null.
func (s *Server) respond(w http.ResponseWriter, data json.RawMessage, err error) {
	if err != nil {
		writeTradingError(w, err)
		return
	}
	if data == nil {
		writeData(w, nil)
		return
	}
	writeData(w, data)
}

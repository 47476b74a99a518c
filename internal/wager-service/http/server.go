package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/wager-service/dto"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/engine"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
)

// Server expõe o contrato público do core via HTTP: placeWager,
// settleWager e os acessores de leitura. Nenhum outro caminho de mutação
// de apostas, ledger ou saldos existe.
type Server struct {
	log *zap.Logger
	eng *engine.Engine
}

func NewServer(log *zap.Logger, eng *engine.Engine) *Server {
	return &Server{log: log, eng: eng}
}

// Router retorna o mux HTTP com as rotas da API
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", s.createUser)            // POST
	mux.HandleFunc("/users/", s.userSubroutes)        // GET /users/{id}, GET /users/{id}/ledger, GET /users/{id}/wagers
	mux.HandleFunc("/wallet/deposit", s.deposit)      // POST
	mux.HandleFunc("/wallet/withdraw", s.withdraw)    // POST
	mux.HandleFunc("/wagers", s.placeWager)           // POST
	mux.HandleFunc("/wagers/", s.wagerSubroutes)      // GET /wagers/{id}, POST /wagers/{id}/settle
	return mux
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.DisplayName == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	u, err := s.eng.CreateUser(r.Context(), req.DisplayName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.UserResponse{UserID: u.ID, DisplayName: u.DisplayName, BalanceCents: u.BalanceCents})
}

// userSubroutes resolve /users/{id}[/ledger|/wagers]
func (s *Server) userSubroutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	switch sub {
	case "":
		u, err := s.eng.GetUser(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.UserResponse{UserID: u.ID, DisplayName: u.DisplayName, BalanceCents: u.BalanceCents})
	case "ledger":
		entries, err := s.eng.ListLedgerByUser(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out := make([]dto.LedgerEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, dto.LedgerEntryResponse{
				EntryID:     e.ID,
				WagerID:     e.WagerID,
				EntryType:   string(e.Type),
				AmountCents: e.AmountCents,
				Description: e.Description,
				CreatedAt:   e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	case "wagers":
		wagers, err := s.eng.ListWagersByUser(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		out := make([]dto.WagerResponse, 0, len(wagers))
		for _, wg := range wagers {
			out = append(out, wagerResponse(&wg))
		}
		writeJSON(w, http.StatusOK, out)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.eng.Deposit(r.Context(), req.UserID, req.AmountCents, req.ExternalRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{UserID: req.UserID, BalanceCents: bal})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.eng.Withdraw(r.Context(), req.UserID, req.AmountCents, req.ExternalRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{UserID: req.UserID, BalanceCents: bal})
}

func (s *Server) placeWager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceWagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.LineID == "" || req.StakeCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	wg, err := s.eng.PlaceWager(r.Context(), req.UserID, req.LineID, req.StakeCents)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wagerResponse(wg))
}

// wagerSubroutes resolve GET /wagers/{id} e POST /wagers/{id}/settle
func (s *Server) wagerSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/wagers/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "wagerId required", http.StatusBadRequest)
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		wg, err := s.eng.GetWager(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wagerResponse(wg))
	case sub == "settle" && r.Method == http.MethodPost:
		var req dto.SettleWagerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		wg, entry, err := s.eng.SettleWager(r.Context(), id, model.Outcome(req.Outcome))
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp := dto.SettleWagerResponse{WagerID: wg.ID, Status: string(wg.Status)}
		if entry != nil {
			resp.EntryType = string(entry.Type)
			resp.CreditCents = entry.AmountCents
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeError mapeia a taxonomia de erros do core para status HTTP.
// TransactionConflict vira 503: é o único tipo que o cliente deve repetir.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var settled *model.AlreadySettledError
	switch {
	case errors.As(err, &settled):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: settled.Error(), Status: string(settled.Status)})
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrLineNotFound),
		errors.Is(err, model.ErrWagerNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrBettingClosed):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrInsufficientBalance):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrInvalidStake),
		errors.Is(err, model.ErrInvalidOutcome),
		errors.Is(err, model.ErrInvalidOdds):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrTxConflict):
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		s.log.Error("unhandled core error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func wagerResponse(w *model.Wager) dto.WagerResponse {
	return dto.WagerResponse{
		WagerID:       w.ID,
		UserID:        w.UserID,
		LineID:        w.LineID,
		StakeCents:    w.StakeCents,
		AcceptedPrice: w.AcceptedPrice,
		AcceptedPoint: w.AcceptedPoint,
		Status:        string(w.Status),
		PlacedAt:      w.PlacedAt,
		SettledAt:     w.SettledAt,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/wager-ledger-poc/internal/lines-service/cache"
	"github.com/radieske/wager-ledger-poc/internal/lines-service/dto"
	"github.com/radieske/wager-ledger-poc/internal/lines-service/repo"
)

// API expõe os endpoints REST de consulta de linhas
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo
	Cache    *cache.Cache
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/events", a.listEvents)                     // Lista eventos esportivos
	r.Get("/v1/events/{id}/lines", a.getCurrentLines)     // Cotações correntes de um evento
	r.Get("/v1/events/{id}/lines/history", a.lineHistory) // Histórico append-only de cotações
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listEvents retorna todos os eventos esportivos disponíveis
func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	ev, err := a.ReadRepo.ListEvents(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// getCurrentLines retorna as cotações correntes, preferencialmente do cache
func (a *API) getCurrentLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache []dto.Line
	if ok, _ := a.Cache.GetLines(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	lines, err := a.ReadRepo.GetCurrentLines(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(lines) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	_ = a.Cache.SetLines(r.Context(), id, lines, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, lines)
}

// lineHistory retorna o histórico completo de cotações de um evento
func (a *API) lineHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lines, err := a.ReadRepo.ListLineHistory(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

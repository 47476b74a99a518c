package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/shared/config"
	"github.com/radieske/wager-ledger-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	linesURL := os.Getenv("LINES_URL")
	if linesURL == "" {
		linesURL = "http://localhost:8080"
	}
	wagerURL := os.Getenv("WAGER_URL")
	if wagerURL == "" {
		wagerURL = "http://localhost:8082"
	}
	lines := rp(linesURL)
	wager := rp(wagerURL)

	mux := http.NewServeMux()

	// linhas (ex.: /api/lines/v1/events -> lines-service /v1/events)
	mux.Handle("/api/lines/", http.StripPrefix("/api/lines", lines))

	// apostas, usuários e carteira (ex.: /api/wagers -> wager-service /wagers)
	// o prefixo do serviço é mantido, só o /api sai
	mux.Handle("/api/wagers", http.StripPrefix("/api", wager))
	mux.Handle("/api/wagers/", http.StripPrefix("/api", wager))
	mux.Handle("/api/users", http.StripPrefix("/api", wager))
	mux.Handle("/api/users/", http.StripPrefix("/api", wager))
	mux.Handle("/api/wallet/", http.StripPrefix("/api", wager))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

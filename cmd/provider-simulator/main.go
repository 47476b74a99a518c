package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/shared/config"
	"github.com/radieske/wager-ledger-poc/internal/shared/logger"
	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Catálogo fixo de partidas simuladas para geração de linhas
	matchCatalog = []simMatch{
		{EventID: "MATCH_001", HomeTeam: "Flamengo", AwayTeam: "Palmeiras", spread: -3.5, total: 2.5},
		{EventID: "MATCH_002", HomeTeam: "Grêmio", AwayTeam: "Internacional", spread: 1.5, total: 2.5},
		{EventID: "MATCH_003", HomeTeam: "Corinthians", AwayTeam: "Santos", spread: -1.5, total: 1.5},
		{EventID: "MATCH_004", HomeTeam: "São Paulo", AwayTeam: "Vasco", spread: -2.5, total: 3.5},
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provider_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provider_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
)

// Partida simulada com as referências de spread e total usadas na geração
type simMatch struct {
	EventID  string
	HomeTeam string
	AwayTeam string
	spread   float64
	total    float64
}

// Representa uma conexão de cliente WebSocket
// id: identificador único da conexão
// conn: ponteiro para a conexão WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// Estrutura responsável por gerenciar os clientes conectados via WebSocket
// e realizar broadcast de mensagens para todos eles.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

// Cria uma nova instância de hub para gerenciar conexões
func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

// Adiciona um novo cliente ao hub e incrementa a métrica de conexões
func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

// Remove um cliente do hub e decrementa a métrica de conexões
func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

// Envia uma mensagem para todos os clientes conectados
func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// Passeio aleatório no preço americano: desloca em passos de 5 dentro da
// faixa e salta o intervalo (-100, +100), que não existe nessa notação.
func walkPrice(p int64) int64 {
	p += int64((rand.Intn(5) - 2) * 5)
	if p > -105 && p < 100 {
		if p >= 0 {
			p = 100
		} else {
			p = -105
		}
	}
	if p > 250 {
		p = 250
	}
	if p < -250 {
		p = -250
	}
	return p
}

func ptStr(f float64) *string {
	s := strconv.FormatFloat(f, 'f', 1, 64)
	return &s
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	rand.Seed(time.Now().UnixNano())

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	h := newHub(log)

	// Preço corrente por evento/mercado/seleção, evoluído a cada tick
	prices := map[string]int64{}
	priceKey := func(ev, mk, sel string) string { return ev + "|" + mk + "|" + sel }
	price := func(ev, mk, sel string) int64 {
		k := priceKey(ev, mk, sel)
		p, ok := prices[k]
		if !ok {
			p = -110
		}
		p = walkPrice(p)
		prices[k] = p
		return p
	}

	// Gera e envia linhas simuladas para todos os clientes conectados a cada 3 segundos
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		startsAt := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Minute)
		for range ticker.C {
			now := time.Now().UTC()
			for _, m := range matchCatalog {
				updates := []events.LineUpdate{
					{MarketKind: "SPREAD", Selection: "home", Point: ptStr(m.spread)},
					{MarketKind: "SPREAD", Selection: "away", Point: ptStr(-m.spread)},
					{MarketKind: "TOTAL", Selection: "over", Point: ptStr(m.total)},
					{MarketKind: "TOTAL", Selection: "under", Point: ptStr(m.total)},
					{MarketKind: "MONEYLINE", Selection: "home"},
					{MarketKind: "MONEYLINE", Selection: "away"},
				}
				for _, u := range updates {
					u.EventID = m.EventID
					u.HomeTeam = m.HomeTeam
					u.AwayTeam = m.AwayTeam
					u.StartsAt = startsAt
					u.EventStatus = "SCHEDULED"
					u.Price = price(m.EventID, u.MarketKind, u.Selection)
					u.Source = cfg.ServiceName
					u.CapturedAt = now
					h.broadcast(u)
				}
			}
		}
	}()

	// ==== MUX PÚBLICO (HTTP principal): /ws
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Goroutine para manter a conexão viva e remover cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	// Servidor de métricas em goroutine
	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("provider simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// Servidor público (WS)
	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("provider simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}

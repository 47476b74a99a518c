package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/lines-worker/cache"
	"github.com/radieske/wager-ledger-poc/internal/lines-worker/consumer"
	"github.com/radieske/wager-ledger-poc/internal/lines-worker/pubsub"
	"github.com/radieske/wager-ledger-poc/internal/lines-worker/repository"
	sharedcache "github.com/radieske/wager-ledger-poc/internal/shared/cache"
	"github.com/radieske/wager-ledger-poc/internal/shared/config"
	"github.com/radieske/wager-ledger-poc/internal/shared/db"
	"github.com/radieske/wager-ledger-poc/internal/shared/kafka"
	"github.com/radieske/wager-ledger-poc/internal/shared/logger"
	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Instancia cache Redis e repositório Postgres para as linhas
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Configura o consumer Kafka (consumer group lines-worker)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicLineUpdates, "lines-worker")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "lines_messages_consumed_total", Help: "mensagens consumidas"})
	appended := prometheus.NewCounter(prometheus.CounterOpts{Name: "lines_appended_total", Help: "cotações anexadas ao snapshot store"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "lines_cache_sets_total", Help: "sets no cache"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lines_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, appended, cached, errorsBy)

	// Broadcaster para publicar cotações no Redis Pub/Sub (usado pelo lines-service/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o processor, conectando callbacks de métricas e broadcast
	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		Cache:      rcache,
		OnConsumed: func() { consumed.Inc() },
		OnAppended: func() { appended.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após persistir, envia update para o WebSocket via Redis Pub/Sub
		OnAfterPersist: func(lineID string, ev events.LineUpdate) {
			msg := pubsub.WSUpdate{EventID: ev.EventID, Payload: ev}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, pubsub.ChannelLinesBroadcast, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("lines-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("lines-worker stopped")
}

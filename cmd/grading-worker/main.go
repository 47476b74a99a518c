package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/shared/config"
	"github.com/radieske/wager-ledger-poc/internal/shared/db"
	"github.com/radieske/wager-ledger-poc/internal/shared/kafka"
	"github.com/radieske/wager-ledger-poc/internal/shared/logger"
	"github.com/radieske/wager-ledger-poc/internal/shared/metrics"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/engine"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/model"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/producer"
	"github.com/radieske/wager-ledger-poc/internal/wager-service/store"
	ev "github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: a varredura de graduação usa o mesmo core do wager-service
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: pedidos de graduação (wagerId, outcome)
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicGradeRequests, "grading-worker")
	defer reader.Close()

	// Kafka producer: eventos wager_settled e DLQ de pedidos com falha
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	defer settledWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicGradeRequestsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGradeRequestsDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus da graduação e da auditoria
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "grading_wagers_settled_total", Help: "apostas liquidadas por resultado"}, []string{"outcome"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_already_settled_total", Help: "pedidos repetidos sobre aposta já liquidada"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_failures_total", Help: "pedidos enviados para DLQ"})
	violations := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_audit_violations_total", Help: "violações da invariante saldo x ledger"})
	prometheus.MustRegister(settled, duplicates, failures, violations)

	repo := store.NewPostgres(pg, cfg.AcceptanceBuffer)
	publ := producer.NewKafkaPublisher(nil, settledWriter)
	eng := engine.New(log, repo, settledOnly{publ})

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Auditoria periódica da invariante de consistência
	auditor := &engine.Auditor{
		Log:         log,
		Engine:      eng,
		Interval:    cfg.AuditInterval,
		OnViolation: func(string) { violations.Inc() },
	}
	go auditor.Run(ctx)

	log.Info("grading-worker started",
		zap.String("consume", cfg.TopicGradeRequests),
		zap.String("publish", cfg.TopicWagerSettled),
	)

	// Loop principal: consome pedidos de graduação e liquida pelo core
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("grading-worker stopped")
				return
			}
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var req ev.GradeRequest
		if jerr := json.Unmarshal(msg.Value, &req); jerr != nil {
			log.Error("unmarshal grade_request", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, eng, &req, settled, duplicates); err != nil {
			log.Error("grade wager", zap.String("wagerId", req.WagerID), zap.Error(err))
			failures.Inc()
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, req.WagerID, msg.Value)
			}
		}
	}
}

// processOne liquida uma aposta pelo engine:
// 1. AlreadySettled é sucesso idempotente (re-entrega do Kafka), não erro
// 2. TransactionConflict é repetido com backoff antes de desistir
// 3. Qualquer outra falha vai para a DLQ
func processOne(
	ctx context.Context,
	log *zap.Logger,
	eng *engine.Engine,
	req *ev.GradeRequest,
	settled *prometheus.CounterVec,
	duplicates prometheus.Counter,
) error {
	outcome := model.Outcome(req.Outcome)

	const retries = 3
	var err error
	for i := 0; i <= retries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(300*i) * time.Millisecond)
		}
		_, _, err = eng.SettleWager(ctx, req.WagerID, outcome)
		if !errors.Is(err, model.ErrTxConflict) {
			break
		}
	}

	var dup *model.AlreadySettledError
	switch {
	case err == nil:
		settled.WithLabelValues(req.Outcome).Inc()
		return nil
	case errors.As(err, &dup):
		// idempotência observável: registra e segue sem novo lançamento
		log.Info("wager already settled",
			zap.String("wagerId", req.WagerID),
			zap.String("status", string(dup.Status)),
		)
		duplicates.Inc()
		return nil
	default:
		return err
	}
}

// settledOnly adapta o publisher para o worker, que nunca emite wager_placed.
type settledOnly struct{ p *producer.KafkaPublisher }

func (s settledOnly) PublishWagerPlaced(context.Context, ev.WagerPlaced) error { return nil }
func (s settledOnly) PublishWagerSettled(ctx context.Context, e ev.WagerSettled) error {
	return s.p.PublishWagerSettled(ctx, e)
}

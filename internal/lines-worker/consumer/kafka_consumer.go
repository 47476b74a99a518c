package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/wager-ledger-poc/internal/lines-worker/cache"
	"github.com/radieske/wager-ledger-poc/internal/lines-worker/repository"
	"github.com/radieske/wager-ledger-poc/pkg/contracts/events"
)

// Processor consome cotações do Kafka, garante evento/mercado, anexa a
// linha ao snapshot store e atualiza cache e visão corrente.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()       // métricas (counter++)
	OnAppended func()       // métricas
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase

	// Após persistir, envia update para o WebSocket via Redis Pub/Sub
	OnAfterPersist func(lineID string, ev events.LineUpdate)
}

// Run inicia o loop principal de consumo e processamento das mensagens.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var ev events.LineUpdate
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// Evento e mercado precisam existir antes da linha
		if err := p.Repo.UpsertEvent(ctx, ev); err != nil {
			p.Log.Warn("db upsert event failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_event")
			}
			continue
		}
		if err := p.Repo.UpsertMarket(ctx, ev); err != nil {
			p.Log.Warn("db upsert market failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_market")
			}
			continue
		}

		// Cotação é sempre append; nunca atualiza linha existente
		lineID, err := p.Repo.InsertLine(ctx, ev)
		if err != nil {
			p.Log.Warn("db insert line failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_line")
			}
			continue
		}
		if err := p.Repo.UpsertCurrent(ctx, lineID, ev); err != nil {
			p.Log.Warn("db upsert current failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_current")
			}
			continue
		}
		if p.OnAppended != nil {
			p.OnAppended()
		}

		// Cache da cotação corrente; falha não bloqueia o fluxo
		cur := cache.CurrentLine{
			LineID:     lineID,
			EventID:    ev.EventID,
			MarketKind: ev.MarketKind,
			Selection:  ev.Selection,
			Point:      ev.Point,
			Price:      ev.Price,
			CapturedAt: ev.CapturedAt,
		}
		if err := p.Cache.SetCurrent(ctx, cur); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
		} else if p.OnCached != nil {
			p.OnCached()
		}

		if p.OnAfterPersist != nil {
			p.OnAfterPersist(lineID, ev)
		}
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EGXAdvisor/internal/domain/models"
	"EGXAdvisor/internal/domain/repository"
	pkgkafka "EGXAdvisor/pkg/kafka"
)

// ClickHouseQuoteStorage implements QuoteStorage for ClickHouse.
type ClickHouseQuoteStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseQuoteStorage creates ClickHouse quote storage.
func NewClickHouseQuoteStorage(db *sql.DB, table string) repository.QuoteStorage {
	return &ClickHouseQuoteStorage{db: db, table: table}
}

func (s *ClickHouseQuoteStorage) Store(ctx context.Context, q *models.Quote) error {
	qry := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	eventID := fmt.Sprintf("%s-%d", q.Symbol, q.Timestamp)
	_, err := s.db.ExecContext(ctx, qry,
		time.Unix(q.Timestamp, 0),
		q.Symbol,
		q.Price,
		q.Volume,
		"tradingview",
		eventID,
	)
	return err
}

func (s *ClickHouseQuoteStorage) StoreBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	// Multi-row VALUES insert, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(quotes); start += chunkSize {
		end := start + chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, q := range quotes[start:end] {
			if q == nil || q.Symbol == "" || q.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(q.Timestamp, 0),
				q.Symbol,
				q.Price,
				q.Volume,
				"tradingview",
				fmt.Sprintf("%s-%d", q.Symbol, q.Timestamp),
			)
		}
		if len(values) == 0 {
			continue
		}
		qry := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, qry, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseQuoteStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseQuoteStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaQuotePublisher implements Publisher for Kafka.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaQuotePublisher creates a Kafka quote publisher.
func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) Publish(ctx context.Context, q *models.Quote) error {
	return p.producer.Publish(ctx, p.topic, []byte(q.Symbol), map[string]interface{}{
		"symbol": q.Symbol,
		"t":      q.Timestamp,
		"c":      q.Price,
		"v":      q.Volume,
	})
}

func (p *KafkaQuotePublisher) PublishBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(quotes))
	for i, q := range quotes {
		msgs[i] = pkgkafka.Message{
			Key: []byte(q.Symbol),
			Value: map[string]interface{}{
				"symbol": q.Symbol,
				"t":      q.Timestamp,
				"c":      q.Price,
				"v":      q.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaQuotePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"EGXAdvisor/internal/domain/models"
	domrepo "EGXAdvisor/internal/domain/repository"
	pkgch "EGXAdvisor/pkg/clickhouse"
	applogger "EGXAdvisor/pkg/logger"
)

// CHJournalStore persists directional recommendation snapshots in ClickHouse.
type CHJournalStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHJournalStore(ch *pkgch.Client, table string) *CHJournalStore {
	if table == "" {
		table = "trade_journal"
	}
	return &CHJournalStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHJournalStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHJournalStore) Append(ctx context.Context, e *models.TradeJournalEntry) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (symbol, as_of, recorded_at, action, conviction, regime,
         entry_lower, entry_upper, target_exit, stop_loss, risk_distance_pct, logic_summary)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		e.Symbol,
		e.AsOfDate,
		e.RecordedAt,
		string(e.Action),
		e.Conviction,
		string(e.Regime),
		e.EntryLower,
		e.EntryUpper,
		e.TargetExit,
		e.StopLoss,
		e.RiskDistancePct,
		e.LogicSummary,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse journal insert error",
				applogger.String("symbol", e.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (s *CHJournalStore) List(ctx context.Context, symbol string, limit int) ([]models.TradeJournalEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if symbol == "" {
		q := fmt.Sprintf(`SELECT symbol, as_of, recorded_at, action, conviction, regime,
            entry_lower, entry_upper, target_exit, stop_loss, risk_distance_pct, logic_summary
            FROM %s ORDER BY recorded_at DESC LIMIT ?`, s.table)
		rows, err = s.db.QueryContext(ctx, q, limit)
	} else {
		q := fmt.Sprintf(`SELECT symbol, as_of, recorded_at, action, conviction, regime,
            entry_lower, entry_upper, target_exit, stop_loss, risk_distance_pct, logic_summary
            FROM %s WHERE symbol = ? ORDER BY recorded_at DESC LIMIT ?`, s.table)
		rows, err = s.db.QueryContext(ctx, q, symbol, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	out := make([]models.TradeJournalEntry, 0, limit)
	for rows.Next() {
		var e models.TradeJournalEntry
		var action, regime string
		if err := rows.Scan(&e.Symbol, &e.AsOfDate, &e.RecordedAt, &action, &e.Conviction, &regime,
			&e.EntryLower, &e.EntryUpper, &e.TargetExit, &e.StopLoss, &e.RiskDistancePct, &e.LogicSummary); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Action = models.StrategyAction(action)
		e.Regime = models.RegimeLabel(regime)
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ domrepo.JournalStore = (*CHJournalStore)(nil)

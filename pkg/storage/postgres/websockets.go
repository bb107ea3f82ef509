package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// AddConnection registers a vault update subscriber.
func (s *Store) AddConnection(ctx context.Context, connectionID string) error {
	query, args, err := psql.Insert("websocket_connections").
		Columns("connection_id").
		Values(connectionID).
		Suffix("ON CONFLICT (connection_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build statement: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save connection %s: %w", connectionID, err)
	}
	return nil
}

// RemoveConnection deletes a subscriber.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	query, args, err := psql.Delete("websocket_connections").Where(sq.Eq{"connection_id": connectionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build statement: %w", err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", connectionID, err)
	}
	return nil
}

// GetAllConnections lists every subscriber.
func (s *Store) GetAllConnections(ctx context.Context) ([]string, error) {
	query, args, err := psql.Select("connection_id").From("websocket_connections").OrderBy("connected_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read connections: %w", err)
	}
	return ids, nil
}

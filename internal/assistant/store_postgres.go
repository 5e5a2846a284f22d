package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps conversations in the conversations and messages tables.
// The summary and compaction point live in conversations.metadata.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const conversationColumns = `id::text, user_id, state, started_at, ended_at, metadata`

func (s *PostgresStore) CreateConversation(ctx context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	conv, err := scanConversation(s.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_id, state) VALUES ($1, 'active') RETURNING `+conversationColumns,
		userID,
	))
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	conv, err := scanConversation(s.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id::text = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if err := s.loadMessages(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *PostgresStore) GetActiveConversation(ctx context.Context, userID string) (*Conversation, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	conv, err := scanConversation(s.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+`
		 FROM conversations
		 WHERE user_id = $1 AND ended_at IS NULL
		 ORDER BY started_at DESC
		 LIMIT 1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get active conversation: %w", err)
	}
	if err := s.loadMessages(ctx, conv); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *PostgresStore) loadMessages(ctx context.Context, conv *Conversation) error {
	rows, err := s.pool.Query(ctx,
		`SELECT role, content, COALESCE(model, ''), COALESCE(input_tokens, 0), COALESCE(output_tokens, 0), created_at
		 FROM messages
		 WHERE conversation_id = $1::uuid
		 ORDER BY created_at ASC`,
		conv.ID,
	)
	if err != nil {
		return fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg StoredMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Model, &msg.InputTokens, &msg.OutputTokens, &msg.CreatedAt); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate messages: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, conversationID string, msg StoredMessage) error {
	if msg.Role == "" {
		return fmt.Errorf("message role is required")
	}
	if msg.Content == "" {
		return fmt.Errorf("message content is required")
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO messages (conversation_id, role, content, model, input_tokens, output_tokens, created_at)
		 SELECT c.id, $2, $3, $4, $5, $6, $7
		 FROM conversations c
		 WHERE c.id::text = $1`,
		conversationID,
		msg.Role,
		msg.Content,
		nullIfEmpty(msg.Model),
		nullIfZero(msg.InputTokens),
		nullIfZero(msg.OutputTokens),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PostgresStore) SetSummary(ctx context.Context, conversationID, summary string, compactedAt int) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET metadata = COALESCE(metadata, '{}'::jsonb) || jsonb_build_object('summary', $2::text, 'compacted_at', $3::int)
		 WHERE id::text = $1`,
		conversationID, summary, compactedAt,
	)
	if err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PostgresStore) EndConversation(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE conversations SET ended_at = NOW(), state = 'ended' WHERE id::text = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("end conversation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	conv := &Conversation{Messages: []StoredMessage{}}
	var metadata []byte
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.State, &conv.StartedAt, &conv.EndedAt, &metadata); err != nil {
		return nil, err
	}
	conv.Summary, conv.CompactedAt = parseMetadata(metadata)
	return conv, nil
}

func parseMetadata(metadata []byte) (string, int) {
	if len(metadata) == 0 {
		return "", 0
	}
	var meta struct {
		Summary     string `json:"summary"`
		CompactedAt int    `json:"compacted_at"`
	}
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return "", 0
	}
	return meta.Summary, meta.CompactedAt
}

func nullIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

package postgres

import (
	"context"
	"time"

	"github.com/campusmind/campusmind/store"
)

func (d *DB) EnsureConversation(ctx context.Context, sessionID string) (*store.Conversation, error) {
	now := time.Now().Unix()
	stmt := `INSERT INTO conversation (session_id, created_ts, updated_ts) VALUES ($1, $2, $2) ON CONFLICT (session_id) DO UPDATE SET updated_ts = $2 RETURNING id, session_id, created_ts, updated_ts`
	var conversation store.Conversation
	if err := d.db.QueryRowContext(ctx, stmt, sessionID, now).Scan(
		&conversation.ID,
		&conversation.SessionID,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (d *DB) AppendConversationMessage(ctx context.Context, create *store.ConversationMessage) (*store.ConversationMessage, error) {
	// Appending to an unseen session creates the conversation; the upsert
	// also refreshes updated_ts for existing ones.
	now := time.Now().Unix()
	if _, err := d.db.ExecContext(ctx,
		`INSERT INTO conversation (session_id, created_ts, updated_ts) VALUES ($1, $2, $2) ON CONFLICT (session_id) DO UPDATE SET updated_ts = $2`,
		create.SessionID, now,
	); err != nil {
		return nil, err
	}
	stmt := `INSERT INTO conversation_message (uid, session_id, role, content) VALUES ($1, $2, $3, $4) RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.SessionID,
		create.Role,
		create.Content,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, translateError(err)
	}
	return create, nil
}

func (d *DB) ListRecentConversationMessages(ctx context.Context, sessionID string, limit int) ([]*store.ConversationMessage, error) {
	query := `SELECT id, uid, session_id, role, content, created_ts FROM (
		SELECT id, uid, session_id, role, content, created_ts FROM conversation_message WHERE session_id = $1 ORDER BY id DESC LIMIT $2
	) AS recent ORDER BY id ASC`
	rows, err := d.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*store.ConversationMessage, 0)
	for rows.Next() {
		var message store.ConversationMessage
		if err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&message.CreatedTs,
		); err != nil {
			return nil, err
		}
		list = append(list, &message)
	}
	return list, rows.Err()
}

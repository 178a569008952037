package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/campusmind/campusmind/store"
)

func (d *DB) EnsureConversation(ctx context.Context, sessionID string) (*store.Conversation, error) {
	now := time.Now().Unix()
	// Upsert so concurrent first-touch of a session is race-free.
	stmt := "INSERT INTO `conversation` (`session_id`, `created_ts`, `updated_ts`) VALUES (?, ?, ?) ON CONFLICT (`session_id`) DO UPDATE SET `updated_ts` = ? RETURNING `id`, `session_id`, `created_ts`, `updated_ts`"
	var conversation store.Conversation
	if err := d.db.QueryRowContext(ctx, stmt, sessionID, now, now, now).Scan(
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
		"INSERT INTO `conversation` (`session_id`, `created_ts`, `updated_ts`) VALUES (?, ?, ?) ON CONFLICT (`session_id`) DO UPDATE SET `updated_ts` = ?",
		create.SessionID, now, now, now,
	); err != nil {
		return nil, err
	}
	stmt := "INSERT INTO `conversation_message` (`uid`, `session_id`, `role`, `content`) VALUES (?, ?, ?, ?) RETURNING `id`, `created_ts`"
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
	// Trailing window in chronological order: take the newest rows, then
	// flip them back.
	query := "SELECT `id`, `uid`, `session_id`, `role`, `content`, `created_ts` FROM `conversation_message` WHERE `session_id` = ? ORDER BY `id` DESC LIMIT ?"
	rows, err := d.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanConversationMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func scanConversationMessages(rows *sql.Rows) ([]*store.ConversationMessage, error) {
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

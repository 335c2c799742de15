package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdmeer/Post-Ledger-Backend/internal/apperrors"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
)

// PostRepository provides data access methods for the posts table.
// Posts are content-addressed: identical content maps to the same row, so
// inserts are idempotent.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository with the provided database connection.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// CreatePost stores a post entry. Re-committing identical content is a
// no-op: the first stored entry wins, including its timestamp.
func (r *PostRepository) CreatePost(post model.Post) error {
	query := `
          INSERT OR IGNORE INTO posts (address, content, date_created)
          VALUES (?, ?, ?)
      `
	_, err := r.db.Exec(query,
		post.Address,
		post.Content,
		post.DateCreated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert into posts table: %w", err)
	}

	return nil
}

func (r *PostRepository) GetPostOnAddress(address model.Address) (model.Post, error) {
	query := `
          SELECT address, content, date_created
          FROM posts
          WHERE address = ?
      `
	var p model.Post

	err := r.db.QueryRow(query, address).Scan(
		&p.Address,
		&p.Content,
		&p.DateCreated,
	)
	if err == sql.ErrNoRows {
		return model.Post{}, apperrors.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to query posts table: %w", err)
	}

	return p, nil
}

// GetPostsOnAgentID retrieves the posts an agent committed, in chain order.
// It joins each post-type record with the entry it committed; records whose
// entry has not arrived yet are skipped here and surfaced by the chain audit.
// Returns an empty slice if the agent committed no posts.
func (r *PostRepository) GetPostsOnAgentID(agentID string) ([]model.RecordedPost, error) {
	query := `
          SELECT
          records.id, records.agent_id, records.type, records.entry_address,
          records.in_reply_to, records.timestamp, records.canonical, records.prev_id, records.seq,
          posts.address, posts.content, posts.date_created
          FROM records
          JOIN posts ON posts.address = records.entry_address
          WHERE records.agent_id = ? AND records.type = 'post'
          ORDER BY records.seq ASC
      `
	rows, err := r.db.Query(query, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records or posts table: %w", err)
	}
	defer rows.Close()

	posts := []model.RecordedPost{}

	for rows.Next() {
		var inReplyToStr, canonicalStr, prevIDStr sql.NullString
		var rp model.RecordedPost

		err := rows.Scan(
			&rp.Record.ID,
			&rp.Record.AgentID,
			&rp.Record.Type,
			&rp.Record.EntryAddress,
			&inReplyToStr,
			&rp.Record.Timestamp,
			&canonicalStr,
			&prevIDStr,
			&rp.Record.Seq,
			&rp.Post.Address,
			&rp.Post.Content,
			&rp.Post.DateCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan records or posts table results: %w", err)
		}

		if inReplyToStr.Valid {
			address := model.Address(inReplyToStr.String)
			rp.Record.InReplyTo = &address
		}
		if canonicalStr.Valid {
			rp.Record.Canonical = &canonicalStr.String
		}
		if prevIDStr.Valid {
			rp.Record.PrevID = &prevIDStr.String
		}

		posts = append(posts, rp)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records or posts table: %w", err)
	}

	return posts, nil
}

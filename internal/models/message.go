package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Message struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	VisitorID   int64     `json:"visitor_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Body        string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

func CreateMessage(db *sql.DB, m *Message) error {
	res, err := db.Exec(
		`INSERT INTO messages (portfolio_id, visitor_id, sender_name, sender_email, body) VALUES (?, ?, ?, ?, ?)`,
		m.PortfolioID, m.VisitorID, m.SenderName, m.SenderEmail, m.Body,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, _ := res.LastInsertId()
	m.ID = id

	// Re-read to get created_at
	return GetMessageByID(db, m)
}

func GetMessageByID(db *sql.DB, m *Message) error {
	row := db.QueryRow(`SELECT id, portfolio_id, visitor_id, sender_name, sender_email, body, created_at FROM messages WHERE id = ?`, m.ID)
	return row.Scan(&m.ID, &m.PortfolioID, &m.VisitorID, &m.SenderName, &m.SenderEmail, &m.Body, &m.CreatedAt)
}

func ListMessages(db *sql.DB, portfolioID int64) ([]Message, error) {
	rows, err := db.Query(
		`SELECT id, portfolio_id, visitor_id, sender_name, sender_email, body, created_at FROM messages WHERE portfolio_id = ? ORDER BY created_at DESC`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.PortfolioID, &m.VisitorID, &m.SenderName, &m.SenderEmail, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func DeleteMessage(db *sql.DB, portfolioID, id int64) error {
	res, err := db.Exec(`DELETE FROM messages WHERE id = ? AND portfolio_id = ?`, id, portfolioID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

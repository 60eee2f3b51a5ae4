package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naviohq/navio/internal/types"
)

// Store adapts the database to the card dispatcher's entity interface.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) updateStatus(ctx context.Context, table, guid, status string) error {
	result, err := s.DB.ExecContext(ctx,
		"UPDATE "+table+" SET status = ?, updated_at = ? WHERE guid = ?",
		status, time.Now().UnixMilli(), guid)
	if err != nil {
		return err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s: no row %s", table, guid)
	}
	return nil
}

// UpdateOfferStatus moves an offer through its negotiation lifecycle.
func (s *Store) UpdateOfferStatus(ctx context.Context, offerID, status string) error {
	return s.updateStatus(ctx, "nv_offers", offerID, status)
}

// CounterOffer records a counter: new amount, next round, status reset.
func (s *Store) CounterOffer(ctx context.Context, offerID string, amount float64) error {
	result, err := s.DB.ExecContext(ctx, `
		UPDATE nv_offers
		SET amount = ?, round = round + 1, status = 'countered', updated_at = ?
		WHERE guid = ?
	`, amount, time.Now().UnixMilli(), offerID)
	if err != nil {
		return err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("nv_offers: no row %s", offerID)
	}
	return nil
}

// UpdateInvoiceStatus moves an invoice through its payment lifecycle.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, invoiceID, status string) error {
	return s.updateStatus(ctx, "nv_invoices", invoiceID, status)
}

// UpdateTaskStatus moves a task through its lifecycle.
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	return s.updateStatus(ctx, "nv_tasks", taskID, status)
}

// ReassignTask changes a task's assignee.
func (s *Store) ReassignTask(ctx context.Context, taskID, assignee string) error {
	result, err := s.DB.ExecContext(ctx,
		"UPDATE nv_tasks SET assignee = ?, updated_at = ? WHERE guid = ?",
		assignee, time.Now().UnixMilli(), taskID)
	if err != nil {
		return err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("nv_tasks: no row %s", taskID)
	}
	return nil
}

// UpdateApprovalStatus records an approval decision.
func (s *Store) UpdateApprovalStatus(ctx context.Context, approvalID, status string) error {
	return s.updateStatus(ctx, "nv_approvals", approvalID, status)
}

// AppendEvent writes an audit or reaction event.
func (s *Store) AppendEvent(ctx context.Context, ev types.Event) error {
	_, err := AppendEvent(s.DB, ev)
	return err
}

// InsertNotification queues an in-app notification.
func (s *Store) InsertNotification(ctx context.Context, n types.Notification) error {
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	if n.ID == "" {
		guid, err := generateUniqueGUIDForTable(s.DB, "nv_notifications", "ntf")
		if err != nil {
			return err
		}
		n.ID = guid
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO nv_notifications (guid, user_guid, kind, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Kind, n.Body, n.CreatedAt)
	return err
}

// SeedOffer inserts an offer row, for tests and shipment bootstrap.
func SeedOffer(db *sql.DB, guid, shipmentID string, amount float64, currency string) error {
	_, err := db.Exec(`
		INSERT INTO nv_offers (guid, shipment_guid, amount, currency)
		VALUES (?, ?, ?, ?)
	`, guid, shipmentID, amount, currency)
	return err
}

// SeedInvoice inserts an invoice row.
func SeedInvoice(db *sql.DB, guid string, amount float64, currency, dueDate string) error {
	_, err := db.Exec(`
		INSERT INTO nv_invoices (guid, amount, currency, due_date)
		VALUES (?, ?, ?, ?)
	`, guid, amount, currency, dueDate)
	return err
}

// SeedTask inserts a task row.
func SeedTask(db *sql.DB, guid, title, assignee string) error {
	_, err := db.Exec(`
		INSERT INTO nv_tasks (guid, title, assignee)
		VALUES (?, ?, ?)
	`, guid, title, assignee)
	return err
}

// SeedApproval inserts an approval row.
func SeedApproval(db *sql.DB, guid, subject string) error {
	_, err := db.Exec(`
		INSERT INTO nv_approvals (guid, subject)
		VALUES (?, ?)
	`, guid, subject)
	return err
}

// GetEntityStatus reads back the status column, for tests and card
// refresh.
func GetEntityStatus(db *sql.DB, table, guid string) (string, error) {
	row := db.QueryRow("SELECT status FROM "+table+" WHERE guid = ?", guid)
	var status string
	if err := row.Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return status, nil
}

// GetNotifications returns a user's queued notifications, newest first.
func GetNotifications(db *sql.DB, userID string, unseenOnly bool) ([]types.Notification, error) {
	query := `
		SELECT guid, user_guid, kind, body, created_at
		FROM nv_notifications
		WHERE user_guid = ?`
	if unseenOnly {
		query += " AND seen_at IS NULL"
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []types.Notification
	for rows.Next() {
		var n types.Notification
		var body sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &body, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Body = body.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationsSeen stamps all of a user's unseen notifications.
func MarkNotificationsSeen(db *sql.DB, userID string) error {
	_, err := db.Exec(`
		UPDATE nv_notifications SET seen_at = ?
		WHERE user_guid = ? AND seen_at IS NULL
	`, time.Now().UnixMilli(), userID)
	return err
}

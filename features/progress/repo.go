package progress

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetFolder(ctx context.Context, id string) (*Folder, error)
	// GetQuote returns (nil, nil) when the folder has no quote yet.
	GetQuote(ctx context.Context, folderID string) (*Quote, error)
	ListForms(ctx context.Context, folderID string) ([]FormAssignment, error)
	ListEsignatures(ctx context.Context, folderID string) ([]Esignature, error)
	// GetShipment returns a zero-value Shipment when none exists.
	GetShipment(ctx context.Context, folderID string) (Shipment, error)
	GetAccountID(ctx context.Context, customerID string) (string, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetFolder(ctx context.Context, id string) (*Folder, error) {
	f := &Folder{}
	query := `SELECT id, customer_id, COALESCE(stage, ''), COALESCE(next_step, ''), COALESCE(next_step_owner, ''), files_total, files_viewed FROM folders WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.CustomerID, &f.Stage, &f.NextStep, &f.NextStepOwner, &f.FilesTotal, &f.FilesViewed)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *PostgresRepo) GetQuote(ctx context.Context, folderID string) (*Quote, error) {
	q := &Quote{}
	query := `SELECT id, COALESCE(status, ''), COALESCE(payment_status, ''), COALESCE(quote_number, ''), total, tax_rate, COALESCE(currency, 'USD') FROM quotes WHERE folder_id = $1`
	err := r.db.QueryRowContext(ctx, query, folderID).Scan(&q.ID, &q.Status, &q.PaymentStatus, &q.QuoteNumber, &q.Total, &q.TaxRate, &q.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.listLineItems(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.LineItems = items
	return q, nil
}

func (r *PostgresRepo) listLineItems(ctx context.Context, quoteID string) ([]LineItem, error) {
	query := `SELECT id, description, price, quantity FROM quote_line_items WHERE quote_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.Description, &item.Price, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepo) ListForms(ctx context.Context, folderID string) ([]FormAssignment, error) {
	query := `SELECT id, name, is_completed, COALESCE(delivery_timing, 'before_delivery') FROM form_assignments WHERE folder_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []FormAssignment
	for rows.Next() {
		var f FormAssignment
		if err := rows.Scan(&f.ID, &f.Name, &f.IsCompleted, &f.DeliveryTiming); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

func (r *PostgresRepo) ListEsignatures(ctx context.Context, folderID string) ([]Esignature, error) {
	query := `SELECT id, name, is_completed FROM esignatures WHERE folder_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []Esignature
	for rows.Next() {
		var e Esignature
		if err := rows.Scan(&e.ID, &e.Name, &e.IsCompleted); err != nil {
			return nil, err
		}
		sigs = append(sigs, e)
	}
	return sigs, rows.Err()
}

func (r *PostgresRepo) GetShipment(ctx context.Context, folderID string) (Shipment, error) {
	var s Shipment
	query := `SELECT COALESCE(status, ''), COALESCE(actual_delivery_date, '') FROM shipments WHERE folder_id = $1`
	err := r.db.QueryRowContext(ctx, query, folderID).Scan(&s.Status, &s.ActualDeliveryDate)
	if errors.Is(err, sql.ErrNoRows) {
		return Shipment{}, nil
	}
	if err != nil {
		return Shipment{}, err
	}
	s.HasShipment = true
	return s, nil
}

func (r *PostgresRepo) GetAccountID(ctx context.Context, customerID string) (string, error) {
	var accountID string
	query := `SELECT account_id FROM customers WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&accountID)
	if err != nil {
		return "", err
	}
	return accountID, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/ecomcore/storefront/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	log.Println("Connected to postgres!")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// CreateOrder inserts the order and its order.recorded outbox event in one
// transaction. A duplicate idempotency key maps to ErrDuplicateCheckout so
// the caller can replay the original outcome instead of double-charging.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	productsJSON, err := json.Marshal(order.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal order products: %w", err)
	}
	paymentJSON, err := json.Marshal(order.Payment)
	if err != nil {
		return fmt.Errorf("failed to marshal payment outcome: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, buyer_id, buyer_name, idempotency_key, products, payment, status, total_amount, currency, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		order.ID,
		order.BuyerID,
		order.BuyerName,
		order.IdempotencyKey,
		productsJSON,
		paymentJSON,
		order.Status,
		order.TotalAmount,
		order.Currency)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	if err := insertOutboxEvent(ctx, tx, order, EventOrderRecorded); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func insertOutboxEvent(ctx context.Context, tx *sql.Tx, order *domain.Order, eventType string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":        order.ID,
		"buyer_id":        order.BuyerID,
		"status":          order.Status,
		"payment_success": order.Payment.Success,
		"total_amount":    order.TotalAmount,
		"currency":        order.Currency,
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	query := `INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, NOW())`
	if _, err := tx.ExecContext(ctx, query, order.ID.String(), eventType, payload); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

const orderColumns = `id, buyer_id, buyer_name, idempotency_key, products, payment, status, total_amount, currency, created_at, updated_at`

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE idempotency_key = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, key))
}

func (r *Repository) scanOne(row *sql.Row) (*domain.Order, error) {
	var order domain.Order
	var productsJSON, paymentJSON []byte
	err := row.Scan(
		&order.ID,
		&order.BuyerID,
		&order.BuyerName,
		&order.IdempotencyKey,
		&productsJSON,
		&paymentJSON,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := json.Unmarshal(productsJSON, &order.Products); err != nil {
		return nil, fmt.Errorf("unmarshal order products: %w", err)
	}
	if err := json.Unmarshal(paymentJSON, &order.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment outcome: %w", err)
	}

	return &order, nil
}

func (r *Repository) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by buyer: %w", err)
	}
	return scanOrders(rows)
}

func (r *Repository) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all orders: %w", err)
	}
	return scanOrders(rows)
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		var productsJSON, paymentJSON []byte
		if err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&order.BuyerName,
			&order.IdempotencyKey,
			&productsJSON,
			&paymentJSON,
			&order.Status,
			&order.TotalAmount,
			&order.Currency,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		if err := json.Unmarshal(productsJSON, &order.Products); err != nil {
			return nil, fmt.Errorf("unmarshal order products: %w", err)
		}
		if err := json.Unmarshal(paymentJSON, &order.Payment); err != nil {
			return nil, fmt.Errorf("unmarshal payment outcome: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus mutates status and updated_at only; products, payment and
// created_at stay frozen. The status_changed outbox event rides the same
// transaction.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrOrderNotFound
	}

	order, err := r.scanOne(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if err := insertOutboxEvent(ctx, tx, order, EventOrderStatusChanged); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return order, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	          FROM outbox_events WHERE processed = FALSE ORDER BY id LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int) error {
	query := `UPDATE outbox_events SET processed = TRUE, processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

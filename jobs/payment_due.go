package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// overdueOrder is one fulfilled, unpaid dealer order past its deadline.
type overdueOrder struct {
	OrderID       int64
	SuperDealerID int64
	DealerEmail   string
	DealerName    string
	Total         float64
	DateToPay     time.Time
}

// PaymentDueJob scans fulfilled dealer orders whose payment deadline has
// passed and enqueues reminder emails. It never mutates order state; the
// ledger stays the single source of truth.
type PaymentDueJob struct {
	pool   *pgxpool.Pool
	client *Client
	logger *slog.Logger
}

// NewPaymentDueJob constructs the job.
func NewPaymentDueJob(pool *pgxpool.Pool, client *Client, logger *slog.Logger) *PaymentDueJob {
	return &PaymentDueJob{pool: pool, client: client, logger: logger}
}

// Handle processes TaskTypePaymentDueScan tasks.
func (j *PaymentDueJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PaymentDueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 100
	}

	overdue, err := j.scan(ctx, payload)
	if err != nil {
		return err
	}
	j.logger.Info("payment due scan", slog.Int("overdue", len(overdue)))

	for _, o := range overdue {
		body := fmt.Sprintf(
			"Hello %s,\n\nOrder #%d of %.2f was due on %s and is still unpaid. Please settle it with the company.",
			o.DealerName, o.OrderID, o.Total, o.DateToPay.Format("2006-01-02"),
		)
		_, err := j.client.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      o.DealerEmail,
			Subject: fmt.Sprintf("Payment overdue for order #%d", o.OrderID),
			Body:    body,
		})
		if err != nil {
			j.logger.Warn("enqueue payment reminder", slog.Any("error", err), slog.Int64("order_id", o.OrderID))
		}
	}
	return nil
}

func (j *PaymentDueJob) scan(ctx context.Context, payload PaymentDueScanPayload) ([]overdueOrder, error) {
	deadline := time.Now().Add(-time.Duration(payload.GraceDays) * 24 * time.Hour)
	rows, err := j.pool.Query(ctx, `SELECT o.id, o.super_dealer_id, u.email, u.name, o.total, o.date_to_pay
		FROM dealer_orders o
		JOIN users u ON u.super_dealer_id = o.super_dealer_id AND u.role = 'super_dealer'
		WHERE o.status = 'fulfilled' AND o.is_paid = false AND o.date_to_pay < $1
		ORDER BY o.date_to_pay
		LIMIT $2`, deadline, payload.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overdue []overdueOrder
	for rows.Next() {
		var o overdueOrder
		if err := rows.Scan(&o.OrderID, &o.SuperDealerID, &o.DealerEmail, &o.DealerName, &o.Total, &o.DateToPay); err != nil {
			return nil, err
		}
		overdue = append(overdue, o)
	}
	return overdue, rows.Err()
}

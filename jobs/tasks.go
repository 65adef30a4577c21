package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypePaymentDueScan is the task type for the dealer payment
	// deadline scan.
	TaskTypePaymentDueScan = "dealer:payment_due_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with an SMTP relay.
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}

// PaymentDueScanPayload bounds one scan run.
type PaymentDueScanPayload struct {
	// GraceDays widens the deadline before an order counts as overdue.
	GraceDays int `json:"grace_days"`
	// Limit caps how many orders one run reports on.
	Limit int `json:"limit"`
}

// NewPaymentDueScanTask constructs an Asynq task.
func NewPaymentDueScanTask(graceDays, limit int) (*asynq.Task, error) {
	data, err := json.Marshal(PaymentDueScanPayload{GraceDays: graceDays, Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePaymentDueScan, data), nil
}

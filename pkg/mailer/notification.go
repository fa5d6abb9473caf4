package mailer

// Notification events published by the application workflow. The worker owns
// delivery and its retries; publishers never wait on it.
const (
	EventApplicationApproved  = "application_approved"
	EventApplicationRejected  = "application_rejected"
	EventConfirmationReceived = "confirmation_received"
)

// NotificationJob is the JSON payload put on the RabbitMQ queue for the
// notification worker.
type NotificationJob struct {
	Event    string         `json:"event"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

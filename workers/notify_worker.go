package workers

import (
	"context"
	"log"

	"campus-event-system/utils"
)

// Notification is one best-effort outbound side effect: a confirmation
// email, a Discord publish embed, or both are modeled as separate items.
type Notification struct {
	Email   *utils.TicketEmail
	Discord *discordJob
}

type discordJob struct {
	WebhookURL string
	Notice     utils.DiscordEventNotice
}

// NotifyWorker drains a buffered channel of notifications in the background.
// Delivery failures are logged and dropped; the primary operation that
// enqueued the notification never sees them.
type NotifyWorker struct {
	queue chan Notification
}

func NewNotifyWorker(buffer int) *NotifyWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotifyWorker{queue: make(chan Notification, buffer)}
}

// Start runs the dispatch loop until ctx is cancelled.
func (w *NotifyWorker) Start(ctx context.Context) {
	log.Println("Starting notification worker...")
	for {
		select {
		case <-ctx.Done():
			log.Println("Notification worker stopping")
			return
		case n := <-w.queue:
			w.dispatch(n)
		}
	}
}

// EnqueueEmail queues a ticket confirmation email. Never blocks: if the
// queue is full the notification is dropped with a log line.
func (w *NotifyWorker) EnqueueEmail(mail utils.TicketEmail) {
	w.enqueue(Notification{Email: &mail})
}

// EnqueueDiscord queues a publish announcement for the organizer's webhook.
func (w *NotifyWorker) EnqueueDiscord(webhookURL string, notice utils.DiscordEventNotice) {
	if webhookURL == "" {
		return
	}
	w.enqueue(Notification{Discord: &discordJob{WebhookURL: webhookURL, Notice: notice}})
}

func (w *NotifyWorker) enqueue(n Notification) {
	select {
	case w.queue <- n:
	default:
		log.Println("⚠️  Notification queue full — dropping notification")
	}
}

func (w *NotifyWorker) dispatch(n Notification) {
	if n.Email != nil {
		if err := utils.SendTicketEmail(*n.Email); err != nil {
			log.Printf("Failed to send email to %s: %v", n.Email.To, err)
		}
	}
	if n.Discord != nil {
		if err := utils.SendDiscordNotification(n.Discord.WebhookURL, n.Discord.Notice); err != nil {
			log.Printf("Failed to send Discord notification: %v", err)
		}
	}
}

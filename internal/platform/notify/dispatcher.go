// Package notify delivers best-effort email notifications off the request path.
package notify

import (
	"context"
	"html"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/diagnosis/stayvista-server/internal/platform/mailer"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

type Notification struct {
	To      string
	Subject string
	Message string
}

// Notifier accepts a notification and returns without waiting for delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type Dispatcher struct {
	mailer      mailer.Service
	sem         *semaphore.Weighted
	sendTimeout time.Duration
	wg          sync.WaitGroup
}

func NewDispatcher(m mailer.Service, maxInFlight int64, sendTimeout time.Duration) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		mailer:      m,
		sem:         semaphore.NewWeighted(maxInFlight),
		sendTimeout: sendTimeout,
	}
}

// Notify makes one delivery attempt in the background. If the pool is full the
// notification is dropped. Errors are logged and counted, never returned.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if !d.sem.TryAcquire(1) {
		metrics.RecordNotification("dropped")
		logger.WarnContext(ctx, "Notification dropped, dispatcher saturated", "to", n.To, "subject", n.Subject)
		return
	}

	// detach from the request so delivery outlives the response
	logCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)

		sendCtx, cancel := context.WithTimeout(logCtx, d.sendTimeout)
		defer cancel()

		msgID, err := d.mailer.Send(sendCtx, n.To, "", n.Subject, n.Message, "<p>"+html.EscapeString(n.Message)+"</p>")
		if err != nil {
			metrics.RecordNotification("failed")
			logger.ErrorContext(logCtx, "Failed to send notification", "error", err, "to", n.To, "subject", n.Subject)
			return
		}
		metrics.RecordNotification("sent")
		logger.DebugContext(logCtx, "Notification sent", "to", n.To, "subject", n.Subject, "message_id", msgID)
	}()
}

// Close waits for in-flight deliveries or until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

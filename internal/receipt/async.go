package receipt

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// AsyncDispatcher sends receipts on background goroutines so that a slow
// mail server never delays the response that triggered it.
type AsyncDispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncDispatcher(sender Sender, logger *slog.Logger, timeout time.Duration) *AsyncDispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AsyncDispatcher{
		sender:  sender,
		logger:  logger,
		timeout: timeout,
	}
}

func (d *AsyncDispatcher) Dispatch(ctx context.Context, req domain.ReceiptRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	d.wg.Add(1)

	// detached from the request so the send outlives the response
	go func(ctx context.Context) {
		defer d.wg.Done()

		logger := d.logger.With("receipt_id", req.ID, "booking_reference", req.BookingReference)

		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic occurred during sending receipt", "panic", err)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, req); err != nil {
			logger.Error("failed to send receipt", "error", err)
			return
		}

		logger.Info("receipt sent successfully")
	}(context.WithoutCancel(ctx))

	return nil
}

// Wait blocks until every dispatched receipt has been handled.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}

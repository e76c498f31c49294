package usecase

import (
	"context"
	"time"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

const notifyTimeout = 15 * time.Second

// notifier runs out-of-band admin notifications after the primary write has
// committed. It never blocks the caller and only logs failures.
type notifier struct {
	admin domain.AdminNotifier
	log   *logrus.Logger
	// done is signalled after each dispatch finishes; tests hook it.
	done func()
}

func (n *notifier) dispatch(ctx context.Context, what string, send func(context.Context, domain.AdminNotifier) error) {
	if n == nil || n.admin == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		if n.done != nil {
			defer n.done()
		}
		ctx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if err := send(ctx, n.admin); err != nil {
			n.log.Warnf("Use Case: %s notification failed (not retried): %v", what, err)
			return
		}
		n.log.Infof("Use Case: %s notification sent", what)
	}()
}

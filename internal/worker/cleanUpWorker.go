package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/eventhub/internal/service"

	"github.com/sirupsen/logrus"
)

// CleanupWorker periodically removes stale OTPs and verification tokens.
// Both are kept for a while after expiry so a late attempt still reads as
// expired rather than unknown.
type CleanupWorker struct {
	issuer         service.TokenIssuer
	interval       time.Duration
	otpRetention   time.Duration
	tokenRetention time.Duration
}

func NewCleanupWorker(issuer service.TokenIssuer, interval, otpRetention, tokenRetention time.Duration) *CleanupWorker {
	return &CleanupWorker{
		issuer:         issuer,
		interval:       interval,
		otpRetention:   otpRetention,
		tokenRetention: tokenRetention,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("Cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *CleanupWorker) RunOnce(ctx context.Context) {
	otps, tokens, err := w.issuer.PurgeExpired(ctx, w.otpRetention, w.tokenRetention)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"otps_removed": otps,
			"error":        err,
		}).Error("Cleanup pass failed")
		return
	}

	if otps == 0 && tokens == 0 {
		logrus.Debug("Nothing to clean up")
		return
	}
	logrus.WithFields(logrus.Fields{
		"otps_removed":   otps,
		"tokens_removed": tokens,
	}).Info("Cleanup pass completed")
}

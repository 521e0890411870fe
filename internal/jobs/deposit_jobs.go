package jobs

import (
	"context"

	"consulthub-ledger/internal/logger"
)

const pollBatchSize = 100

// PollPendingDeposits asks the payment gateway for the status of deposits
// that have been processing without a webhook confirmation. This is the
// safety net for lost or delayed webhook deliveries.
func (jr *JobRunner) PollPendingDeposits() {
	jr.runWithRecovery("PollPendingDeposits", func() {
		ctx := context.Background()

		resolved, err := jr.services.Deposit.PollUnresolved(ctx, pollBatchSize)
		if err != nil {
			logger.Error("Failed to poll pending deposits", "error", err)
			return
		}
		logger.Info("Polled pending deposits", "resolved", resolved)
	})
}

// ExpireStaleDeposits fails deposits that never produced a gateway charge
// and have been pending past the configured expiry window.
func (jr *JobRunner) ExpireStaleDeposits() {
	jr.runWithRecovery("ExpireStaleDeposits", func() {
		ctx := context.Background()

		expired, err := jr.services.Deposit.ExpireStale(ctx)
		if err != nil {
			logger.Error("Failed to expire stale deposits", "error", err)
			return
		}
		logger.Info("Expired stale deposits", "count", expired)
	})
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultSyncLockTTL = 30 * time.Second

// SyncService reconciles card payments with the remote checkout provider.
// Syncs are admin-triggered, never polled.
type SyncService struct {
	payments *PaymentService
	provider payment.CheckoutProvider
	locker   shared.Locker
	lockTTL  time.Duration
	logger   *zap.Logger
}

// SyncServiceConfig holds the dependencies of SyncService
type SyncServiceConfig struct {
	Payments *PaymentService
	Provider payment.CheckoutProvider
	// Locker serialises concurrent syncs of one payment; optional
	Locker  shared.Locker
	LockTTL time.Duration
	Logger  *zap.Logger
}

// NewSyncService creates a SyncService
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	l := cfg.Logger
	if l == nil {
		l = zap.NewNop()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultSyncLockTTL
	}
	return &SyncService{
		payments: cfg.Payments,
		provider: cfg.Provider,
		locker:   cfg.Locker,
		lockTTL:  ttl,
		logger:   l.Named("payment_sync"),
	}
}

// remoteView is what the provider told us about a payment
type remoteView struct {
	status        *payment.Status
	rawStatus     string
	paymentID     string
	providerError error
}

// SyncPayment reconciles one payment against the provider.
//
// Only CARD payments processed by polar that carry a checkout id or provider
// payment id are eligible; anything else is rejected before any remote call.
// With ForceSync a PENDING payment is marked PAID whatever status the provider
// reports, but a provider that cannot be reached still fails the sync.
// Otherwise the local status is only written when it differs from the remote one.
func (s *SyncService) SyncPayment(ctx context.Context, id uuid.UUID, opts SyncOptions) (*SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_sync", "sync",
		telemetry.SpanPaymentID.String(id.String()),
		telemetry.SpanForceSync.Bool(opts.ForceSync),
	)
	res, err := s.syncPayment(ctx, id, opts)
	if err != nil {
		telemetry.EndSpan(span, err)
		return nil, err
	}
	telemetry.EndSpan(span, nil,
		telemetry.SpanSynced.Bool(res.Synced),
		telemetry.SpanUpdated.Bool(res.Updated),
		telemetry.SpanRemote.String(res.RemoteStatus),
	)
	return res, nil
}

func (s *SyncService) syncPayment(ctx context.Context, id uuid.UUID, opts SyncOptions) (*SyncResult, error) {
	p, err := s.payments.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.payments.lookupFailure(ctx, err, zap.String("payment_id", id.String()))
	}
	if !p.IsSyncable() {
		return nil, payment.ErrSyncNotApplicable
	}
	if !p.HasRemoteIdentifiers() {
		return nil, payment.ErrSyncMissingIdentifiers
	}

	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another writer may have settled the payment while we waited for the lock.
	p, err = s.payments.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.payments.lookupFailure(ctx, err, zap.String("payment_id", id.String()))
	}

	forced := opts.ForceSync && p.Status == payment.StatusPending
	view := s.fetchRemote(ctx, p)
	if view.providerError != nil {
		return nil, view.providerError
	}

	result := &SyncResult{
		PreviousStatus: p.Status.String(),
		CurrentStatus:  p.Status.String(),
		RemoteStatus:   view.rawStatus,
		Forced:         forced,
	}

	var patch payment.Patch
	switch {
	case forced:
		paid := payment.StatusPaid
		now := s.payments.now()
		actor := opts.Actor
		patch.Status = &paid
		patch.ConfirmedAt = &now
		patch.ConfirmedBy = &actor
	case view.status == nil:
		result.Message = "Remote status could not be determined; payment not synced"
		result.Payment = ToPaymentResponse(p)
		return result, nil
	case *view.status != p.Status:
		patch.Status = view.status
	}
	if view.paymentID != "" && p.ProviderPaymentID == "" {
		patch.ProviderPaymentID = &view.paymentID
	}
	result.Synced = true

	if patch.IsEmpty() {
		result.Message = "Payment already in sync with provider"
		loaded, err := s.payments.GetPayment(ctx, id)
		if err != nil {
			return nil, err
		}
		result.Payment = loaded
		return result, nil
	}

	entry := payment.SyncEntry{
		SyncedBy:       opts.Actor,
		Forced:         forced,
		RemoteStatus:   view.rawStatus,
		PreviousStatus: p.Status,
	}
	updated, err := s.payments.mutate(ctx, id, mutation{
		source:    SourceSync,
		aggregate: patch.TouchesStatus(),
		apply: func(p *payment.Payment) error {
			if err := p.Apply(patch); err != nil {
				return err
			}
			entry.SyncedAt = p.UpdatedAt
			entry.NewStatus = p.Status
			p.Metadata.Syncs = append(p.Metadata.Syncs, entry)
			return nil
		},
	})
	if err != nil {
		return nil, s.payments.failure(ctx, err, payment.ErrUpdatePaymentFailed, "Failed to apply provider sync",
			zap.String("payment_id", id.String()))
	}

	result.Updated = true
	result.CurrentStatus = updated.Status.String()
	result.Payment = ToPaymentResponse(updated)
	if forced {
		result.Message = "Payment force-marked as paid"
	} else {
		result.Message = fmt.Sprintf("Payment status updated from %s to %s", result.PreviousStatus, result.CurrentStatus)
	}
	s.log(ctx).Info("Payment synced with provider",
		zap.String("payment_id", id.String()),
		zap.String("previous_status", result.PreviousStatus),
		zap.String("current_status", result.CurrentStatus),
		zap.String("remote_status", view.rawStatus),
		zap.Bool("forced", forced))
	return result, nil
}

// fetchRemote asks the provider for the checkout and, when known, the order.
// The order lookup refines and may override the checkout mapping.
func (s *SyncService) fetchRemote(ctx context.Context, p *payment.Payment) remoteView {
	var view remoteView
	if s.provider == nil {
		view.providerError = payment.ErrProviderUnavailable.WithMessage("checkout provider is not configured")
		return view
	}
	if p.CheckoutID != "" {
		checkout, err := s.provider.GetCheckout(ctx, p.CheckoutID)
		if err != nil {
			view.providerError = s.mapProviderError(ctx, p.ID, err)
			return view
		}
		if st, ok := payment.MapCheckoutStatus(checkout.Status); ok {
			view.status = &st
			view.rawStatus = checkout.Status
		}
		view.paymentID = checkout.PaymentID
	}
	if p.ProviderOrderID != "" {
		order, err := s.provider.GetOrder(ctx, p.ProviderOrderID)
		if err != nil {
			view.providerError = s.mapProviderError(ctx, p.ID, err)
			return view
		}
		if st, ok := payment.MapOrderStatus(order.Status); ok {
			view.status = &st
			view.rawStatus = order.Status
		}
	}
	return view
}

// mapProviderError turns provider failures into 503 / 404 / 503 domain errors
func (s *SyncService) mapProviderError(ctx context.Context, paymentID uuid.UUID, err error) error {
	s.log(ctx).Warn("Provider request failed",
		zap.String("payment_id", paymentID.String()), zap.Error(err))

	var pe *payment.ProviderError
	if !errors.As(err, &pe) {
		return payment.ErrProviderUnavailable.WithMessage(err.Error())
	}
	switch {
	case pe.IsUnauthorized():
		return payment.ErrProviderUnauthorized
	case pe.IsNotFound():
		return payment.ErrProviderNotFound
	default:
		msg := pe.Message
		if msg == "" {
			msg = pe.Error()
		}
		return payment.ErrProviderUnavailable.WithMessage(msg)
	}
}

func (s *SyncService) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := "payment:sync:" + id.String()
	token, ok, err := s.locker.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		s.log(ctx).Error("Failed to acquire sync lock", zap.String("key", key), zap.Error(err))
		return nil, shared.ErrUnavailable.WithMessage("Sync lock unavailable")
	}
	if !ok {
		return nil, payment.ErrSyncInProgress
	}
	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, key, token); err != nil {
			s.log(ctx).Warn("Failed to release sync lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *SyncService) log(ctx context.Context) *zap.Logger {
	return logger.Enrich(ctx, s.logger)
}

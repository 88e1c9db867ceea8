package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// Admin PUT actions
const (
	ActionConfirmCash   = "confirmCash"
	ActionProcessRefund = "processRefund"
	ActionUpdateStatus  = "updateStatus"
)

// ErrUnknownAction is returned for a PUT action outside the known set
var ErrUnknownAction = shared.NewDomainError("INVALID_ACTION", "Unknown payment action")

// PaymentCommand is an admin action on a single payment. The set is closed:
// the unexported marker keeps other packages from adding commands, so every
// PaymentCommandVisitor handles all of them.
type PaymentCommand interface {
	Accept(v PaymentCommandVisitor) (*PaymentResponse, error)
	Action() string
	sealed()
}

// PaymentCommandVisitor handles each PaymentCommand variant
type PaymentCommandVisitor interface {
	VisitConfirmCash(cmd ConfirmCashCommand) (*PaymentResponse, error)
	VisitRefund(cmd RefundCommand) (*PaymentResponse, error)
	VisitUpdateStatus(cmd UpdateStatusCommand) (*PaymentResponse, error)
}

// ConfirmCashCommand records that the courier collected the cash
type ConfirmCashCommand struct {
	ConfirmedBy string
	Notes       string
}

func (c ConfirmCashCommand) Accept(v PaymentCommandVisitor) (*PaymentResponse, error) {
	return v.VisitConfirmCash(c)
}
func (ConfirmCashCommand) Action() string { return ActionConfirmCash }
func (ConfirmCashCommand) sealed()        {}

// RefundCommand refunds a payment
type RefundCommand struct {
	Amount     decimal.Decimal
	Reason     string
	RefundedBy string
}

func (c RefundCommand) Accept(v PaymentCommandVisitor) (*PaymentResponse, error) {
	return v.VisitRefund(c)
}
func (RefundCommand) Action() string { return ActionProcessRefund }
func (RefundCommand) sealed()        {}

// UpdateStatusCommand patches a payment
type UpdateStatusCommand struct {
	Input UpdatePaymentInput
}

func (c UpdateStatusCommand) Accept(v PaymentCommandVisitor) (*PaymentResponse, error) {
	return v.VisitUpdateStatus(c)
}
func (UpdateStatusCommand) Action() string { return ActionUpdateStatus }
func (UpdateStatusCommand) sealed()        {}

// CommandFields is the flat shape of an admin PUT body
type CommandFields struct {
	Action        string
	Actor         string
	Notes         string
	Amount        *decimal.Decimal
	Reason        string
	Status        string
	FailureReason *string

	// Identifier and confirmation overrides, read by updateStatus only
	CheckoutID        *string
	ProviderPaymentID *string
	ProviderOrderID   *string
	ConfirmedAt       *time.Time
	ConfirmedBy       *string
}

// ParsePaymentCommand builds the command named by f.Action
func ParsePaymentCommand(f CommandFields) (PaymentCommand, error) {
	switch f.Action {
	case ActionConfirmCash:
		return ConfirmCashCommand{ConfirmedBy: f.Actor, Notes: f.Notes}, nil
	case ActionProcessRefund:
		if f.Amount == nil {
			return nil, payment.ErrRefundAmountInvalid
		}
		return RefundCommand{Amount: *f.Amount, Reason: strings.TrimSpace(f.Reason), RefundedBy: f.Actor}, nil
	case ActionUpdateStatus:
		in := UpdatePaymentInput{
			CheckoutID:        f.CheckoutID,
			ProviderPaymentID: f.ProviderPaymentID,
			ProviderOrderID:   f.ProviderOrderID,
			ConfirmedAt:       f.ConfirmedAt,
			ConfirmedBy:       f.ConfirmedBy,
			FailureReason:     f.FailureReason,
		}
		if f.Status != "" {
			st := payment.Status(strings.ToUpper(f.Status))
			in.Status = &st
		}
		return UpdateStatusCommand{Input: in}, nil
	default:
		return nil, ErrUnknownAction
	}
}

// ExecuteCommand runs cmd against the payment id
func (s *PaymentService) ExecuteCommand(ctx context.Context, id uuid.UUID, cmd PaymentCommand) (*PaymentResponse, error) {
	return cmd.Accept(&commandExecutor{ctx: ctx, id: id, svc: s})
}

type commandExecutor struct {
	ctx context.Context
	id  uuid.UUID
	svc *PaymentService
}

func (e *commandExecutor) VisitConfirmCash(cmd ConfirmCashCommand) (*PaymentResponse, error) {
	return e.svc.ConfirmCashReceived(e.ctx, e.id, cmd.ConfirmedBy, cmd.Notes)
}

func (e *commandExecutor) VisitRefund(cmd RefundCommand) (*PaymentResponse, error) {
	return e.svc.HandleRefund(e.ctx, e.id, RefundInput(cmd))
}

func (e *commandExecutor) VisitUpdateStatus(cmd UpdateStatusCommand) (*PaymentResponse, error) {
	return e.svc.UpdatePaymentStatus(e.ctx, e.id, cmd.Input)
}

var _ PaymentCommandVisitor = (*commandExecutor)(nil)

package payment

// Currency is the ISO currency of a payment or order
type Currency string

const (
	CurrencyMKD Currency = "MKD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// IsValid returns true if the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyMKD, CurrencyUSD, CurrencyEUR:
		return true
	default:
		return false
	}
}

func (c Currency) String() string { return string(c) }

// Method is how the customer pays
type Method string

const (
	MethodCard           Method = "CARD"
	MethodCashOnDelivery Method = "CASH_ON_DELIVERY"
	MethodBankTransfer   Method = "BANK_TRANSFER"
	MethodDigitalWallet  Method = "DIGITAL_WALLET"
)

// Provider names
const (
	ProviderPolar = "polar"
	ProviderCash  = "cash"
)

// IsValid returns true if the method is supported
func (m Method) IsValid() bool {
	switch m {
	case MethodCard, MethodCashOnDelivery, MethodBankTransfer, MethodDigitalWallet:
		return true
	default:
		return false
	}
}

func (m Method) String() string { return string(m) }

// DefaultProvider returns the processor used when none is supplied
func (m Method) DefaultProvider() string {
	if m == MethodCashOnDelivery {
		return ProviderCash
	}
	return ProviderPolar
}

// InitialStatus returns the status a new payment of this method starts in
func (m Method) InitialStatus() Status {
	if m == MethodCashOnDelivery {
		return StatusCashPending
	}
	return StatusPending
}

// Status is the payment status. The same enum is used for the derived
// order-level payment status.
//
// Intended transitions (not enforced):
//
//	PENDING      -> PAID | FAILED
//	CASH_PENDING -> CASH_RECEIVED
//	PAID | CASH_RECEIVED -> REFUNDED
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusCashPending  Status = "CASH_PENDING"
	StatusPaid         Status = "PAID"
	StatusCashReceived Status = "CASH_RECEIVED"
	StatusFailed       Status = "FAILED"
	StatusRefunded     Status = "REFUNDED"
)

// AllStatuses lists every status value
func AllStatuses() []Status {
	return []Status{StatusPending, StatusCashPending, StatusPaid, StatusCashReceived, StatusFailed, StatusRefunded}
}

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCashPending, StatusPaid, StatusCashReceived, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// CountsAsPaid reports whether money from a payment in this status has been collected
func (s Status) CountsAsPaid() bool {
	return s == StatusPaid || s == StatusCashReceived
}

// IsAwaiting reports whether the payment is still waiting for money
func (s Status) IsAwaiting() bool {
	return s == StatusPending || s == StatusCashPending
}

func (s Status) String() string { return string(s) }

// OrderStatus is the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid returns true if the order status is known
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string { return string(s) }

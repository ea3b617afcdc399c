// Package realtime pushes fire-and-forget events to connected clients.
// Delivery is best-effort: a dropped frame never fails or rolls back the
// ledger mutation that produced it.
package realtime

// Room names scope events to their recipients.
const (
	AdminRoom = "admin"
)

func CustomerRoom(customerID string) string { return "customer_" + customerID }
func MerchantRoom(merchantID string) string { return "merchant_" + merchantID }
func BranchRoom(branchID string) string     { return "branch_" + branchID }
func StaffRoom(staffID string) string       { return "staff_" + staffID }

// Event names emitted by the services.
const (
	EventTransactionCreated   = "transaction_created"
	EventTransactionConfirmed = "transaction_confirmed"
	EventTransactionCancelled = "transaction_cancelled"
	EventTransactionReturned  = "transaction_returned"
	EventPaymentCompleted     = "payment_completed"
	EventCreditUpdated        = "credit_updated"
	EventCreditRequestNew     = "credit_request_new"
	EventSettlementApproved   = "settlement_approved"
	EventSettlementTransferred = "settlement_transferred"
	EventMerchantApproved     = "merchant_approved"
)

// Broadcaster delivers an event to every listener in a room. It is
// injected into services so the process-scoped hub can be swapped for a
// shared implementation without touching call sites.
type Broadcaster interface {
	Emit(room, event string, payload interface{})
}

// NoopBroadcaster drops all events; used in tests and seed tooling.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Emit(room, event string, payload interface{}) {}

// Package settlement aggregates a merchant's paid transactions into
// periodic payouts net of commission. A transaction joins at most one
// settlement; linking happens in the same storage transaction as the
// settlement row itself.
package settlement

import (
	"math"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/models"
	"bariq/internal/realtime"
	"bariq/internal/repositories"
	"bariq/internal/services/access"
	"bariq/internal/services/audit"
	"bariq/internal/utils"

	"github.com/google/uuid"
)

// Service manages merchant settlements.
type Service interface {
	// Generate builds a settlement over the merchant's unsettled paid
	// transactions within [periodStart, periodEnd).
	Generate(actor audit.Actor, merchantID string, periodStart, periodEnd time.Time) (*models.Settlement, error)

	Approve(actor audit.Actor, settlementID string) (*models.Settlement, error)
	MarkTransferred(actor audit.Actor, settlementID, transferReference string) (*models.Settlement, error)

	Get(settlementID string) (*models.Settlement, error)
	GetForMerchant(staff *models.MerchantUser, settlementID string) (*models.Settlement, error)
	List(f repositories.SettlementFilter) ([]models.Settlement, int64, error)
	ListForMerchant(staff *models.MerchantUser, f repositories.SettlementFilter) ([]models.Settlement, int64, error)
	Transactions(settlementID string) ([]models.Transaction, error)
}

type service struct {
	settlements repositories.SettlementRepository
	txs         repositories.TransactionRepository
	merchants   repositories.MerchantRepository
	auditor     audit.Recorder
	broadcast   realtime.Broadcaster
}

func NewService(
	settlements repositories.SettlementRepository,
	txs repositories.TransactionRepository,
	merchants repositories.MerchantRepository,
	auditor audit.Recorder,
	broadcast realtime.Broadcaster,
) Service {
	if settlements == nil {
		panic("settlement: settlement repository is required")
	}
	if txs == nil {
		panic("settlement: transaction repository is required")
	}
	if merchants == nil {
		panic("settlement: merchant repository is required")
	}
	if auditor == nil {
		auditor = audit.NoopRecorder{}
	}
	if broadcast == nil {
		broadcast = realtime.NoopBroadcaster{}
	}
	return &service{
		settlements: settlements,
		txs:         txs,
		merchants:   merchants,
		auditor:     auditor,
		broadcast:   broadcast,
	}
}

// round2 keeps monetary splits at two decimals so gross always equals
// commission plus net.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func (s *service) Generate(actor audit.Actor, merchantID string, periodStart, periodEnd time.Time) (*models.Settlement, error) {
	if !periodEnd.After(periodStart) {
		return nil, apperr.Validation("period end must come after period start")
	}

	merchant, err := s.merchants.GetByID(merchantID)
	if err != nil {
		if err == repositories.ErrMerchantNotFound {
			return nil, apperr.NotFound("merchant not found")
		}
		return nil, apperr.Internal("failed to load merchant", err)
	}

	txs, err := s.txs.ListUnsettledPaid(merchantID, periodStart, periodEnd)
	if err != nil {
		return nil, apperr.Internal("failed to load unsettled transactions", err)
	}
	if len(txs) == 0 {
		return nil, apperr.Validation("no unsettled paid transactions in the period")
	}

	var gross float64
	ids := make([]string, 0, len(txs))
	for i := range txs {
		gross += txs[i].TotalAmount - txs[i].ReturnedAmount
		ids = append(ids, txs[i].ID)
	}
	gross = round2(gross)
	commission := round2(gross * merchant.CommissionRate / 100)

	settlement := &models.Settlement{
		ID:               uuid.NewString(),
		ReferenceNumber:  utils.GenerateReference(utils.RefPrefixSettlement),
		MerchantID:       merchantID,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		GrossAmount:      gross,
		CommissionAmount: commission,
		NetAmount:        round2(gross - commission),
		TransactionCount: len(txs),
		Status:           models.SettlementStatusPending,
	}

	if err := s.settlements.CreateWithTransactions(settlement, ids); err != nil {
		return nil, apperr.Internal("failed to create settlement", err)
	}

	s.auditor.Record(actor, "settlement_generated", "settlement", settlement.ID,
		nil,
		models.JSON{
			"merchant_id":  merchantID,
			"gross_amount": gross,
			"net_amount":   settlement.NetAmount,
			"transactions": len(ids),
		})
	return settlement, nil
}

func (s *service) Approve(actor audit.Actor, settlementID string) (*models.Settlement, error) {
	settlement, err := s.get(settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.Status != models.SettlementStatusPending {
		return nil, apperr.Conflict("settlement is %s and cannot be approved", settlement.Status)
	}

	now := time.Now().UTC()
	settlement.Status = models.SettlementStatusApproved
	settlement.ApprovedBy = &actor.ID
	settlement.ApprovedAt = &now
	if err := s.settlements.Update(settlement); err != nil {
		return nil, apperr.Internal("failed to approve settlement", err)
	}

	s.auditor.Record(actor, "settlement_approved", "settlement", settlement.ID,
		models.JSON{"status": models.SettlementStatusPending},
		models.JSON{"status": settlement.Status})
	s.broadcast.Emit(realtime.MerchantRoom(settlement.MerchantID), realtime.EventSettlementApproved, map[string]interface{}{
		"settlement_id": settlement.ID,
		"net_amount":    settlement.NetAmount,
	})
	return settlement, nil
}

func (s *service) MarkTransferred(actor audit.Actor, settlementID, transferReference string) (*models.Settlement, error) {
	if transferReference == "" {
		return nil, apperr.Validation("transfer reference is required")
	}

	settlement, err := s.get(settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.Status != models.SettlementStatusApproved {
		return nil, apperr.Conflict("settlement is %s and cannot be transferred", settlement.Status)
	}

	now := time.Now().UTC()
	settlement.Status = models.SettlementStatusTransferred
	settlement.TransferReference = transferReference
	settlement.TransferredAt = &now
	if err := s.settlements.Update(settlement); err != nil {
		return nil, apperr.Internal("failed to mark settlement transferred", err)
	}

	s.auditor.Record(actor, "settlement_transferred", "settlement", settlement.ID,
		models.JSON{"status": models.SettlementStatusApproved},
		models.JSON{"status": settlement.Status, "transfer_reference": transferReference})
	s.broadcast.Emit(realtime.MerchantRoom(settlement.MerchantID), realtime.EventSettlementTransferred, map[string]interface{}{
		"settlement_id":      settlement.ID,
		"transfer_reference": transferReference,
	})
	return settlement, nil
}

func (s *service) Get(settlementID string) (*models.Settlement, error) {
	return s.get(settlementID)
}

func (s *service) GetForMerchant(staff *models.MerchantUser, settlementID string) (*models.Settlement, error) {
	if !access.CanViewSettlements(staff) {
		return nil, apperr.AccessDenied("you cannot view settlements")
	}
	settlement, err := s.get(settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.MerchantID != staff.MerchantID {
		return nil, apperr.NotFound("settlement not found")
	}
	return settlement, nil
}

func (s *service) List(f repositories.SettlementFilter) ([]models.Settlement, int64, error) {
	settlements, total, err := s.settlements.List(f)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list settlements", err)
	}
	return settlements, total, nil
}

func (s *service) ListForMerchant(staff *models.MerchantUser, f repositories.SettlementFilter) ([]models.Settlement, int64, error) {
	if !access.CanViewSettlements(staff) {
		return nil, 0, apperr.AccessDenied("you cannot view settlements")
	}
	f.MerchantID = staff.MerchantID
	return s.List(f)
}

func (s *service) Transactions(settlementID string) ([]models.Transaction, error) {
	txs, err := s.settlements.ListTransactions(settlementID)
	if err != nil {
		return nil, apperr.Internal("failed to list settlement transactions", err)
	}
	return txs, nil
}

func (s *service) get(settlementID string) (*models.Settlement, error) {
	settlement, err := s.settlements.GetByID(settlementID)
	if err != nil {
		if err == repositories.ErrSettlementNotFound {
			return nil, apperr.NotFound("settlement not found")
		}
		return nil, apperr.Internal("failed to load settlement", err)
	}
	return settlement, nil
}

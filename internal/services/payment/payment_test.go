package payment

import (
	"errors"
	"testing"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/services/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentRepo struct {
	payments map[string]*models.Payment
	locked   map[string]time.Time
	txRepo   *fakeTxRepo

	lockAttempts int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*models.Payment{}, locked: map[string]time.Time{}}
}

func (f *fakePaymentRepo) Create(p *models.Payment) error { f.payments[p.ID] = p; return nil }
func (f *fakePaymentRepo) GetByID(id string) (*models.Payment, error) {
	if p, ok := f.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrPaymentNotFound
}
func (f *fakePaymentRepo) Update(p *models.Payment) error { f.payments[p.ID] = p; return nil }
func (f *fakePaymentRepo) ListForCustomer(string, int, int) ([]models.Payment, int64, error) {
	return nil, 0, nil
}
func (f *fakePaymentRepo) SaveWithTransaction(p *models.Payment, tx *models.Transaction) error {
	f.payments[p.ID] = p
	f.txRepo.txs[tx.ID] = tx
	delete(f.locked, p.ID)
	return nil
}
func (f *fakePaymentRepo) AcquireProcessingLock(paymentID string, timeout time.Duration) (bool, error) {
	f.lockAttempts++
	if at, held := f.locked[paymentID]; held && time.Since(at) < timeout {
		return false, nil
	}
	f.locked[paymentID] = time.Now()
	return true, nil
}
func (f *fakePaymentRepo) ReleaseProcessingLock(paymentID string) error {
	delete(f.locked, paymentID)
	return nil
}

type fakeTxRepo struct {
	txs map[string]*models.Transaction
}

func (f *fakeTxRepo) Create(tx *models.Transaction) error { f.txs[tx.ID] = tx; return nil }
func (f *fakeTxRepo) GetByID(id string) (*models.Transaction, error) {
	if tx, ok := f.txs[id]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) GetByReference(string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) Update(tx *models.Transaction) error { f.txs[tx.ID] = tx; return nil }
func (f *fakeTxRepo) ListForCustomer(customerID string, _ repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	var out []models.Transaction
	for _, tx := range f.txs {
		if tx.CustomerID == customerID {
			out = append(out, *tx)
		}
	}
	return out, int64(len(out)), nil
}
func (f *fakeTxRepo) ListScoped(string, access.Scope, repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) ListAll(repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) SumOpenRemaining(string) (float64, error)                        { return 0, nil }
func (f *fakeTxRepo) SaveReturn(*models.TransactionReturn, *models.Transaction) error { return nil }
func (f *fakeTxRepo) ListReturns(string, repositories.TransactionFilter) ([]models.TransactionReturn, error) {
	return nil, nil
}
func (f *fakeTxRepo) MarkOverdue(time.Time) (int64, error) { return 0, nil }
func (f *fakeTxRepo) ListOverdue(repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) ListUnsettledPaid(string, time.Time, time.Time) ([]models.Transaction, error) {
	return nil, nil
}

type failingGateway struct{}

func (failingGateway) Charge(float64, string, string) (string, error) {
	return "", errors.New("card declined")
}

func testRules() config.BusinessRules {
	return config.BusinessRules{
		MaxCreditLimit:       5000,
		MinTransactionAmount: 10,
		MaxTransactionAmount: 2000,
		PaymentLockTimeout:   60 * time.Second,
	}
}

func newFixture(t *testing.T) (Service, *fakePaymentRepo, *fakeTxRepo) {
	t.Helper()
	payments := newFakePaymentRepo()
	txs := &fakeTxRepo{txs: map[string]*models.Transaction{}}
	payments.txRepo = txs
	svc := NewService(payments, txs, instantGateway{}, nil, nil, testRules())
	return svc, payments, txs
}

func openTransaction(total float64) *models.Transaction {
	return &models.Transaction{
		ID:          "tx1",
		CustomerID:  "c1",
		MerchantID:  "m1",
		BranchID:    "b1",
		TotalAmount: total,
		Status:      models.TransactionStatusConfirmed,
		DueDate:     time.Now().AddDate(0, 0, 10),
	}
}

func TestMakePayment(t *testing.T) {
	t.Run("partial then final payment settles the transaction", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)

		p1, err := svc.MakePayment("c1", "tx1", 150, "cash")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, p1.Status)
		assert.Equal(t, 150.0, txs.txs["tx1"].PaidAmount)
		assert.Equal(t, models.TransactionStatusConfirmed, txs.txs["tx1"].Status)
		assert.Equal(t, 250.0, txs.txs["tx1"].RemainingAmount())

		p2, err := svc.MakePayment("c1", "tx1", 250, "cash")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, p2.Status)
		assert.Equal(t, models.TransactionStatusPaid, txs.txs["tx1"].Status)
		assert.Equal(t, 0.0, txs.txs["tx1"].RemainingAmount())
		assert.NotNil(t, txs.txs["tx1"].PaidAt)
	})

	t.Run("payment above the remaining balance is rejected", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		tx := openTransaction(400)
		tx.PaidAmount = 300
		txs.txs["tx1"] = tx

		_, err := svc.MakePayment("c1", "tx1", 150, "cash")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
		assert.Equal(t, 300.0, txs.txs["tx1"].PaidAmount)
	})

	t.Run("a settled transaction accepts no further payments", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		tx := openTransaction(400)
		tx.Status = models.TransactionStatusPaid
		tx.PaidAmount = 400
		txs.txs["tx1"] = tx

		_, err := svc.MakePayment("c1", "tx1", 10, "cash")
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
	})

	t.Run("overdue transactions still accept payments", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		tx := openTransaction(400)
		tx.Status = models.TransactionStatusOverdue
		txs.txs["tx1"] = tx

		_, err := svc.MakePayment("c1", "tx1", 400, "cash")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusPaid, txs.txs["tx1"].Status)
	})

	t.Run("rejects non-positive amounts and unknown methods", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)

		_, err := svc.MakePayment("c1", "tx1", 0, "cash")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))

		_, err = svc.MakePayment("c1", "tx1", 50, "crypto")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	t.Run("someone else's transaction reads as not found", func(t *testing.T) {
		svc, _, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)

		_, err := svc.MakePayment("other-customer", "tx1", 50, "cash")
		assert.Equal(t, apperr.KindNotFound, apperr.Kind(err))
	})
}

func TestProcessingLock(t *testing.T) {
	t.Run("a held lock makes the second attempt conflict", func(t *testing.T) {
		svc, payments, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)
		payments.payments["p1"] = &models.Payment{
			ID: "p1", TransactionID: "tx1", CustomerID: "c1",
			Amount: 100, PaymentMethod: "cash", Status: models.PaymentStatusFailed,
		}
		payments.locked["p1"] = time.Now()

		_, err := svc.Retry("c1", "p1")
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
		assert.Equal(t, 0.0, txs.txs["tx1"].PaidAmount)
	})

	t.Run("an expired lock can be re-acquired", func(t *testing.T) {
		svc, payments, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)
		payments.payments["p1"] = &models.Payment{
			ID: "p1", TransactionID: "tx1", CustomerID: "c1",
			Amount: 100, PaymentMethod: "cash", Status: models.PaymentStatusFailed,
		}
		payments.locked["p1"] = time.Now().Add(-2 * time.Minute)

		p, err := svc.Retry("c1", "p1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	})

	t.Run("the lock is released after a successful run", func(t *testing.T) {
		svc, payments, txs := newFixture(t)
		txs.txs["tx1"] = openTransaction(400)

		p, err := svc.MakePayment("c1", "tx1", 100, "cash")
		require.NoError(t, err)
		_, held := payments.locked[p.ID]
		assert.False(t, held)
	})
}

func TestGatewayFailure(t *testing.T) {
	payments := newFakePaymentRepo()
	txs := &fakeTxRepo{txs: map[string]*models.Transaction{"tx1": openTransaction(400)}}
	payments.txRepo = txs
	svc := NewService(payments, txs, failingGateway{}, nil, nil, testRules())

	_, err := svc.MakePayment("c1", "tx1", 100, "card")
	assert.Equal(t, apperr.KindValidation, apperr.Kind(err))

	// declined payment is recorded as failed, balance untouched, lock freed
	var failed *models.Payment
	for _, p := range payments.payments {
		failed = p
	}
	require.NotNil(t, failed)
	assert.Equal(t, models.PaymentStatusFailed, failed.Status)
	assert.Equal(t, 0.0, txs.txs["tx1"].PaidAmount)
	_, held := payments.locked[failed.ID]
	assert.False(t, held)

	t.Run("failed payment can be retried", func(t *testing.T) {
		retrySvc := NewService(payments, txs, instantGateway{}, nil, nil, testRules())
		p, err := retrySvc.Retry("c1", failed.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusCompleted, p.Status)
		assert.Equal(t, 100.0, txs.txs["tx1"].PaidAmount)
	})
}

func TestRetryCompletedConflicts(t *testing.T) {
	svc, _, txs := newFixture(t)
	txs.txs["tx1"] = openTransaction(400)

	p, err := svc.MakePayment("c1", "tx1", 100, "cash")
	require.NoError(t, err)

	_, err = svc.Retry("c1", p.ID)
	assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
	assert.Equal(t, 100.0, txs.txs["tx1"].PaidAmount)
}

func TestCustomerDebt(t *testing.T) {
	svc, _, txs := newFixture(t)

	due1 := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	due2 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	txs.txs["tx1"] = &models.Transaction{
		ID: "tx1", CustomerID: "c1", TotalAmount: 300, PaidAmount: 100,
		Status: models.TransactionStatusConfirmed, DueDate: due1,
	}
	txs.txs["tx2"] = &models.Transaction{
		ID: "tx2", CustomerID: "c1", TotalAmount: 200,
		Status: models.TransactionStatusOverdue, DueDate: due2,
	}
	txs.txs["tx3"] = &models.Transaction{
		ID: "tx3", CustomerID: "c1", TotalAmount: 500, PaidAmount: 500,
		Status: models.TransactionStatusPaid, DueDate: due1,
	}

	debt, err := svc.CustomerDebt("c1")
	require.NoError(t, err)
	assert.Equal(t, 400.0, debt.TotalOwed)
	assert.Equal(t, 2, debt.OpenCount)
	assert.Equal(t, 1, debt.OverdueCount)
	require.NotNil(t, debt.NextDueDate)
	assert.Equal(t, due2, *debt.NextDueDate)
}

package credit

import (
	"testing"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/config"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/services/access"
	"bariq/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomerRepo struct {
	customers map[string]*models.Customer
	updated   []*models.Customer
}

func (f *fakeCustomerRepo) Create(c *models.Customer) error { f.customers[c.ID] = c; return nil }
func (f *fakeCustomerRepo) GetByID(id string) (*models.Customer, error) {
	if c, ok := f.customers[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrCustomerNotFound
}
func (f *fakeCustomerRepo) GetByNationalID(nid string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.NationalID == nid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCustomerNotFound
}
func (f *fakeCustomerRepo) GetByPhone(phone string) (*models.Customer, error) {
	return nil, repositories.ErrCustomerNotFound
}
func (f *fakeCustomerRepo) List(repositories.CustomerFilter) ([]models.Customer, int64, error) {
	return nil, 0, nil
}
func (f *fakeCustomerRepo) Update(c *models.Customer) error {
	f.customers[c.ID] = c
	f.updated = append(f.updated, c)
	return nil
}

type fakeTxRepo struct {
	openRemaining map[string]float64
}

func (f *fakeTxRepo) Create(*models.Transaction) error                  { return nil }
func (f *fakeTxRepo) GetByID(string) (*models.Transaction, error)       { return nil, repositories.ErrTransactionNotFound }
func (f *fakeTxRepo) GetByReference(string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) Update(*models.Transaction) error { return nil }
func (f *fakeTxRepo) ListForCustomer(string, repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) ListScoped(string, access.Scope, repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) ListAll(repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return nil, 0, nil
}
func (f *fakeTxRepo) SumOpenRemaining(customerID string) (float64, error) {
	return f.openRemaining[customerID], nil
}
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

type fakeRequestRepo struct {
	requests map[string]*models.CreditLimitRequest
	applied  int
}

func (f *fakeRequestRepo) Create(r *models.CreditLimitRequest) error { f.requests[r.ID] = r; return nil }
func (f *fakeRequestRepo) GetByID(id string) (*models.CreditLimitRequest, error) {
	if r, ok := f.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repositories.ErrCreditRequestNotFound
}
func (f *fakeRequestRepo) ListByCustomer(customerID string) ([]models.CreditLimitRequest, error) {
	var out []models.CreditLimitRequest
	for _, r := range f.requests {
		if r.CustomerID == customerID {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (f *fakeRequestRepo) List(string, int, int) ([]models.CreditLimitRequest, int64, error) {
	return nil, 0, nil
}
func (f *fakeRequestRepo) Update(r *models.CreditLimitRequest) error { f.requests[r.ID] = r; return nil }
func (f *fakeRequestRepo) ApplyDecision(r *models.CreditLimitRequest, c *models.Customer) error {
	f.requests[r.ID] = r
	f.applied++
	return nil
}

func rules() config.BusinessRules {
	return config.BusinessRules{
		DefaultCreditLimit:   500,
		MaxCreditLimit:       5000,
		RepaymentDays:        10,
		MinTransactionAmount: 10,
		MaxTransactionAmount: 2000,
		PaymentLockTimeout:   60 * time.Second,
	}
}

func newFixture(t *testing.T) (Service, *fakeCustomerRepo, *fakeTxRepo, *fakeRequestRepo) {
	t.Helper()
	customers := &fakeCustomerRepo{customers: map[string]*models.Customer{}}
	txs := &fakeTxRepo{openRemaining: map[string]float64{}}
	requests := &fakeRequestRepo{requests: map[string]*models.CreditLimitRequest{}}
	svc := NewService(customers, txs, requests, audit.NoopRecorder{}, nil, rules())
	return svc, customers, txs, requests
}

func TestSummary(t *testing.T) {
	svc, customers, txs, _ := newFixture(t)
	customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 1000, Status: models.CustomerStatusActive}
	txs.openRemaining["c1"] = 400

	summary, err := svc.Summary("c1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, summary.CreditLimit)
	assert.Equal(t, 400.0, summary.UsedCredit)
	assert.Equal(t, 600.0, summary.AvailableCredit)
	assert.Equal(t, 600.0, summary.SpendableCredit)

	t.Run("spendable is capped by the max transaction amount", func(t *testing.T) {
		customers.customers["c2"] = &models.Customer{ID: "c2", CreditLimit: 5000, Status: models.CustomerStatusActive}
		summary, err := svc.Summary("c2")
		require.NoError(t, err)
		assert.Equal(t, 5000.0, summary.AvailableCredit)
		assert.Equal(t, 2000.0, summary.SpendableCredit)
	})

	t.Run("available never goes negative", func(t *testing.T) {
		customers.customers["c3"] = &models.Customer{ID: "c3", CreditLimit: 100, Status: models.CustomerStatusActive}
		txs.openRemaining["c3"] = 250
		summary, err := svc.Summary("c3")
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.AvailableCredit)
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.Summary("nope")
		assert.Equal(t, apperr.KindNotFound, apperr.Kind(err))
	})
}

func TestUpdateLimit(t *testing.T) {
	actor := audit.Actor{Type: "admin_user", ID: "a1"}

	tests := []struct {
		name     string
		newLimit float64
		wantKind apperr.ErrKind
	}{
		{name: "valid increase", newLimit: 1500},
		{name: "negative limit", newLimit: -1, wantKind: apperr.KindValidation},
		{name: "above platform maximum", newLimit: 5001, wantKind: apperr.KindValidation},
		{name: "zero is allowed", newLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, customers, _, _ := newFixture(t)
			customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}

			customer, err := svc.UpdateLimit(actor, "c1", tt.newLimit, "review")
			if tt.wantKind != apperr.KindInternal {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.Kind(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newLimit, customer.CreditLimit)
		})
	}
}

func TestRequestIncrease(t *testing.T) {
	svc, customers, _, requests := newFixture(t)
	customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}

	req, err := svc.RequestIncrease("c1", 1500, "salary raise")
	require.NoError(t, err)
	assert.Equal(t, models.CreditRequestStatusPending, req.Status)
	assert.Equal(t, 500.0, req.CurrentLimit)

	t.Run("second request while one is pending", func(t *testing.T) {
		_, err := svc.RequestIncrease("c1", 2000, "again")
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
	})

	t.Run("requested limit must exceed current", func(t *testing.T) {
		customers.customers["c2"] = &models.Customer{ID: "c2", CreditLimit: 800, Status: models.CustomerStatusActive}
		_, err := svc.RequestIncrease("c2", 800, "same")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	t.Run("requested limit above platform maximum", func(t *testing.T) {
		customers.customers["c3"] = &models.Customer{ID: "c3", CreditLimit: 500, Status: models.CustomerStatusActive}
		_, err := svc.RequestIncrease("c3", 6000, "too much")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	t.Run("suspended customer cannot request", func(t *testing.T) {
		customers.customers["c4"] = &models.Customer{ID: "c4", CreditLimit: 500, Status: models.CustomerStatusSuspended}
		_, err := svc.RequestIncrease("c4", 1000, "please")
		assert.Equal(t, apperr.KindAccessDenied, apperr.Kind(err))
	})

	_ = requests
}

func TestDecideRequest(t *testing.T) {
	actor := audit.Actor{Type: "admin_user", ID: "a1"}

	t.Run("approval applies the new limit", func(t *testing.T) {
		svc, customers, _, requests := newFixture(t)
		customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}
		requests.requests["r1"] = &models.CreditLimitRequest{
			ID: "r1", CustomerID: "c1", CurrentLimit: 500, RequestedLimit: 1500,
			Status: models.CreditRequestStatusPending,
		}

		req, err := svc.DecideRequest(actor, "r1", true, nil, "good standing")
		require.NoError(t, err)
		assert.Equal(t, models.CreditRequestStatusApproved, req.Status)
		require.NotNil(t, req.ApprovedLimit)
		assert.Equal(t, 1500.0, *req.ApprovedLimit)
		assert.Equal(t, 1, requests.applied)
	})

	t.Run("approval with a lower counter-offer", func(t *testing.T) {
		svc, customers, _, requests := newFixture(t)
		customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}
		requests.requests["r1"] = &models.CreditLimitRequest{
			ID: "r1", CustomerID: "c1", CurrentLimit: 500, RequestedLimit: 3000,
			Status: models.CreditRequestStatusPending,
		}

		offer := 1000.0
		req, err := svc.DecideRequest(actor, "r1", true, &offer, "partial approval")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, *req.ApprovedLimit)
	})

	t.Run("a decided request cannot be decided again", func(t *testing.T) {
		svc, customers, _, requests := newFixture(t)
		customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}
		requests.requests["r1"] = &models.CreditLimitRequest{
			ID: "r1", CustomerID: "c1", CurrentLimit: 500, RequestedLimit: 1500,
			Status: models.CreditRequestStatusPending,
		}

		_, err := svc.DecideRequest(actor, "r1", false, nil, "no")
		require.NoError(t, err)

		_, err = svc.DecideRequest(actor, "r1", true, nil, "changed my mind")
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
		assert.Equal(t, 1, requests.applied)
	})

	t.Run("rejection leaves the limit untouched", func(t *testing.T) {
		svc, customers, _, requests := newFixture(t)
		customers.customers["c1"] = &models.Customer{ID: "c1", CreditLimit: 500, Status: models.CustomerStatusActive}
		requests.requests["r1"] = &models.CreditLimitRequest{
			ID: "r1", CustomerID: "c1", CurrentLimit: 500, RequestedLimit: 1500,
			Status: models.CreditRequestStatusPending,
		}

		req, err := svc.DecideRequest(actor, "r1", false, nil, "insufficient history")
		require.NoError(t, err)
		assert.Equal(t, models.CreditRequestStatusRejected, req.Status)
		assert.Nil(t, req.ApprovedLimit)
		assert.Equal(t, 500.0, customers.customers["c1"].CreditLimit)
	})
}

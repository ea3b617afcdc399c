package settlement

import (
	"testing"
	"time"

	"bariq/internal/apperr"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/services/access"
	"bariq/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlementRepo struct {
	settlements map[string]*models.Settlement
	linked      map[string][]string
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{settlements: map[string]*models.Settlement{}, linked: map[string][]string{}}
}

func (f *fakeSettlementRepo) CreateWithTransactions(s *models.Settlement, ids []string) error {
	f.settlements[s.ID] = s
	f.linked[s.ID] = ids
	return nil
}
func (f *fakeSettlementRepo) GetByID(id string) (*models.Settlement, error) {
	if s, ok := f.settlements[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repositories.ErrSettlementNotFound
}
func (f *fakeSettlementRepo) List(repositories.SettlementFilter) ([]models.Settlement, int64, error) {
	return nil, 0, nil
}
func (f *fakeSettlementRepo) Update(s *models.Settlement) error { f.settlements[s.ID] = s; return nil }
func (f *fakeSettlementRepo) ListTransactions(string) ([]models.Transaction, error) {
	return nil, nil
}

type fakeTxRepo struct {
	unsettled []models.Transaction
}

func (f *fakeTxRepo) Create(*models.Transaction) error { return nil }
func (f *fakeTxRepo) GetByID(string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
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
	return f.unsettled, nil
}

type fakeMerchantRepo struct {
	merchants map[string]*models.Merchant
}

func (f *fakeMerchantRepo) Create(*models.Merchant) error { return nil }
func (f *fakeMerchantRepo) GetByID(id string) (*models.Merchant, error) {
	if m, ok := f.merchants[id]; ok {
		return m, nil
	}
	return nil, repositories.ErrMerchantNotFound
}
func (f *fakeMerchantRepo) GetByEmail(string) (*models.Merchant, error) {
	return nil, repositories.ErrMerchantNotFound
}
func (f *fakeMerchantRepo) List(repositories.MerchantFilter) ([]models.Merchant, int64, error) {
	return nil, 0, nil
}
func (f *fakeMerchantRepo) Update(*models.Merchant) error       { return nil }
func (f *fakeMerchantRepo) CreateBranch(*models.Branch) error   { return nil }
func (f *fakeMerchantRepo) GetBranch(string) (*models.Branch, error) {
	return nil, repositories.ErrBranchNotFound
}
func (f *fakeMerchantRepo) ListBranches(string) ([]models.Branch, error) { return nil, nil }
func (f *fakeMerchantRepo) UpdateBranch(*models.Branch) error            { return nil }
func (f *fakeMerchantRepo) CreateRegion(*models.Region) error            { return nil }
func (f *fakeMerchantRepo) GetRegion(string) (*models.Region, error) {
	return nil, repositories.ErrRegionNotFound
}
func (f *fakeMerchantRepo) ListRegions(string) ([]models.Region, error) { return nil, nil }

var actor = audit.Actor{Type: "admin_user", ID: "a1"}

func newFixture(t *testing.T, unsettled []models.Transaction) (Service, *fakeSettlementRepo) {
	t.Helper()
	settlements := newFakeSettlementRepo()
	txs := &fakeTxRepo{unsettled: unsettled}
	merchants := &fakeMerchantRepo{merchants: map[string]*models.Merchant{
		"m1": {ID: "m1", Status: models.MerchantStatusActive, CommissionRate: 2.5},
	}}
	return NewService(settlements, txs, merchants, audit.NoopRecorder{}, nil), settlements
}

func period() (time.Time, time.Time) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func TestGenerate(t *testing.T) {
	start, end := period()

	t.Run("commission split", func(t *testing.T) {
		svc, repo := newFixture(t, []models.Transaction{
			{ID: "tx1", TotalAmount: 600},
			{ID: "tx2", TotalAmount: 400},
		})

		s, err := svc.Generate(actor, "m1", start, end)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, s.GrossAmount)
		assert.Equal(t, 25.0, s.CommissionAmount)
		assert.Equal(t, 975.0, s.NetAmount)
		assert.Equal(t, 2, s.TransactionCount)
		assert.Equal(t, models.SettlementStatusPending, s.Status)
		assert.ElementsMatch(t, []string{"tx1", "tx2"}, repo.linked[s.ID])
	})

	t.Run("returned amounts are excluded from gross", func(t *testing.T) {
		svc, _ := newFixture(t, []models.Transaction{
			{ID: "tx1", TotalAmount: 600, ReturnedAmount: 100},
		})

		s, err := svc.Generate(actor, "m1", start, end)
		require.NoError(t, err)
		assert.Equal(t, 500.0, s.GrossAmount)
	})

	t.Run("no unsettled transactions", func(t *testing.T) {
		svc, _ := newFixture(t, nil)
		_, err := svc.Generate(actor, "m1", start, end)
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	t.Run("inverted period", func(t *testing.T) {
		svc, _ := newFixture(t, nil)
		_, err := svc.Generate(actor, "m1", end, start)
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	t.Run("unknown merchant", func(t *testing.T) {
		svc, _ := newFixture(t, nil)
		_, err := svc.Generate(actor, "nope", start, end)
		assert.Equal(t, apperr.KindNotFound, apperr.Kind(err))
	})
}

func TestLifecycle(t *testing.T) {
	start, end := period()
	svc, repo := newFixture(t, []models.Transaction{{ID: "tx1", TotalAmount: 600}})

	s, err := svc.Generate(actor, "m1", start, end)
	require.NoError(t, err)

	t.Run("transfer before approval conflicts", func(t *testing.T) {
		_, err := svc.MarkTransferred(actor, s.ID, "BANK-1")
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
	})

	approved, err := svc.Approve(actor, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, actor.ID, *approved.ApprovedBy)

	t.Run("double approval conflicts", func(t *testing.T) {
		_, err := svc.Approve(actor, s.ID)
		assert.Equal(t, apperr.KindConflict, apperr.Kind(err))
	})

	t.Run("transfer requires a reference", func(t *testing.T) {
		_, err := svc.MarkTransferred(actor, s.ID, "")
		assert.Equal(t, apperr.KindValidation, apperr.Kind(err))
	})

	transferred, err := svc.MarkTransferred(actor, s.ID, "BANK-1")
	require.NoError(t, err)
	assert.Equal(t, models.SettlementStatusTransferred, transferred.Status)
	assert.Equal(t, "BANK-1", transferred.TransferReference)
	assert.Equal(t, models.SettlementStatusTransferred, repo.settlements[s.ID].Status)
}

func TestMerchantVisibility(t *testing.T) {
	start, end := period()
	svc, _ := newFixture(t, []models.Transaction{{ID: "tx1", TotalAmount: 600}})

	s, err := svc.Generate(actor, "m1", start, end)
	require.NoError(t, err)

	owner := &models.MerchantUser{ID: "u1", MerchantID: "m1", Role: models.RoleOwner}
	cashier := &models.MerchantUser{ID: "u2", MerchantID: "m1", Role: models.RoleCashier}
	outsider := &models.MerchantUser{ID: "u3", MerchantID: "m2", Role: models.RoleOwner}

	got, err := svc.GetForMerchant(owner, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = svc.GetForMerchant(cashier, s.ID)
	assert.Equal(t, apperr.KindAccessDenied, apperr.Kind(err))

	_, err = svc.GetForMerchant(outsider, s.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.Kind(err))
}

package handlers

import (
	"time"

	"bariq/internal/middleware"
	"bariq/internal/models"
	"bariq/internal/repositories"
	"bariq/internal/services/audit"
	"bariq/internal/services/merchant"
	"bariq/internal/services/settlement"
	"bariq/internal/services/transaction"
	"bariq/internal/utils"
	"bariq/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

// MerchantHandler serves the merchant portal: sales, returns, the branch
// and staff organisation, and settlement visibility.
type MerchantHandler struct {
	staff        repositories.StaffRepository
	merchants    merchant.Service
	transactions transaction.Service
	settlements  settlement.Service
}

func NewMerchantHandler(
	staffRepo repositories.StaffRepository,
	merchantService merchant.Service,
	transactionService transaction.Service,
	settlementService settlement.Service,
) *MerchantHandler {
	return &MerchantHandler{
		staff:        staffRepo,
		merchants:    merchantService,
		transactions: transactionService,
		settlements:  settlementService,
	}
}

// currentStaff re-loads the acting staff member on every request, so a
// deactivation takes effect before the token expires.
func (h *MerchantHandler) currentStaff(c *fiber.Ctx) (*models.MerchantUser, error) {
	claims := middleware.Claims(c)
	return h.staff.GetActiveByID(claims.ActorID)
}

func actorFrom(c *fiber.Ctx) audit.Actor {
	claims := middleware.Claims(c)
	return audit.Actor{
		Type:  claims.ActorType,
		ID:    claims.ActorID,
		Email: claims.Email,
		IP:    c.IP(),
	}
}

// Register onboards a merchant; the account stays pending until an admin
// approves it.
func (h *MerchantHandler) Register(c *fiber.Ctx) error {
	var input struct {
		NameAr                 string `json:"name_ar"`
		NameEn                 string `json:"name_en"`
		CommercialRegistration string `json:"commercial_registration"`
		TaxNumber              string `json:"tax_number"`
		BusinessType           string `json:"business_type"`
		Email                  string `json:"email"`
		Phone                  string `json:"phone"`
		City                   string `json:"city"`
		OwnerFullName          string `json:"owner_full_name"`
		OwnerEmail             string `json:"owner_email"`
		OwnerPassword          string `json:"owner_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	m, owner, err := h.merchants.Register(merchant.RegisterInput{
		NameAr:                 input.NameAr,
		NameEn:                 input.NameEn,
		CommercialRegistration: input.CommercialRegistration,
		TaxNumber:              input.TaxNumber,
		BusinessType:           input.BusinessType,
		Email:                  input.Email,
		Phone:                  input.Phone,
		City:                   input.City,
		OwnerFullName:          input.OwnerFullName,
		OwnerEmail:             input.OwnerEmail,
		OwnerPassword:          input.OwnerPassword,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"merchant": merchantView(m),
		"owner":    staffView(owner),
	})
}

func (h *MerchantHandler) Profile(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	m, err := h.merchants.Get(staff.MerchantID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"merchant": merchantView(m),
		"user":     staffView(staff),
	})
}

func (h *MerchantHandler) UpdateBankDetails(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		BankName          string `json:"bank_name"`
		IBAN              string `json:"iban"`
		AccountHolderName string `json:"account_holder_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	m, err := h.merchants.UpdateBankDetails(actorFrom(c), staff, input.BankName, input.IBAN, input.AccountHolderName)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, merchantView(m))
}

func (h *MerchantHandler) CreateTransaction(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		CustomerNationalID string                   `json:"customer_national_id"`
		BranchID           string                   `json:"branch_id"`
		Items              []models.TransactionItem `json:"items"`
		Discount           float64                  `json:"discount"`
		Notes              string                   `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.BranchID == "" && staff.BranchID != nil {
		input.BranchID = *staff.BranchID
	}

	tx, err := h.transactions.Create(staff, transaction.CreateInput{
		CustomerNationalID: input.CustomerNationalID,
		BranchID:           input.BranchID,
		Items:              input.Items,
		Discount:           input.Discount,
		Notes:              input.Notes,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, tx)
}

func (h *MerchantHandler) ListTransactions(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	p := pagination.ParseFromRequest(c)
	f := repositories.TransactionFilter{
		Status:   c.Query("status"),
		BranchID: c.Query("branch_id"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			f.FromDate = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			f.ToDate = &t
		}
	}

	txs, total, err := h.transactions.ListForStaff(staff, f)
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, txs))
}

func (h *MerchantHandler) GetTransaction(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	tx, err := h.transactions.GetForStaff(staff, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *MerchantHandler) CancelTransaction(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	tx, err := h.transactions.Cancel(actorFrom(c), staff, c.Params("id"), input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *MerchantHandler) ProcessReturn(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		Amount        float64                  `json:"amount"`
		Reason        string                   `json:"reason"`
		ReasonDetails string                   `json:"reason_details"`
		ReturnedItems []models.TransactionItem `json:"returned_items"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	ret, err := h.transactions.ProcessReturn(actorFrom(c), staff, c.Params("id"), transaction.ReturnInput{
		Amount:        input.Amount,
		Reason:        input.Reason,
		ReasonDetails: input.ReasonDetails,
		ReturnedItems: input.ReturnedItems,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, ret)
}

func (h *MerchantHandler) ListReturns(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	returns, err := h.transactions.ListReturns(staff, repositories.TransactionFilter{
		BranchID: c.Query("branch_id"),
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"data": returns})
}

func (h *MerchantHandler) CreateBranch(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		Name     string  `json:"name"`
		City     string  `json:"city"`
		Address  string  `json:"address"`
		Phone    string  `json:"phone"`
		RegionID *string `json:"region_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	branch, err := h.merchants.CreateBranch(staff, input.Name, input.City, input.Address, input.Phone, input.RegionID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, branch)
}

func (h *MerchantHandler) ListBranches(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	branches, err := h.merchants.ListBranches(staff)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"data": branches})
}

func (h *MerchantHandler) SetBranchActive(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	branch, err := h.merchants.SetBranchActive(staff, c.Params("id"), input.IsActive)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, branch)
}

func (h *MerchantHandler) CreateRegion(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	region, err := h.merchants.CreateRegion(staff, input.Name)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, region)
}

func (h *MerchantHandler) ListRegions(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	regions, err := h.merchants.ListRegions(staff)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"data": regions})
}

func (h *MerchantHandler) CreateStaff(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		Email      string  `json:"email"`
		Password   string  `json:"password"`
		FullName   string  `json:"full_name"`
		Phone      string  `json:"phone"`
		NationalID string  `json:"national_id"`
		Role       string  `json:"role"`
		BranchID   *string `json:"branch_id"`
		RegionID   *string `json:"region_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	member, err := h.merchants.CreateStaff(actorFrom(c), staff, merchant.StaffInput{
		Email:      input.Email,
		Password:   input.Password,
		FullName:   input.FullName,
		Phone:      input.Phone,
		NationalID: input.NationalID,
		Role:       models.Role(input.Role),
		BranchID:   input.BranchID,
		RegionID:   input.RegionID,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, staffView(member))
}

func (h *MerchantHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	members, err := h.merchants.ListStaff(staff)
	if err != nil {
		return utils.Error(c, err)
	}

	views := make([]fiber.Map, 0, len(members))
	for i := range members {
		views = append(views, staffView(&members[i]))
	}
	return utils.Success(c, fiber.Map{"data": views})
}

func (h *MerchantHandler) GetStaff(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	member, err := h.merchants.GetStaff(staff, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, staffView(member))
}

func (h *MerchantHandler) UpdateStaff(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		FullName string  `json:"full_name"`
		Phone    string  `json:"phone"`
		Role     string  `json:"role"`
		BranchID *string `json:"branch_id"`
		RegionID *string `json:"region_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	member, err := h.merchants.UpdateStaff(actorFrom(c), staff, c.Params("id"), merchant.StaffInput{
		FullName: input.FullName,
		Phone:    input.Phone,
		Role:     models.Role(input.Role),
		BranchID: input.BranchID,
		RegionID: input.RegionID,
	})
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, staffView(member))
}

func (h *MerchantHandler) SetStaffActive(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	var input struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	member, err := h.merchants.SetStaffActive(actorFrom(c), staff, c.Params("id"), input.IsActive)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, staffView(member))
}

func (h *MerchantHandler) ListSettlements(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	p := pagination.ParseFromRequest(c)
	settlements, total, err := h.settlements.ListForMerchant(staff, repositories.SettlementFilter{
		Status: c.Query("status"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, settlements))
}

func (h *MerchantHandler) GetSettlement(c *fiber.Ctx) error {
	staff, err := h.currentStaff(c)
	if err != nil {
		return utils.Unauthorized(c, "account not found or deactivated")
	}

	s, err := h.settlements.GetForMerchant(staff, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}

	txs, err := h.settlements.Transactions(s.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"settlement": s, "transactions": txs})
}

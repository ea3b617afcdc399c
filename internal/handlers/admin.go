package handlers

import (
	"time"

	"bariq/internal/repositories"
	"bariq/internal/services/admin"
	"bariq/internal/services/credit"
	"bariq/internal/services/settlement"
	"bariq/internal/utils"
	"bariq/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the platform operations portal.
type AdminHandler struct {
	admin       admin.Service
	credit      credit.Service
	settlements settlement.Service
}

func NewAdminHandler(adminService admin.Service, creditService credit.Service, settlementService settlement.Service) *AdminHandler {
	return &AdminHandler{
		admin:       adminService,
		credit:      creditService,
		settlements: settlementService,
	}
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.admin.Dashboard()
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, stats)
}

func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	customers, total, err := h.admin.ListCustomers(repositories.CustomerFilter{
		Status: c.Query("status"),
		City:   c.Query("city"),
		Search: c.Query("search"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	views := make([]fiber.Map, 0, len(customers))
	for i := range customers {
		views = append(views, customerView(&customers[i]))
	}
	p.Total = total
	return utils.Success(c, pagination.Response(p, views))
}

func (h *AdminHandler) GetCustomer(c *fiber.Ctx) error {
	customer, err := h.admin.GetCustomer(c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}

	summary, err := h.credit.Summary(customer.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"customer": customerView(customer),
		"credit":   summary,
	})
}

func (h *AdminHandler) SetCustomerStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	customer, err := h.admin.SetCustomerStatus(actorFrom(c), c.Params("id"), input.Status, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, customerView(customer))
}

func (h *AdminHandler) UpdateCreditLimit(c *fiber.Ctx) error {
	var input struct {
		CreditLimit float64 `json:"credit_limit"`
		Reason      string  `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	customer, err := h.credit.UpdateLimit(actorFrom(c), c.Params("id"), input.CreditLimit, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, customerView(customer))
}

func (h *AdminHandler) ListCreditRequests(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	reqs, total, err := h.credit.ListRequests(c.Query("status"), p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, reqs))
}

func (h *AdminHandler) DecideCreditRequest(c *fiber.Ctx) error {
	var input struct {
		Approve       bool     `json:"approve"`
		ApprovedLimit *float64 `json:"approved_limit"`
		Reason        string   `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	req, err := h.credit.DecideRequest(actorFrom(c), c.Params("id"), input.Approve, input.ApprovedLimit, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, req)
}

func (h *AdminHandler) ListMerchants(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	merchants, total, err := h.admin.ListMerchants(repositories.MerchantFilter{
		Status:       c.Query("status"),
		BusinessType: c.Query("business_type"),
		Search:       c.Query("search"),
		Limit:        p.Limit,
		Offset:       p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	views := make([]fiber.Map, 0, len(merchants))
	for i := range merchants {
		views = append(views, merchantView(&merchants[i]))
	}
	p.Total = total
	return utils.Success(c, pagination.Response(p, views))
}

func (h *AdminHandler) GetMerchant(c *fiber.Ctx) error {
	m, err := h.admin.GetMerchant(c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, merchantView(m))
}

func (h *AdminHandler) ApproveMerchant(c *fiber.Ctx) error {
	m, err := h.admin.ApproveMerchant(actorFrom(c), c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, merchantView(m))
}

func (h *AdminHandler) SuspendMerchant(c *fiber.Ctx) error {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	m, err := h.admin.SuspendMerchant(actorFrom(c), c.Params("id"), input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, merchantView(m))
}

func (h *AdminHandler) SetCommissionRate(c *fiber.Ctx) error {
	var input struct {
		CommissionRate float64 `json:"commission_rate"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	m, err := h.admin.SetCommissionRate(actorFrom(c), c.Params("id"), input.CommissionRate)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, merchantView(m))
}

func (h *AdminHandler) GenerateSettlement(c *fiber.Ctx) error {
	var input struct {
		MerchantID  string `json:"merchant_id"`
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	start, err := time.Parse("2006-01-02", input.PeriodStart)
	if err != nil {
		return utils.BadRequest(c, "period_start must be a YYYY-MM-DD date")
	}
	end, err := time.Parse("2006-01-02", input.PeriodEnd)
	if err != nil {
		return utils.BadRequest(c, "period_end must be a YYYY-MM-DD date")
	}

	s, err := h.settlements.Generate(actorFrom(c), input.MerchantID, start, end)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, s)
}

func (h *AdminHandler) ListSettlements(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	settlements, total, err := h.settlements.List(repositories.SettlementFilter{
		Status:     c.Query("status"),
		MerchantID: c.Query("merchant_id"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, settlements))
}

func (h *AdminHandler) GetSettlement(c *fiber.Ctx) error {
	s, err := h.settlements.Get(c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}

	txs, err := h.settlements.Transactions(s.ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"settlement": s, "transactions": txs})
}

func (h *AdminHandler) ApproveSettlement(c *fiber.Ctx) error {
	s, err := h.settlements.Approve(actorFrom(c), c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, s)
}

func (h *AdminHandler) TransferSettlement(c *fiber.Ctx) error {
	var input struct {
		TransferReference string `json:"transfer_reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	s, err := h.settlements.MarkTransferred(actorFrom(c), c.Params("id"), input.TransferReference)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, s)
}

func (h *AdminHandler) ListOverdue(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	txs, total, err := h.admin.ListOverdue(repositories.TransactionFilter{
		MerchantID: c.Query("merchant_id"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, txs))
}

func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	logs, total, err := h.admin.ListAuditLogs(repositories.AuditFilter{
		ActorType:  c.Query("actor_type"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Limit:      p.Limit,
		Offset:     p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, logs))
}

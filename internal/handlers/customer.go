package handlers

import (
	"bariq/internal/middleware"
	"bariq/internal/repositories"
	"bariq/internal/services/credit"
	"bariq/internal/services/payment"
	"bariq/internal/services/transaction"
	"bariq/internal/utils"
	"bariq/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

// CustomerHandler serves the customer portal: profile, credit position,
// transactions, repayments and limit requests.
type CustomerHandler struct {
	customers    repositories.CustomerRepository
	credit       credit.Service
	transactions transaction.Service
	payments     payment.Service
}

func NewCustomerHandler(
	customers repositories.CustomerRepository,
	creditService credit.Service,
	transactionService transaction.Service,
	paymentService payment.Service,
) *CustomerHandler {
	return &CustomerHandler{
		customers:    customers,
		credit:       creditService,
		transactions: transactionService,
		payments:     paymentService,
	}
}

func (h *CustomerHandler) Profile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	customer, err := h.customers.GetByID(claims.ActorID)
	if err != nil {
		return utils.NotFound(c, "customer not found")
	}
	return utils.Success(c, customerView(customer))
}

func (h *CustomerHandler) CreditSummary(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	summary, err := h.credit.Summary(claims.ActorID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, summary)
}

func (h *CustomerHandler) ListTransactions(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	p := pagination.ParseFromRequest(c)

	txs, total, err := h.transactions.ListForCustomer(claims.ActorID, repositories.TransactionFilter{
		Status: c.Query("status"),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, txs))
}

func (h *CustomerHandler) GetTransaction(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	tx, err := h.transactions.GetForCustomer(claims.ActorID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *CustomerHandler) ConfirmTransaction(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	tx, err := h.transactions.Confirm(claims.ActorID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, tx)
}

func (h *CustomerHandler) MakePayment(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		TransactionID string  `json:"transaction_id"`
		Amount        float64 `json:"amount"`
		Method        string  `json:"method"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	p, err := h.payments.MakePayment(claims.ActorID, input.TransactionID, input.Amount, input.Method)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, p)
}

func (h *CustomerHandler) RetryPayment(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	p, err := h.payments.Retry(claims.ActorID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, p)
}

func (h *CustomerHandler) GetPayment(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	p, err := h.payments.Get(claims.ActorID, c.Params("id"))
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, p)
}

func (h *CustomerHandler) ListPayments(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	p := pagination.ParseFromRequest(c)

	payments, total, err := h.payments.List(claims.ActorID, p.Limit, p.Offset)
	if err != nil {
		return utils.Error(c, err)
	}

	p.Total = total
	return utils.Success(c, pagination.Response(p, payments))
}

func (h *CustomerHandler) Debt(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	debt, err := h.payments.CustomerDebt(claims.ActorID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, debt)
}

func (h *CustomerHandler) RequestCreditIncrease(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	var input struct {
		RequestedLimit float64 `json:"requested_limit"`
		Reason         string  `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	req, err := h.credit.RequestIncrease(claims.ActorID, input.RequestedLimit, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Respond(c, fiber.StatusCreated, req)
}

func (h *CustomerHandler) ListCreditRequests(c *fiber.Ctx) error {
	claims := middleware.Claims(c)

	reqs, err := h.credit.ListCustomerRequests(claims.ActorID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"data": reqs})
}

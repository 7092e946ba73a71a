package handlers

import (
	"errors"
	"fmt"
	"time"

	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/core/services"
	"stockwise-decd/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan ledger endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// ListLoans handles loan listing
// @Summary List loans
// @Description Get a snapshot of all loans, newest first
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	loans, err := h.loanService.ListLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": loans,
	})
}

// CreateLoanRequest represents a register-loan request body
type CreateLoanRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Requester string `json:"requester"`
	LoanDate  string `json:"loan_date"` // YYYY-MM-DD, defaults to today
}

// CreateLoan handles loan registration
// @Summary Register loan
// @Description Register a loan, atomically decrementing product stock
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) CreateLoan(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateLoanInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Requester: req.Requester,
	}
	if req.LoanDate != "" {
		loanDate, err := time.Parse("2006-01-02", req.LoanDate)
		if err != nil {
			return response.BadRequest(c, "Invalid loan_date, expected YYYY-MM-DD")
		}
		input.LoanDate = loanDate
	}

	loan, err := h.loanService.CreateLoan(c.Context(), input)
	if err != nil {
		var insufficientErr *domain.InsufficientStockError
		switch {
		case errors.As(err, &insufficientErr):
			return response.Conflict(c, fmt.Sprintf("Insufficient stock: only %d units of %q remain",
				insufficientErr.Available, insufficientErr.ProductName))
		case errors.Is(err, domain.ErrProductNotFound):
			return response.NotFound(c, "The product you are trying to loan does not exist")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return response.Conflict(c, "The loan could not be registered due to concurrent updates, please retry")
		default:
			return response.InternalServerError(c, "Failed to register loan")
		}
	}

	return response.Created(c, "Loan registered successfully", fiber.Map{
		"loan": loan,
	})
}

// ReturnLoanRequest represents a mark-returned request body
type ReturnLoanRequest struct {
	ReturnDate string `json:"return_date"` // YYYY-MM-DD, defaults to today
}

// MarkReturned handles marking a loan as returned
// @Summary Mark loan as returned
// @Description Flip a loan to Devuelto and credit product stock back
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Param body body ReturnLoanRequest false "Return data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [post]
func (h *LoanHandler) MarkReturned(c *fiber.Ctx) error {
	var req ReturnLoanRequest
	// Body is optional for returns
	_ = c.BodyParser(&req)

	returnDate := time.Now()
	if req.ReturnDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReturnDate)
		if err != nil {
			return response.BadRequest(c, "Invalid return_date, expected YYYY-MM-DD")
		}
		returnDate = parsed
	}

	err := h.loanService.MarkReturned(c.Context(), c.Params("id"), returnDate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyReturned):
			return response.Conflict(c, "This loan has already been returned")
		case errors.Is(err, domain.ErrConcurrencyConflict):
			return response.Conflict(c, "The loan could not be updated due to concurrent updates, please retry")
		default:
			return response.InternalServerError(c, "Failed to update loan")
		}
	}

	return response.Success(c, "Loan marked as returned", nil)
}

// DeleteLoan handles deleting a returned loan record
// @Summary Delete loan
// @Description Remove a returned loan record; active loans are rejected
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *fiber.Ctx) error {
	err := h.loanService.DeleteLoan(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanActive):
			return response.Conflict(c, `Cannot delete an active loan. Mark it as "Devuelto" first`)
		default:
			return response.InternalServerError(c, "Failed to delete loan")
		}
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

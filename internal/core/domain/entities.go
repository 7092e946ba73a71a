package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// LoanStatus represents the lifecycle state of a loan.
// The only transition is Prestado -> Devuelto (terminal).
type LoanStatus string

const (
	StatusOnLoan   LoanStatus = "Prestado"
	StatusReturned LoanStatus = "Devuelto"
)

// Product represents a catalog item in the domain layer
type Product struct {
	ID           string
	Name         string
	SKU          string
	Category     string
	Location     string
	Quantity     int
	ReorderPoint int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock reports whether the product is at or below its reorder point
// while still having units on hand.
func (p *Product) IsLowStock() bool {
	return p.Quantity > 0 && p.Quantity <= p.ReorderPoint
}

// IsOutOfStock reports whether the product has no units on hand.
func (p *Product) IsOutOfStock() bool {
	return p.Quantity == 0
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

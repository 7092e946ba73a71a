package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"stockwise-decd/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Catalog
// ============================================================

// Product represents the products table
type Product struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	SKU          string         `gorm:"column:sku;uniqueIndex;size:50;not null" json:"sku"`
	Category     string         `gorm:"size:100" json:"category"`
	Location     string         `gorm:"size:100" json:"location"`
	Quantity     int            `gorm:"not null;default:0" json:"quantity"`
	ReorderPoint int            `gorm:"not null;default:0" json:"reorder_point"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain product
func (p *Product) ToDomain() *domain.Product {
	return &domain.Product{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Category:     p.Category,
		Location:     p.Location,
		Quantity:     p.Quantity,
		ReorderPoint: p.ReorderPoint,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ============================================================
// Loan ledger
// ============================================================

// Loan represents the loans table.
// ProductName is denormalized at loan time and intentionally never re-synced.
type Loan struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	ProductID   string     `gorm:"index;size:36;not null" json:"product_id"`
	ProductName string     `gorm:"size:100;not null" json:"product_name"`
	Requester   string     `gorm:"size:100;not null" json:"requester"`
	Quantity    int        `gorm:"not null" json:"quantity"`
	LoanDate    time.Time  `gorm:"not null" json:"loan_date"`
	ReturnDate  *time.Time `json:"return_date"`
	Status      string     `gorm:"size:20;not null;default:'Prestado';index" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// StockLog represents the stock_logs table, an append-only journal of
// every stock movement (loans, returns, restocks, manual adjustments).
type StockLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductName    string    `gorm:"size:100;not null" json:"product_name"`
	QuantityChange int       `gorm:"not null" json:"quantity_change"`
	Reason         string    `gorm:"size:50;not null" json:"reason"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (StockLog) TableName() string {
	return "stock_logs"
}

// Stock movement reasons
const (
	ReasonLoan       = "Préstamo"
	ReasonReturn     = "Devolución"
	ReasonRestock    = "Reabastecimiento"
	ReasonAdjustment = "Ajuste"
)

// ============================================================
// Auth & users
// ============================================================

// PermissionList stores a user's capability tags as a JSON array column
type PermissionList []string

// Value implements driver.Valuer
func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		p = PermissionList{}
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type %T for PermissionList", value)
	}
}

// User represents the users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Username    string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Role        string         `gorm:"size:20;default:'user'" json:"role"`
	Permissions PermissionList `gorm:"type:text" json:"permissions"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = PermissionList{}
	}
	return &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		Role:        u.Role,
		Permissions: perms,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// RefreshToken represents the refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// AutoMigrate creates or updates all application tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Product{},
		&Loan{},
		&StockLog{},
	)
}

package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category represents a spending category for transactions.
//
// A category can be linked to a BudgetAllocation. The link is what the
// budget health check uses to find the envelope a prospective expense
// counts against; categories without a link never block spending.
type Category struct {
	DefaultModel
	UserID             uuid.UUID  `json:"userId" gorm:"index"`
	Name               string     `json:"name"`
	BudgetAllocationID *uuid.UUID `json:"budgetAllocationId" gorm:"index"`
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}

package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Streak is the gamification counter for a user. It is reset to zero when
// a budget-exceeding expense is forced through.
type Streak struct {
	DefaultModel
	UserID       uuid.UUID `json:"userId" gorm:"uniqueIndex"`
	Count        int       `json:"count"`
	LastActivity time.Time `json:"lastActivity"`
}

var ErrStreakNotUnique = errors.New("you can not create multiple streaks for the same user")

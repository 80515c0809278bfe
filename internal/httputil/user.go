package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextUserID is the gin context key the user middleware stores the
// authenticated user's ID under.
const contextUserID = "userID"

// SetUserID stores the user ID for the request.
func SetUserID(c *gin.Context, id uuid.UUID) {
	c.Set(contextUserID, id)
}

// UserID returns the user ID of the request. It only errors on routes
// that are not behind the user middleware.
func UserID(c *gin.Context) (uuid.UUID, error) {
	value, ok := c.Get(contextUserID)
	if !ok {
		return uuid.Nil, ErrMissingUserID
	}

	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrMissingUserID
	}

	return id, nil
}

package v1

import (
	"net/http"
	"time"

	"github.com/centavo/backend/internal/httputil"
	"github.com/centavo/backend/internal/types"
	ct_uuid "github.com/centavo/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type URIID struct {
	ID ct_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIPeriod struct {
	Year  int `uri:"year" binding:"required,min=1"`         // Year of the reference month
	Month int `uri:"month" binding:"required,min=1,max=12"` // Month of the reference month, 1 to 12
}

func (u URIPeriod) period() types.Month {
	return types.NewMonth(u.Year, time.Month(u.Month))
}

type URIIDPeriod struct {
	URIID
	URIPeriod
}

// currentUser returns the user the request acts for. On routes behind the
// user middleware this always succeeds; everywhere else it writes a 400
// and returns false.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := httputil.UserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpError{Error: err.Error()})
		return uuid.Nil, false
	}

	return id, true
}

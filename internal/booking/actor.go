package booking

import (
	"strings"

	"github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// Actor is the decoded identity of the caller.  The zero value is an
// unauthenticated caller.
type Actor struct {
	Name  string
	Email string
	Role  string
}

func (a Actor) Authenticated() bool { return a.Email != "" }

func (a Actor) IsStaff() bool { return a.Role == model.RoleStaff }

func (a Actor) owns(r model.Reservation) bool {
	return strings.EqualFold(a.Email, r.CustomerEmail)
}

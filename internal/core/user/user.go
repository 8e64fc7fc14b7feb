package user

import (
	"strings"

	userDatamodel "github.com/frahmantamala/projecthub/internal/core/datamodel/user"
)

// Summary is the public projection of a user embedded in other resources.
type Summary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
}

func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func SummaryFromDataModel(u *userDatamodel.User) *Summary {
	if u == nil {
		return nil
	}
	return &Summary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		FullName:  FullName(u.FirstName, u.LastName),
	}
}

// SummaryIndex maps user id to summary for bulk lookups.
func SummaryIndex(rows []userDatamodel.User) map[int64]*Summary {
	idx := make(map[int64]*Summary, len(rows))
	for i := range rows {
		idx[rows[i].ID] = SummaryFromDataModel(&rows[i])
	}
	return idx
}

package patient

import (
	"database/sql"
	"time"
)

// Patient is a bot user who tracks treatment cycles.
type Patient struct {
	ID         int64
	TelegramID int64
	FirstName  string
	LastName   sql.NullString // To handle optional last name
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName joins first and last name when the last name is set.
func (p *Patient) DisplayName() string {
	if p.LastName.Valid && p.LastName.String != "" {
		return p.FirstName + " " + p.LastName.String
	}
	return p.FirstName
}

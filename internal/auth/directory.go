// AngelaMos | 2026
// directory.go

package auth

import (
	"fmt"
	"strings"

	"github.com/mailsfinder/admin-console/internal/config"
	"github.com/mailsfinder/admin-console/internal/core"
	"github.com/mailsfinder/admin-console/internal/rbac"
	"github.com/mailsfinder/admin-console/internal/session"
)

type account struct {
	admin        session.Admin
	passwordHash string
}

// Directory is the fixed set of console operators loaded from config.
// It is read-only after construction.
type Directory struct {
	byEmail map[string]account
	byID    map[string]account
}

func NewDirectory(admins []config.AdminConfig) (*Directory, error) {
	d := &Directory{
		byEmail: make(map[string]account, len(admins)),
		byID:    make(map[string]account, len(admins)),
	}

	for _, a := range admins {
		role, err := rbac.ParseRole(a.Role)
		if err != nil {
			return nil, fmt.Errorf("admin %s: %w", a.Email, err)
		}

		email := normalizeEmail(a.Email)
		if _, dup := d.byEmail[email]; dup {
			return nil, fmt.Errorf("admin %s: %w", a.Email, core.ErrDuplicateKey)
		}
		if _, dup := d.byID[a.ID]; dup {
			return nil, fmt.Errorf("admin id %s: %w", a.ID, core.ErrDuplicateKey)
		}

		acct := account{
			admin: session.Admin{
				ID:    a.ID,
				Name:  a.Name,
				Email: email,
				Role:  role,
			},
			passwordHash: a.PasswordHash,
		}
		d.byEmail[email] = acct
		d.byID[a.ID] = acct
	}

	return d, nil
}

func (d *Directory) lookupEmail(email string) (account, bool) {
	acct, ok := d.byEmail[normalizeEmail(email)]
	return acct, ok
}

func (d *Directory) ByID(id string) (session.Admin, bool) {
	acct, ok := d.byID[id]
	return acct.admin, ok
}

func (d *Directory) Len() int {
	return len(d.byID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

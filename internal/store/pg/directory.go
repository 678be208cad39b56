package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"scanid.app/internal/access"
	"scanid.app/internal/superadmin"
)

// Directory serves the access resolver and the super-admin dashboard from
// the same tables the feature stores write.
type Directory struct {
	store *Store
}

var (
	_ access.DirectoryStore = (*Directory)(nil)
	_ superadmin.Store      = (*Directory)(nil)
)

func NewDirectory(store *Store) *Directory { return &Directory{store: store} }

func (d *Directory) Subject(ctx context.Context, userID string) (access.Subject, error) {
	var subject access.Subject
	err := d.store.db.QueryRowContext(ctx, `
		select id, role, coalesce(company_id, ''), system_edition_id, status
		from users
		where id = $1
	`, userID).Scan(&subject.UserID, &subject.Role, &subject.CompanyID, &subject.SystemEditionID, &subject.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return access.Subject{}, fmt.Errorf("%w: user %s", access.ErrNotFound, userID)
	}
	if err != nil {
		return access.Subject{}, err
	}
	return subject, nil
}

func (d *Directory) Snapshot(ctx context.Context) (superadmin.Metrics, error) {
	var m superadmin.Metrics
	err := d.store.db.QueryRowContext(ctx, `
		select
			(select count(*) from system_editions),
			(select count(*) from companies),
			(select count(*) from users),
			(select count(*) from users where status = 'active'),
			(select count(*) from tags where deleted_at is null),
			(select count(*) from delegate_access where status = 'pending')
	`).Scan(&m.TotalSystemEditions, &m.TotalCompanies, &m.TotalUsers, &m.ActiveUsers, &m.TotalTags, &m.PendingDelegateInvites)
	if err != nil {
		return superadmin.Metrics{}, err
	}
	return m, nil
}

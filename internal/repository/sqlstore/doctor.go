package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-records/internal/model"
	apperrors "github.com/jwalitptl/clinic-records/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

// Create inserts the doctor, refusing a username that is already taken.
func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) (err error) {
	defer r.track("doctor.create")(&err)

	doctor.CreatedDate = r.timestamp()
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var taken int64
		if err := tx.GetContext(ctx, &taken, tx.Rebind(`SELECT COUNT(*) FROM doctors WHERE username = ?`), doctor.Username); err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			return apperrors.ValidationFailed("username", "username is already registered")
		}

		query := tx.Rebind(`
			INSERT INTO doctors (full_name, username, password, created_date)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`)
		err := tx.QueryRowxContext(ctx, query,
			doctor.FullName,
			doctor.Username,
			doctor.PasswordHash,
			doctor.CreatedDate,
		).Scan(&doctor.ID)
		if err != nil {
			return fmt.Errorf("failed to create doctor: %w", err)
		}
		return nil
	})
}

func (r *doctorRepository) GetByUsername(ctx context.Context, username string) (_ *model.Doctor, err error) {
	defer r.track("doctor.get_by_username")(&err)

	query := r.db.Rebind(`SELECT id, full_name, username, password, created_date FROM doctors WHERE username = ?`)
	var doctor model.Doctor
	if err = r.db.GetContext(ctx, &doctor, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context) (_ []*model.Doctor, err error) {
	defer r.track("doctor.list")(&err)

	doctors := []*model.Doctor{}
	query := `SELECT id, full_name, username, password, created_date FROM doctors ORDER BY full_name, id`
	if err = r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

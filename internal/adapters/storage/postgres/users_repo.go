package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic/internal/domain/users"
	"vet-clinic/internal/ports/auth"

	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `
	user_id, user_firstname, user_lastname,
	user_email, user_contact, user_password,
	user_role, created_at, updated_at`

const uniqueViolation = "23505"

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User, owner *users.OwnerProfile) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			u.ID,
			u.FirstName,
			u.LastName,
			u.Email,
			nullString(u.Contact),
			u.PasswordHash,
			string(u.Role),
			u.CreatedAt,
			u.UpdatedAt,
		)
		if err != nil {
			return mapUniqueEmail(err)
		}
		if owner == nil {
			return nil
		}
		return upsertOwner(ctx, tx, u.ID, *owner)
	})
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)

	var (
		u       users.User
		contact sql.NullString
		role    string
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName,
		&u.Email, &contact, &u.PasswordHash,
		&role, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	u.Contact = stringPtr(contact)
	u.Role = auth.ParseRole(role)
	return u, nil
}

func (r *UsersRepo) GetOwnerProfile(ctx context.Context, userID string) (users.OwnerProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, owner_address,
			owner_alt_person1, owner_alt_contact1,
			owner_alt_person2, owner_alt_contact2
		FROM owner
		WHERE user_id = $1
	`, userID)

	var (
		p                 users.OwnerProfile
		person1, contact1 sql.NullString
		person2, contact2 sql.NullString
	)
	err := row.Scan(&p.UserID, &p.Address, &person1, &contact1, &person2, &contact2)
	if errors.Is(err, sql.ErrNoRows) {
		return users.OwnerProfile{}, users.ErrNotFound
	}
	if err != nil {
		return users.OwnerProfile{}, err
	}
	p.AltPerson1, p.AltContact1 = stringPtr(person1), stringPtr(contact1)
	p.AltPerson2, p.AltContact2 = stringPtr(person2), stringPtr(contact2)
	return p, nil
}

func (r *UsersRepo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE lower(user_email) = lower($1) AND user_id <> $2
		)
	`, email, exceptID).Scan(&taken)
	return taken, err
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, u users.User, owner *users.OwnerProfile) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users
			SET
				user_firstname = $2,
				user_lastname = $3,
				user_email = $4,
				user_contact = $5,
				updated_at = $6
			WHERE user_id = $1
		`,
			u.ID,
			u.FirstName,
			u.LastName,
			u.Email,
			nullString(u.Contact),
			u.UpdatedAt,
		)
		if err != nil {
			return mapUniqueEmail(err)
		}
		if err := requireUser(res); err != nil {
			return err
		}
		if owner == nil {
			return nil
		}
		return upsertOwner(ctx, tx, u.ID, *owner)
	})
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET user_password = $2, updated_at = now() WHERE user_id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	return requireUser(res)
}

func (r *UsersRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func upsertOwner(ctx context.Context, tx *sql.Tx, userID string, p users.OwnerProfile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO owner (
			user_id, owner_address,
			owner_alt_person1, owner_alt_contact1,
			owner_alt_person2, owner_alt_contact2
		)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE SET
			owner_address = EXCLUDED.owner_address,
			owner_alt_person1 = EXCLUDED.owner_alt_person1,
			owner_alt_contact1 = EXCLUDED.owner_alt_contact1,
			owner_alt_person2 = EXCLUDED.owner_alt_person2,
			owner_alt_contact2 = EXCLUDED.owner_alt_contact2
	`,
		userID,
		p.Address,
		nullString(p.AltPerson1),
		nullString(p.AltContact1),
		nullString(p.AltPerson2),
		nullString(p.AltContact2),
	)
	return err
}

func requireUser(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

// mapUniqueEmail: el índice único sobre lower(user_email) es la única
// restricción UNIQUE de users además de la PK.
func mapUniqueEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "users_email_uniq" {
		return users.ErrEmailTaken
	}
	return err
}

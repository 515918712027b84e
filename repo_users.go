package disco

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeVerificationTokenSQL flips is_verified and clears the token in one
// statement so there is no window where the token is gone but the flag is
// not yet set.
var ConsumeVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"verification_token" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."verification_token" = ?
) RETURNING *;`

// ConsumeResetTokenSQL applies the new credential hash and clears the reset
// pair in the same statement.
var ConsumeResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_password_token" = NULL,
	"reset_password_token_expiry" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."reset_password_token" = ?
) RETURNING *;`

// ClearResetTokenSQL burns a reset token without touching the credential
// hash. Used when a consumption attempt finds the token expired: expired
// tokens are still single use.
var ClearResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_password_token" = NULL,
	"reset_password_token_expiry" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."reset_password_token" = ?
) RETURNING *;`

// SetResetTokenSQL overwrites any outstanding reset token; latest request
// wins, there is no token queue.
var SetResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_password_token" = ?,
	"reset_password_token_expiry" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// DeactivateUserSQL soft deletes the account
var DeactivateUserSQL = `UPDATE "users" AS "usr"
SET
	"deleted_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	ListAll(ctx context.Context) ([]*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)
	SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiry time.Time) error
	ClearResetTokenTx(ctx context.Context, tx bun.IDB, token string) error
	ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, passwordHash, token string) (*User, error)

	UpdateProfile(ctx context.Context, record *User) (*User, error)

	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error

	Deactivate(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)
	return records, err
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx runs the lookup on the given transaction so a read-modify-write
// closure never reaches back to the pool for its own reads.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumn(ctx, tx, "email", NormalizeEmail(email))
}

func (a *users) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return a.getByColumn(ctx, a.db, "verification_token", token)
}

func (a *users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return a.GetByResetTokenTx(ctx, a.db, token)
}

func (a *users) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	return a.getByColumn(ctx, tx, "reset_password_token", token)
}

// getByColumn does exact match lookups only, partial token matches must
// never resolve.
func (a *users) getByColumn(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"column": column})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	rows, err := a.Repository.RawTx(ctx, tx, ConsumeVerificationTokenSQL, token)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return rows[0], nil
}

func (a *users) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiry time.Time) error {
	rows, err := a.Repository.RawTx(ctx, tx, SetResetTokenSQL, token, expiry, id.String())
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) ClearResetTokenTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := a.Repository.RawTx(ctx, tx, ClearResetTokenSQL, token)
	return err
}

func (a *users) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, passwordHash, token string) (*User, error) {
	rows, err := a.Repository.RawTx(ctx, tx, ConsumeResetTokenSQL, passwordHash, token)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return rows[0], nil
}

// UpdateProfile writes the owner editable fields only; credential and token
// columns go through their dedicated statements. Zero valued fields are
// skipped so a sparse record never nulls out the columns it left unset.
func (a *users) UpdateProfile(ctx context.Context, record *User) (*User, error) {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(record.ID.String()),
		repository.UpdateSkipZeroValues(),
	}

	return a.Repository.UpdateTx(ctx, a.db, record, criteria...)
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	// NOTE: Updating through the ORM wont reset login_attempt_at and
	// login_attempts to their zero values.
	loggedInAt := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"loggedin_at" = ?,
			"login_attempt_at" = NULL,
			"login_attempts" = 0
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, loggedInAt, user.ID).Exec(ctx)

	return err
}

func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	// sparse record: only the attempt counters may be written, a full row
	// update here would null out the account
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(user.ID.String()),
		repository.UpdateSkipZeroValues(),
	}

	record := &User{}
	record.ID = user.ID
	record.LoginAttempts = user.LoginAttempts + 1
	now := time.Now()
	record.LoginAttemptAt = &now

	_, err := a.Repository.UpdateTx(ctx, a.db, record, criteria...)

	return err
}

func (a *users) Deactivate(ctx context.Context, id uuid.UUID) error {
	rows, err := a.Repository.RawTx(ctx, a.db, DeactivateUserSQL, time.Now(), id.String())
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	record.Email = NormalizeEmail(record.Email)
}

package disco

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the regular account role assigned at signup
	RoleUser UserRole = "USER"
	// RoleAdmin can manage users and hard delete content
	RoleAdmin UserRole = "ADMIN"
)

// User is the account model. Verification and password reset state live as
// bare columns on the row; each purpose keeps its own token namespace.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role         UserRole  `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name         string    `bun:"name,notnull" json:"name,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	Bio          string    `bun:"bio" json:"bio,omitempty"`
	Avatar       string    `bun:"avatar" json:"avatar,omitempty"`
	PasswordHash string    `bun:"password_hash" json:"-"`
	IsVerified   bool      `bun:"is_verified" json:"is_verified"`

	// VerificationToken is set at signup and cleared, exactly once, when the
	// account completes verification.
	VerificationToken *string `bun:"verification_token,nullzero" json:"-"`

	// ResetPasswordToken and ResetPasswordTokenExpiry are both nil or both
	// set; only the latest issued token is ever valid.
	ResetPasswordToken       *string    `bun:"reset_password_token,nullzero" json:"-"`
	ResetPasswordTokenExpiry *time.Time `bun:"reset_password_token_expiry,nullzero" json:"-"`

	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPendingReset reports whether a password reset request is outstanding.
func (u *User) HasPendingReset() bool {
	return u.ResetPasswordToken != nil && u.ResetPasswordTokenExpiry != nil
}

// Artist is the subject posts hang off of
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:art"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name      string     `bun:"name,notnull" json:"name,omitempty"`
	Bio       string     `bun:"bio" json:"bio,omitempty"`
	Avatar    string     `bun:"avatar" json:"avatar,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Post is a user authored discussion item about an artist
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title     string     `bun:"title,notnull" json:"title,omitempty"`
	Content   string     `bun:"content,notnull" json:"content,omitempty"`
	ArtistID  uuid.UUID  `bun:"artist_id,notnull,type:uuid" json:"artist_id,omitempty"`
	Artist    *Artist    `bun:"rel:belongs-to,join:artist_id=id" json:"artist,omitempty"`
	AuthorID  uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Author    *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Reply is a threaded response to a post. Nesting goes through
// ParentReplyID; a nil parent means the reply hangs directly off the post.
type Reply struct {
	bun.BaseModel `bun:"table:replies,alias:rpl"`

	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PostID        uuid.UUID  `bun:"post_id,notnull,type:uuid" json:"post_id,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	ParentReplyID *uuid.UUID `bun:"parent_reply_id,nullzero,type:uuid" json:"parent_reply_id,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Reaction is a per user/post like. Toggling inserts or removes the single
// row, there is no counter to drift.
type Reaction struct {
	bun.BaseModel `bun:"table:reactions,alias:rct"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PostID    uuid.UUID  `bun:"post_id,notnull,type:uuid" json:"post_id,omitempty"`
	UserID    uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Kind      string     `bun:"kind,notnull" json:"kind,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

package disco_test

import (
	"context"
	"database/sql"
	"time"

	disco "github.com/goliatone/go-disco"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testConfig implements disco.Config
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
	contextKey      string
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }
func (c testConfig) GetContextKey() string   { return c.contextKey }

// MockIdentity implements disco.Identity
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Role() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements disco.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockUsers mocks the users repository. Only the methods the handlers reach
// are implemented; calling anything else panics through the embedded nil.
type MockUsers struct {
	mock.Mock
	disco.Users
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*disco.User, error) {
	args := m.Called(ctx, email)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*disco.User, error) {
	args := m.Called(ctx, tx, email)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) GetByResetToken(ctx context.Context, token string) (*disco.User, error) {
	args := m.Called(ctx, token)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) GetByResetTokenTx(ctx context.Context, tx bun.IDB, token string) (*disco.User, error) {
	args := m.Called(ctx, tx, token)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *disco.User, criteria ...repository.InsertCriteria) (*disco.User, error) {
	args := m.Called(ctx, record)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *disco.User, criteria ...repository.InsertCriteria) (*disco.User, error) {
	args := m.Called(ctx, tx, record)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*disco.User, error) {
	args := m.Called(ctx, tx, token)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) SetResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, expiry time.Time) error {
	args := m.Called(ctx, tx, id, token, expiry)
	return args.Error(0)
}

func (m *MockUsers) ClearResetTokenTx(ctx context.Context, tx bun.IDB, token string) error {
	args := m.Called(ctx, tx, token)
	return args.Error(0)
}

func (m *MockUsers) ConsumeResetTokenTx(ctx context.Context, tx bun.IDB, passwordHash, token string) (*disco.User, error) {
	args := m.Called(ctx, tx, passwordHash, token)
	var user *disco.User
	if args.Get(0) != nil {
		user = args.Get(0).(*disco.User)
	}
	return user, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *disco.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *disco.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepositoryManager mocks the repository manager. RunInTx executes the
// given closure against a zero transaction so the inner expectations drive
// the outcome.
type MockRepositoryManager struct {
	mock.Mock
	disco.RepositoryManager
}

func (m *MockRepositoryManager) Users() disco.Users {
	args := m.Called()
	return args.Get(0).(disco.Users)
}

func (m *MockRepositoryManager) Artists() disco.Artists {
	args := m.Called()
	return args.Get(0).(disco.Artists)
}

func (m *MockRepositoryManager) Posts() disco.Posts {
	args := m.Called()
	return args.Get(0).(disco.Posts)
}

func (m *MockRepositoryManager) Replies() disco.Replies {
	args := m.Called()
	return args.Get(0).(disco.Replies)
}

func (m *MockRepositoryManager) Reactions() disco.Reactions {
	args := m.Called()
	return args.Get(0).(disco.Reactions)
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return f(ctx, bun.Tx{})
}

// MockArtists mocks the artists repository
type MockArtists struct {
	mock.Mock
	disco.Artists
}

func (m *MockArtists) ListAll(ctx context.Context) ([]*disco.Artist, error) {
	args := m.Called(ctx)
	var records []*disco.Artist
	if args.Get(0) != nil {
		records = args.Get(0).([]*disco.Artist)
	}
	return records, args.Error(1)
}

func (m *MockArtists) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*disco.Artist, error) {
	args := m.Called(ctx, id)
	var record *disco.Artist
	if args.Get(0) != nil {
		record = args.Get(0).(*disco.Artist)
	}
	return record, args.Error(1)
}

func (m *MockArtists) GetByName(ctx context.Context, name string) (*disco.Artist, error) {
	args := m.Called(ctx, name)
	var record *disco.Artist
	if args.Get(0) != nil {
		record = args.Get(0).(*disco.Artist)
	}
	return record, args.Error(1)
}

// MockPosts mocks the posts repository
type MockPosts struct {
	mock.Mock
	disco.Posts
}

func (m *MockPosts) ListAll(ctx context.Context) ([]*disco.Post, error) {
	args := m.Called(ctx)
	var posts []*disco.Post
	if args.Get(0) != nil {
		posts = args.Get(0).([]*disco.Post)
	}
	return posts, args.Error(1)
}

func (m *MockPosts) GetWithRelations(ctx context.Context, id uuid.UUID) (*disco.Post, error) {
	args := m.Called(ctx, id)
	var post *disco.Post
	if args.Get(0) != nil {
		post = args.Get(0).(*disco.Post)
	}
	return post, args.Error(1)
}

func (m *MockPosts) Create(ctx context.Context, record *disco.Post, criteria ...repository.InsertCriteria) (*disco.Post, error) {
	args := m.Called(ctx, record)
	var post *disco.Post
	if args.Get(0) != nil {
		post = args.Get(0).(*disco.Post)
	}
	return post, args.Error(1)
}

func (m *MockPosts) Update(ctx context.Context, record *disco.Post, criteria ...repository.UpdateCriteria) (*disco.Post, error) {
	args := m.Called(ctx, record)
	var post *disco.Post
	if args.Get(0) != nil {
		post = args.Get(0).(*disco.Post)
	}
	return post, args.Error(1)
}

func (m *MockPosts) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReplies mocks the replies repository
type MockReplies struct {
	mock.Mock
	disco.Replies
}

func (m *MockReplies) ListByPost(ctx context.Context, postID uuid.UUID) ([]*disco.Reply, error) {
	args := m.Called(ctx, postID)
	var replies []*disco.Reply
	if args.Get(0) != nil {
		replies = args.Get(0).([]*disco.Reply)
	}
	return replies, args.Error(1)
}

func (m *MockReplies) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*disco.Reply, error) {
	args := m.Called(ctx, id)
	var reply *disco.Reply
	if args.Get(0) != nil {
		reply = args.Get(0).(*disco.Reply)
	}
	return reply, args.Error(1)
}

func (m *MockReplies) Create(ctx context.Context, record *disco.Reply, criteria ...repository.InsertCriteria) (*disco.Reply, error) {
	args := m.Called(ctx, record)
	var reply *disco.Reply
	if args.Get(0) != nil {
		reply = args.Get(0).(*disco.Reply)
	}
	return reply, args.Error(1)
}

func (m *MockReplies) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReactions mocks the reactions repository
type MockReactions struct {
	mock.Mock
	disco.Reactions
}

func (m *MockReactions) GetByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*disco.Reaction, error) {
	args := m.Called(ctx, postID, userID)
	var reaction *disco.Reaction
	if args.Get(0) != nil {
		reaction = args.Get(0).(*disco.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *MockReactions) Create(ctx context.Context, record *disco.Reaction, criteria ...repository.InsertCriteria) (*disco.Reaction, error) {
	args := m.Called(ctx, record)
	var reaction *disco.Reaction
	if args.Get(0) != nil {
		reaction = args.Get(0).(*disco.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *MockReactions) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReactions) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	args := m.Called(ctx, postID)
	return args.Int(0), args.Error(1)
}

// MockIdentityProvider implements disco.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (disco.Identity, error) {
	args := m.Called(ctx, identifier, password)
	var identity disco.Identity
	if args.Get(0) != nil {
		identity = args.Get(0).(disco.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (disco.Identity, error) {
	args := m.Called(ctx, identifier)
	var identity disco.Identity
	if args.Get(0) != nil {
		identity = args.Get(0).(disco.Identity)
	}
	return identity, args.Error(1)
}

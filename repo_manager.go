package disco

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Artists() Artists
	Posts() Posts
	Replies() Replies
	Reactions() Reactions
}

type mngr struct {
	db        *bun.DB
	users     Users
	artists   Artists
	posts     Posts
	replies   Replies
	reactions Reactions
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		artists:   NewArtistsRepository(db),
		posts:     NewPostsRepository(db),
		replies:   NewRepliesRepository(db),
		reactions: NewReactionsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.artists == nil {
		return errors.New("repository artists should be initialized")
	}

	if m.posts == nil {
		return errors.New("repository posts should be initialized")
	}

	if m.replies == nil {
		return errors.New("repository replies should be initialized")
	}

	if m.reactions == nil {
		return errors.New("repository reactions should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Artists() Artists {
	return m.artists
}

func (m mngr) Posts() Posts {
	return m.posts
}

func (m mngr) Replies() Replies {
	return m.replies
}

func (m mngr) Reactions() Reactions {
	return m.reactions
}

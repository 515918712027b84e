package disco

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Artists is the store for the artists posts reference
type Artists interface {
	repository.Repository[*Artist]

	ListAll(ctx context.Context) ([]*Artist, error)
	GetByName(ctx context.Context, name string) (*Artist, error)
}

type artists struct {
	repository.Repository[*Artist]
	db *bun.DB
}

func NewArtistsRepository(db *bun.DB) Artists {
	repo := repository.NewRepository[*Artist](db, repository.ModelHandlers[*Artist]{
		NewRecord: func() *Artist { return &Artist{} },
		GetID: func(a *Artist) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Artist, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &artists{Repository: repo, db: db}
}

func (a *artists) ListAll(ctx context.Context) ([]*Artist, error) {
	var records []*Artist
	err := a.db.NewSelect().
		Model(&records).
		Order("name ASC").
		Scan(ctx)
	return records, err
}

func (a *artists) GetByName(ctx context.Context, name string) (*Artist, error) {
	record := &Artist{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"name": name})
		}
		return nil, err
	}

	return record, nil
}

// Posts is the store for forum posts
type Posts interface {
	repository.Repository[*Post]

	ListAll(ctx context.Context) ([]*Post, error)
	GetWithRelations(ctx context.Context, id uuid.UUID) (*Post, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type posts struct {
	repository.Repository[*Post]
	db *bun.DB
}

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*Post](db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{Repository: repo, db: db}
}

func (p *posts) ListAll(ctx context.Context) ([]*Post, error) {
	var records []*Post
	err := p.db.NewSelect().
		Model(&records).
		Relation("Artist").
		Relation("Author").
		Order("created_at DESC").
		Scan(ctx)
	return records, err
}

func (p *posts) GetWithRelations(ctx context.Context, id uuid.UUID) (*Post, error) {
	record := &Post{}
	err := p.db.NewSelect().
		Model(record).
		Relation("Artist").
		Relation("Author").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (p *posts) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := p.db.NewDelete().
		Model((*Post)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

// Replies is the store for threaded replies
type Replies interface {
	repository.Repository[*Reply]

	ListByPost(ctx context.Context, postID uuid.UUID) ([]*Reply, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type replies struct {
	repository.Repository[*Reply]
	db *bun.DB
}

func NewRepliesRepository(db *bun.DB) Replies {
	repo := repository.NewRepository[*Reply](db, repository.ModelHandlers[*Reply]{
		NewRecord: func() *Reply { return &Reply{} },
		GetID: func(r *Reply) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Reply, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &replies{Repository: repo, db: db}
}

func (r *replies) ListByPost(ctx context.Context, postID uuid.UUID) ([]*Reply, error) {
	var records []*Reply
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.post_id = ?", postID).
		Order("created_at ASC").
		Scan(ctx)
	return records, err
}

func (r *replies) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Reply)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

// Reactions is the store for per user post reactions
type Reactions interface {
	repository.Repository[*Reaction]

	GetByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*Reaction, error)
	Remove(ctx context.Context, id uuid.UUID) error
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
}

type reactions struct {
	repository.Repository[*Reaction]
	db *bun.DB
}

func NewReactionsRepository(db *bun.DB) Reactions {
	repo := repository.NewRepository[*Reaction](db, repository.ModelHandlers[*Reaction]{
		NewRecord: func() *Reaction { return &Reaction{} },
		GetID: func(r *Reaction) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Reaction, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &reactions{Repository: repo, db: db}
}

func (r *reactions) GetByPostAndUser(ctx context.Context, postID, userID uuid.UUID) (*Reaction, error) {
	record := &Reaction{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.post_id = ?", postID).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *reactions) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Reaction)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (r *reactions) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*Reaction)(nil)).
		Where("?TableAlias.post_id = ?", postID).
		Count(ctx)
}

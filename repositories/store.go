// File: /repositories/store.go
package repositories

import (
	"context"
	"errors"

	"vanlife-api/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// Page selects a 1-based page of at most Limit records.
type Page struct {
	Page  int
	Limit int
}

func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// VanFilter narrows van listings; zero fields match everything.
type VanFilter struct {
	Type   models.VanType
	HostID uint
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, page Page) ([]models.User, int64, error)
}

// VanRepository returns vans with Host populated.
type VanRepository interface {
	Create(ctx context.Context, van *models.Van) error
	Update(ctx context.Context, van *models.Van) error
	Delete(ctx context.Context, van *models.Van) error
	FindByUUID(ctx context.Context, uuid string) (*models.Van, error)
	List(ctx context.Context, filter VanFilter) ([]models.Van, error)
	ListPage(ctx context.Context, page Page) ([]models.Van, int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, trx *models.Transaction) error
	ListByLessor(ctx context.Context, lessorID uint) ([]models.Transaction, error)
	ListPage(ctx context.Context, page Page) ([]models.Transaction, int64, error)
	DeleteByUUID(ctx context.Context, uuid string) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Review, error)
	// RenameVan rewrites the denormalized van name on every review of the van.
	RenameVan(ctx context.Context, vanID uint, name string) error
	ListPage(ctx context.Context, page Page) ([]models.Review, int64, error)
	DeleteByUUID(ctx context.Context, uuid string) error
}

// Store groups the repositories. Atomic runs fn against a transactional
// Store; fn's writes are committed together when it returns nil and
// discarded otherwise.
type Store interface {
	Users() UserRepository
	Vans() VanRepository
	Transactions() TransactionRepository
	Reviews() ReviewRepository
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

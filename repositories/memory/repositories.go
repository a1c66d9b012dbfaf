// File: /repositories/memory/repositories.go
package memory

import (
	"context"
	"errors"

	"vanlife-api/models"
	"vanlife-api/repositories"
)

type users struct {
	h handle
}

func (r *users) Create(_ context.Context, user *models.User) error {
	return r.h.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email || u.UUID == user.UUID {
				return repositories.ErrDuplicate
			}
		}
		user.ID = st.id()
		user.CreatedAt = r.h.now()
		user.UpdatedAt = user.CreatedAt
		st.users[user.ID] = *user
		return nil
	})
}

func (r *users) Update(_ context.Context, user *models.User) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return repositories.ErrNotFound
		}
		for id, u := range st.users {
			if id != user.ID && u.Email == user.Email {
				return repositories.ErrDuplicate
			}
		}
		user.UpdatedAt = r.h.now()
		st.users[user.ID] = *user
		return nil
	})
}

func (r *users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var found *models.User
	err := r.h.do(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				found = &u
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return found, err
}

func (r *users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *users) Count(_ context.Context) (int64, error) {
	var n int64
	err := r.h.do(func(st *state) error {
		n = int64(len(st.users))
		return nil
	})
	return n, err
}

func (r *users) List(_ context.Context, page repositories.Page) ([]models.User, int64, error) {
	var (
		out   []models.User
		total int64
	)
	err := r.h.do(func(st *state) error {
		all := make([]models.User, 0, len(st.users))
		for _, id := range sortedIDs(st.users) {
			all = append(all, st.users[id])
		}
		total = int64(len(all))
		out = pageOf(all, page)
		return nil
	})
	return out, total, err
}

type vans struct {
	h handle
}

func withHost(st *state, v models.Van) models.Van {
	if host, ok := st.users[v.HostID]; ok {
		v.Host = &host
	} else {
		v.Host = nil
	}
	return v
}

func (r *vans) Create(_ context.Context, van *models.Van) error {
	return r.h.do(func(st *state) error {
		for _, v := range st.vans {
			if v.UUID == van.UUID {
				return repositories.ErrDuplicate
			}
		}
		van.ID = st.id()
		van.CreatedAt = r.h.now()
		van.UpdatedAt = van.CreatedAt
		stored := *van
		stored.Host = nil
		st.vans[van.ID] = stored
		return nil
	})
}

func (r *vans) Update(_ context.Context, van *models.Van) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.vans[van.ID]; !ok {
			return repositories.ErrNotFound
		}
		van.UpdatedAt = r.h.now()
		stored := *van
		stored.Host = nil
		st.vans[van.ID] = stored
		return nil
	})
}

func (r *vans) Delete(_ context.Context, van *models.Van) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.vans[van.ID]; !ok {
			return repositories.ErrNotFound
		}
		delete(st.vans, van.ID)
		return nil
	})
}

func (r *vans) FindByUUID(_ context.Context, uuid string) (*models.Van, error) {
	var found *models.Van
	err := r.h.do(func(st *state) error {
		for _, v := range st.vans {
			if v.UUID == uuid {
				v = withHost(st, v)
				found = &v
				return nil
			}
		}
		return repositories.ErrNotFound
	})
	return found, err
}

func (r *vans) List(_ context.Context, filter repositories.VanFilter) ([]models.Van, error) {
	var out []models.Van
	err := r.h.do(func(st *state) error {
		for _, id := range sortedIDs(st.vans) {
			v := st.vans[id]
			if filter.Type != "" && v.Type != filter.Type {
				continue
			}
			if filter.HostID != 0 && v.HostID != filter.HostID {
				continue
			}
			out = append(out, withHost(st, v))
		}
		return nil
	})
	return out, err
}

func (r *vans) ListPage(ctx context.Context, page repositories.Page) ([]models.Van, int64, error) {
	all, err := r.List(ctx, repositories.VanFilter{})
	if err != nil {
		return nil, 0, err
	}
	return pageOf(all, page), int64(len(all)), nil
}

type transactions struct {
	h handle
}

func (r *transactions) Create(_ context.Context, trx *models.Transaction) error {
	return r.h.do(func(st *state) error {
		for _, t := range st.transactions {
			if t.UUID == trx.UUID {
				return repositories.ErrDuplicate
			}
		}
		trx.ID = st.id()
		trx.CreatedAt = r.h.now()
		st.transactions[trx.ID] = *trx
		return nil
	})
}

func (r *transactions) ListByLessor(_ context.Context, lessorID uint) ([]models.Transaction, error) {
	var out []models.Transaction
	err := r.h.do(func(st *state) error {
		for _, id := range sortedIDs(st.transactions) {
			if t := st.transactions[id]; t.LessorID == lessorID {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (r *transactions) ListPage(_ context.Context, page repositories.Page) ([]models.Transaction, int64, error) {
	var (
		out   []models.Transaction
		total int64
	)
	err := r.h.do(func(st *state) error {
		all := make([]models.Transaction, 0, len(st.transactions))
		for _, id := range sortedIDs(st.transactions) {
			all = append(all, st.transactions[id])
		}
		total = int64(len(all))
		out = pageOf(all, page)
		return nil
	})
	return out, total, err
}

func (r *transactions) DeleteByUUID(_ context.Context, uuid string) error {
	return r.h.do(func(st *state) error {
		for id, t := range st.transactions {
			if t.UUID == uuid {
				delete(st.transactions, id)
				return nil
			}
		}
		return repositories.ErrNotFound
	})
}

type reviews struct {
	h handle
}

func (r *reviews) Create(_ context.Context, review *models.Review) error {
	return r.h.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.UUID == review.UUID {
				return repositories.ErrDuplicate
			}
		}
		review.ID = st.id()
		review.CreatedAt = r.h.now()
		st.reviews[review.ID] = *review
		return nil
	})
}

func (r *reviews) ListByOwner(_ context.Context, ownerID uint) ([]models.Review, error) {
	var out []models.Review
	err := r.h.do(func(st *state) error {
		for _, id := range sortedIDs(st.reviews) {
			if rv := st.reviews[id]; rv.OwnerID == ownerID {
				out = append(out, rv)
			}
		}
		return nil
	})
	return out, err
}

func (r *reviews) RenameVan(_ context.Context, vanID uint, name string) error {
	return r.h.do(func(st *state) error {
		for id, rv := range st.reviews {
			if rv.VanID == vanID {
				rv.VanName = name
				st.reviews[id] = rv
			}
		}
		return nil
	})
}

func (r *reviews) ListPage(_ context.Context, page repositories.Page) ([]models.Review, int64, error) {
	var (
		out   []models.Review
		total int64
	)
	err := r.h.do(func(st *state) error {
		all := make([]models.Review, 0, len(st.reviews))
		for _, id := range sortedIDs(st.reviews) {
			all = append(all, st.reviews[id])
		}
		total = int64(len(all))
		out = pageOf(all, page)
		return nil
	})
	return out, total, err
}

func (r *reviews) DeleteByUUID(_ context.Context, uuid string) error {
	return r.h.do(func(st *state) error {
		for id, rv := range st.reviews {
			if rv.UUID == uuid {
				delete(st.reviews, id)
				return nil
			}
		}
		return repositories.ErrNotFound
	})
}

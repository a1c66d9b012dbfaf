// File: /repositories/gorm_store.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"vanlife-api/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository               { return &UserGormRepository{db: s.db} }
func (s *GormStore) Vans() VanRepository                 { return &VanGormRepository{db: s.db} }
func (s *GormStore) Transactions() TransactionRepository { return &TransactionGormRepository{db: s.db} }
func (s *GormStore) Reviews() ReviewRepository           { return &ReviewGormRepository{db: s.db} }

func (s *GormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func paginate[T any](db *gorm.DB, page Page, what string, preloads ...string) ([]T, int64, error) {
	var (
		total int64
		items []T
	)
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count "+what)
	}
	query := db.Order("id").Offset(page.Offset()).Limit(page.Limit)
	for _, p := range preloads {
		query = query.Preload(p)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, translate(err, "list "+what)
	}
	return items, total, nil
}

type UserGormRepository struct {
	db *gorm.DB
}

func (r *UserGormRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error, "create user")
}

func (r *UserGormRepository) Update(ctx context.Context, user *models.User) error {
	return updateRow(r.db.WithContext(ctx), user, "user")
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &user, nil
}

func (r *UserGormRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return false, translate(err, "count users by email")
	}
	return n > 0, nil
}

func (r *UserGormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count users")
	}
	return n, nil
}

func (r *UserGormRepository) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	return paginate[models.User](r.db.WithContext(ctx), page, "users")
}

type VanGormRepository struct {
	db *gorm.DB
}

func (r *VanGormRepository) Create(ctx context.Context, van *models.Van) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(van).Error, "create van")
}

func (r *VanGormRepository) Update(ctx context.Context, van *models.Van) error {
	return updateRow(r.db.WithContext(ctx), van, "van")
}

func (r *VanGormRepository) Delete(ctx context.Context, van *models.Van) error {
	res := r.db.WithContext(ctx).Delete(&models.Van{}, van.ID)
	if res.Error != nil {
		return translate(res.Error, "delete van")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VanGormRepository) FindByUUID(ctx context.Context, uuid string) (*models.Van, error) {
	var van models.Van
	if err := r.db.WithContext(ctx).Preload("Host").Where("uuid = ?", uuid).First(&van).Error; err != nil {
		return nil, translate(err, "find van")
	}
	return &van, nil
}

func (r *VanGormRepository) List(ctx context.Context, filter VanFilter) ([]models.Van, error) {
	query := r.db.WithContext(ctx).Preload("Host").Order("id")
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.HostID != 0 {
		query = query.Where("host_id = ?", filter.HostID)
	}

	var vans []models.Van
	if err := query.Find(&vans).Error; err != nil {
		return nil, translate(err, "list vans")
	}
	return vans, nil
}

func (r *VanGormRepository) ListPage(ctx context.Context, page Page) ([]models.Van, int64, error) {
	return paginate[models.Van](r.db.WithContext(ctx), page, "vans", "Host")
}

type TransactionGormRepository struct {
	db *gorm.DB
}

func (r *TransactionGormRepository) Create(ctx context.Context, trx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(trx).Error, "create transaction")
}

func (r *TransactionGormRepository) ListByLessor(ctx context.Context, lessorID uint) ([]models.Transaction, error) {
	var trx []models.Transaction
	if err := r.db.WithContext(ctx).Where("lessor_id = ?", lessorID).Order("id").Find(&trx).Error; err != nil {
		return nil, translate(err, "list transactions")
	}
	return trx, nil
}

func (r *TransactionGormRepository) ListPage(ctx context.Context, page Page) ([]models.Transaction, int64, error) {
	return paginate[models.Transaction](r.db.WithContext(ctx), page, "transactions")
}

func (r *TransactionGormRepository) DeleteByUUID(ctx context.Context, uuid string) error {
	return deleteByUUID[models.Transaction](r.db.WithContext(ctx), uuid, "transaction")
}

type ReviewGormRepository struct {
	db *gorm.DB
}

func (r *ReviewGormRepository) Create(ctx context.Context, review *models.Review) error {
	return translate(r.db.WithContext(ctx).Create(review).Error, "create review")
}

func (r *ReviewGormRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&reviews).Error; err != nil {
		return nil, translate(err, "list reviews")
	}
	return reviews, nil
}

func (r *ReviewGormRepository) RenameVan(ctx context.Context, vanID uint, name string) error {
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("van_id = ?", vanID).Update("van_name", name).Error
	return translate(err, "rename van on reviews")
}

func (r *ReviewGormRepository) ListPage(ctx context.Context, page Page) ([]models.Review, int64, error) {
	return paginate[models.Review](r.db.WithContext(ctx), page, "reviews")
}

func (r *ReviewGormRepository) DeleteByUUID(ctx context.Context, uuid string) error {
	return deleteByUUID[models.Review](r.db.WithContext(ctx), uuid, "review")
}

// updateRow writes every column of an existing row. It never inserts, so a
// row deleted in the meantime yields ErrNotFound.
func updateRow(db *gorm.DB, row interface{}, what string) error {
	res := db.Model(row).Select("*").Omit("ID", "CreatedAt", clause.Associations).Updates(row)
	if res.Error != nil {
		return translate(res.Error, "update "+what)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByUUID[T any](db *gorm.DB, uuid, what string) error {
	res := db.Where("uuid = ?", uuid).Delete(new(T))
	if res.Error != nil {
		return translate(res.Error, "delete "+what)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

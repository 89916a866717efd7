package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pingme/pingme-server/internal/domain"
	"github.com/pingme/pingme-server/internal/infra/database/models"
)

const userCacheTTL = 5 * time.Minute

type UserRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewUserRepository wires the account store. mc may be nil; profile
// reads then always hit the database.
func NewUserRepository(db *gorm.DB, mc *memcache.Client) *UserRepository {
	return &UserRepository{db: db, mc: mc}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	model := models.User{
		ID:       uuid.New().String(),
		Username: user.Username,
		Email:    user.Email,
		Password: user.Password,
	}
	model.CreatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrAlreadyExists
		}
		return domain.User{}, err
	}
	return toDomainUser(model), nil
}

// Get resolves a profile by id. Enrichment lookups hammer this path,
// so resolved profiles are cached in memcached without the credential
// columns.
func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	cacheKey := "user:" + id

	if r.mc != nil {
		if item, err := r.mc.Get(cacheKey); err == nil {
			var cached domain.User
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var model models.User
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}

	user := toDomainUser(model)
	user.Password = ""

	if r.mc != nil {
		if payload, err := json.Marshal(user); err == nil {
			err = r.mc.Set(&memcache.Item{
				Key:        cacheKey,
				Value:      payload,
				Expiration: int32(userCacheTTL.Seconds()),
			})
			if err != nil {
				slog.Debug(
					"User cache write failed",
					slog.String("error", err.Error()),
					slog.String("module", "repository"),
				)
			}
		}
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return toDomainUser(model), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomainUser(row))
	}
	return users, nil
}

func toDomainUser(model models.User) domain.User {
	return domain.User{
		ID:        model.ID,
		Username:  model.Username,
		Email:     model.Email,
		Password:  model.Password,
		CreatedAt: model.CreatedAt,
	}
}

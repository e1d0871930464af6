// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipe_backend/internal/feature/auth/domain"
	"recipe_backend/internal/feature/auth/domain/entity"
	"recipe_backend/internal/feature/auth/usecase"
	"recipe_backend/internal/platform/db"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、domain.ErrEmailTakenを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update は指定されたフィールドのみを更新します。
// メールアドレスが他のユーザーと重複する場合、domain.ErrEmailTakenを返します。
func (r *userGorm) Update(ctx context.Context, id uint, update entity.UserUpdate) (*entity.User, error) {
	fields := map[string]any{}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Password != nil {
		fields["password"] = *update.Password
	}

	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			if db.IsUniqueViolation(result.Error) {
				return nil, domain.ErrEmailTaken
			}
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrUserNotFound
		}
	}
	return r.FindByID(ctx, id)
}

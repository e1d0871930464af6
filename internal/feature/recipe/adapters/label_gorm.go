package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/usecase"
	"recipe_backend/internal/platform/db"
)

// labelGorm はLabelRepositoryインターフェースのGORM実装です。
// kindによりtagsまたはingredientsテーブルを操作します。
type labelGorm struct {
	db   *gorm.DB
	kind entity.LabelKind
}

// labelGormがLabelRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.LabelRepository = (*labelGorm)(nil)

// NewLabelGorm は指定された種類のlabelGormを生成します。
func NewLabelGorm(db *gorm.DB, kind entity.LabelKind) *labelGorm {
	return &labelGorm{db: db, kind: kind}
}

// List は名前の降順でラベルを返します。
// assignedOnlyの場合、ユーザーのレシピに1件以上関連付いたラベルだけをサブクエリで絞り込むため重複しません。
func (r *labelGorm) List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Label, error) {
	q := r.db.WithContext(ctx).Table(r.kind.Table()).Where("user_id = ?", userID)
	if assignedOnly {
		assigned := r.db.Table(r.kind.JoinTable()+" AS jt").
			Select("jt."+r.kind.JoinColumn()).
			Joins("JOIN recipes ON recipes.id = jt.recipe_id").
			Where("recipes.user_id = ?", userID)
		q = q.Where("id IN (?)", assigned)
	}

	var rows []labelRow
	if err := q.Order("name DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", r.kind, err)
	}
	labels := make([]entity.Label, len(rows))
	for i, row := range rows {
		labels[i] = row.toEntity()
	}
	return labels, nil
}

// FindByID はユーザーのラベルを返します。存在しない場合domain.ErrNotFoundを返します。
func (r *labelGorm) FindByID(ctx context.Context, userID, id uint) (*entity.Label, error) {
	row, err := findLabel(r.db.WithContext(ctx), r.kind, userID, id)
	if err != nil {
		return nil, err
	}
	l := row.toEntity()
	return &l, nil
}

// Create はラベルを追加します。同名が既にある場合domain.ErrLabelExistsを返します。
func (r *labelGorm) Create(ctx context.Context, userID uint, name string) (*entity.Label, error) {
	row := labelRow{UserID: userID, Name: name}
	if err := r.db.WithContext(ctx).Table(r.kind.Table()).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrLabelExists
		}
		return nil, fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	l := row.toEntity()
	return &l, nil
}

// Update はラベル名を変更します。
func (r *labelGorm) Update(ctx context.Context, userID, id uint, name string) (*entity.Label, error) {
	res := r.db.WithContext(ctx).Table(r.kind.Table()).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error) {
			return nil, domain.ErrLabelExists
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, userID, id)
}

// Delete はラベルと関連行を同じトランザクションで削除します。
func (r *labelGorm) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findLabel(tx, r.kind, userID, id); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM "+r.kind.JoinTable()+" WHERE "+r.kind.JoinColumn()+" = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink %s: %w", r.kind, err)
		}
		if err := tx.Table(r.kind.Table()).Where("id = ? AND user_id = ?", id, userID).Delete(&labelRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete %s: %w", r.kind, err)
		}
		return nil
	})
}

func findLabel(tx *gorm.DB, kind entity.LabelKind, userID, id uint) (labelRow, error) {
	var row labelRow
	err := tx.Table(kind.Table()).Where("id = ? AND user_id = ?", id, userID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return labelRow{}, domain.ErrNotFound
		}
		return labelRow{}, fmt.Errorf("failed to find %s: %w", kind, err)
	}
	return row, nil
}

// getOrCreateLabel はユーザーの同名ラベルを返し、なければ作成します。
// 並行リクエストが同じ名前を同時に作成した場合は一意制約で衝突し、
// ON CONFLICT DO NOTHING で挿入が0件になるため、先に作成された行を再取得します。
func getOrCreateLabel(tx *gorm.DB, kind entity.LabelKind, userID uint, name string) (labelRow, error) {
	var row labelRow
	found := tx.Table(kind.Table()).Where("user_id = ? AND name = ?", userID, name).Limit(1).Find(&row)
	if found.Error != nil {
		return labelRow{}, fmt.Errorf("failed to find %s %q: %w", kind, name, found.Error)
	}
	if found.RowsAffected > 0 {
		return row, nil
	}

	row = labelRow{UserID: userID, Name: name}
	res := tx.Table(kind.Table()).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return labelRow{}, fmt.Errorf("failed to create %s %q: %w", kind, name, res.Error)
	}
	if res.RowsAffected > 0 && row.ID != 0 {
		return row, nil
	}

	row = labelRow{}
	if err := tx.Table(kind.Table()).Where("user_id = ? AND name = ?", userID, name).Take(&row).Error; err != nil {
		return labelRow{}, fmt.Errorf("failed to reselect %s %q: %w", kind, name, err)
	}
	return row, nil
}

// replaceLabels はレシピの関連をすべて削除し、namesで再構築します。
func replaceLabels(tx *gorm.DB, kind entity.LabelKind, userID, recipeID uint, names []string) error {
	if err := tx.Exec("DELETE FROM "+kind.JoinTable()+" WHERE recipe_id = ?", recipeID).Error; err != nil {
		return fmt.Errorf("failed to clear %ss: %w", kind, err)
	}
	return addLabels(tx, kind, userID, recipeID, names)
}

// addLabels はnamesのラベルを取得または作成してレシピに関連付けます。
// 同じ名前が複数回指定されても関連は1行です。
func addLabels(tx *gorm.DB, kind entity.LabelKind, userID, recipeID uint, names []string) error {
	for _, name := range names {
		row, err := getOrCreateLabel(tx, kind, userID, name)
		if err != nil {
			return err
		}
		err = tx.Exec(
			"INSERT INTO "+kind.JoinTable()+" (recipe_id, "+kind.JoinColumn()+") VALUES (?, ?) ON CONFLICT DO NOTHING",
			recipeID, row.ID,
		).Error
		if err != nil {
			return fmt.Errorf("failed to link %s %q: %w", kind, name, err)
		}
	}
	return nil
}

// loadLabels はレシピIDごとのラベルをID順で返します。
func loadLabels(tx *gorm.DB, kind entity.LabelKind, recipeIDs []uint) (map[uint][]entity.Label, error) {
	out := make(map[uint][]entity.Label, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	type linkedLabel struct {
		RecipeID uint
		ID       uint
		UserID   uint
		Name     string
	}
	var rows []linkedLabel
	err := tx.Table(kind.JoinTable()+" AS jt").
		Select("jt.recipe_id AS recipe_id, l.id AS id, l.user_id AS user_id, l.name AS name").
		Joins("JOIN "+kind.Table()+" AS l ON l.id = jt."+kind.JoinColumn()).
		Where("jt.recipe_id IN ?", recipeIDs).
		Order("l.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %ss: %w", kind, err)
	}
	for _, row := range rows {
		out[row.RecipeID] = append(out[row.RecipeID], entity.Label{ID: row.ID, UserID: row.UserID, Name: row.Name})
	}
	return out, nil
}

package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/platform/validation"
)

// RecipeWriteReq はレシピの作成・更新リクエストです。
// 省略されたキーはnilのままになり、PATCHでは変更されません。
// "tags": [] のように空配列を指定すると関連をすべて解除します。
type RecipeWriteReq struct {
	Title       *string         `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int            `json:"time_minutes" binding:"omitempty,gte=0"`
	Price       json.RawMessage `json:"price"`
	Link        *string         `json:"link" binding:"omitempty,max=255"`
	Description *string         `json:"description"`
	Tags        []LabelReq      `json:"tags" binding:"omitempty,dive"`
	Ingredients []LabelReq      `json:"ingredients" binding:"omitempty,dive"`

	// nulls は明示的にnullが指定されたスカラーフィールドのキーです。
	nulls []string
}

const nullMsg = "This field may not be null."

// nonNullable はnullを受け付けないスカラーフィールドです。priceはToFieldsで個別に扱います。
var nonNullable = []string{"title", "time_minutes", "link", "description"}

// UnmarshalJSON は通常のデコードに加え、nonNullableのキーにnullが指定されたかを記録します。
// ポインタのままでは省略とnullを区別できないためです。
func (r *RecipeWriteReq) UnmarshalJSON(data []byte) error {
	type plain RecipeWriteReq
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RecipeWriteReq(p)
	r.nulls = nil
	for _, key := range nonNullable {
		if v, ok := raw[key]; ok && isNull(v) {
			r.nulls = append(r.nulls, key)
		}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// ToFields はバインド後の検証（空白、価格の形式、ラベル名）を行い、RecipeFieldsへ変換します。
func (r RecipeWriteReq) ToFields() (entity.RecipeFields, error) {
	errs := validation.Errors{}
	var f entity.RecipeFields
	for _, key := range r.nulls {
		errs.Add(key, nullMsg)
	}

	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			errs.Add("title", blankMsg)
		}
		f.Title = &title
	}
	f.TimeMinutes = r.TimeMinutes
	f.Link = r.Link
	f.Description = r.Description

	if r.Price != nil {
		if isNull(r.Price) {
			errs.Add("price", nullMsg)
		} else if p, err := entity.ParsePriceJSON(r.Price); err != nil {
			errs.Add("price", priceMessage(err))
		} else {
			f.Price = &p
		}
	}

	f.Tags = labelNames(errs, "tags", r.Tags)
	f.Ingredients = labelNames(errs, "ingredients", r.Ingredients)

	if len(errs) > 0 {
		return entity.RecipeFields{}, errs
	}
	return f, nil
}

// labelNames はnilならnil（変更なし）、それ以外は空でも置き換え対象のスライスを返します。
func labelNames(errs validation.Errors, field string, labels []LabelReq) *[]string {
	if labels == nil {
		return nil
	}
	names := make([]string, 0, len(labels))
	for i, l := range labels {
		name, lerr := l.LabelName()
		if lerr != nil {
			for _, msg := range lerr["name"] {
				errs.Add(fmt.Sprintf("%s[%d].name", field, i), msg)
			}
			continue
		}
		names = append(names, name)
	}
	return &names
}

func priceMessage(err error) string {
	var pe entity.PriceError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return entity.ErrPriceInvalid.Error()
}

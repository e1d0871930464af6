// Package dto はrecipeフィーチャーのリクエスト/レスポンス型を定義します。
package dto

import (
	"strings"

	"recipe_backend/internal/platform/validation"
)

const blankMsg = "This field may not be blank."

// LabelReq はタグ・材料の作成/更新リクエスト、およびレシピ内のネストされたラベルです。
type LabelReq struct {
	Name *string `json:"name" binding:"required,max=255"`
}

// LabelName は前後の空白を除いた名前を返します。空の場合はnameフィールドのエラーを返します。
func (r LabelReq) LabelName() (string, validation.Errors) {
	name := strings.TrimSpace(deref(r.Name))
	if name == "" {
		return "", validation.Field("name", blankMsg)
	}
	return name, nil
}

// LabelPatchReq はタグ・材料の部分更新リクエストです。nameが省略された場合は変更しません。
type LabelPatchReq struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// LabelName はnameが指定されていればLabelReqと同じ検証を行います。未指定の場合はnilを返します。
func (r LabelPatchReq) LabelName() (*string, validation.Errors) {
	if r.Name == nil {
		return nil, nil
	}
	name, errs := LabelReq{Name: r.Name}.LabelName()
	if errs != nil {
		return nil, errs
	}
	return &name, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

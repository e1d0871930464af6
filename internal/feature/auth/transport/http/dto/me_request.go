package dto

// UpdateMeReq は PATCH /users/me/ のリクエストボディです。省略したフィールドは変更しません。
type UpdateMeReq struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password"`
}

// ReplaceMeReq は PUT /users/me/ のリクエストボディです。emailとnameは必須です。
type ReplaceMeReq struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Name     string  `json:"name" binding:"required,max=255"`
	Password *string `json:"password"`
}

package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AddMemberRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Role      string `json:"role"`
	ClassName string `json:"class_name"`
	AvatarURL string `json:"avatar_url"`
}

func (req *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Age, validation.Min(0), validation.Max(120)),
	)
}

type UpdateMemberRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Role      string `json:"role"`
	ClassName string `json:"class_name"`
	AvatarURL string `json:"avatar_url"`
}

func (req *UpdateMemberRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Age, validation.Min(0), validation.Max(120)),
	)
}

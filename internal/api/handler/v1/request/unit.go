package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateUnitRequest struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	CardImageURL string `json:"card_image_url"`
	CardColor    string `json:"card_color"`
}

func (req *CreateUnitRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
	)
}

type UpdateUnitRequest struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	CardImageURL string `json:"card_image_url"`
	CardColor    string `json:"card_color"`
}

func (req *UpdateUnitRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
	)
}

// SetUnitPasswordRequest carries the optional access password. An empty
// password removes the gate.
type SetUnitPasswordRequest struct {
	Password string `json:"password"`
}

func (req *SetUnitPasswordRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Password, validation.Length(0, 72)),
	)
}

type VerifyUnitPasswordRequest struct {
	Password string `json:"password"`
}

func (req *VerifyUnitPasswordRequest) Validate() error {
	return nil
}

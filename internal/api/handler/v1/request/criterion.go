package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Points travels as a string because the settings form submits free text.
// Unparseable values coerce to zero instead of rejecting the edit.
type AddCriterionRequest struct {
	Label  string `json:"label"`
	Points string `json:"points"`
}

func (req *AddCriterionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Label, validation.Required, validation.Length(1, 100)),
	)
}

type UpdateCriterionRequest struct {
	Label  string `json:"label"`
	Points string `json:"points"`
}

func (req *UpdateCriterionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Label, validation.Required, validation.Length(1, 100)),
	)
}

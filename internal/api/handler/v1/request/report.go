package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type MemberScoreRequest struct {
	Checks      map[string]bool `json:"checks"`
	Observation string          `json:"observation"`
}

type CreateReportRequest struct {
	Date    string                        `json:"date"`
	Members map[string]MemberScoreRequest `json:"members"`
}

func (req *CreateReportRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

type UpdateReportRequest struct {
	Date    string                        `json:"date"`
	Members map[string]MemberScoreRequest `json:"members"`
}

func (req *UpdateReportRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type RankTierRequest struct {
	Score   int    `json:"score"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

func (req RankTierRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Score, validation.Min(0)),
	)
}

type SetRankOverridesRequest struct {
	Tiers []RankTierRequest `json:"tiers"`
}

func (req *SetRankOverridesRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Tiers),
	)
}

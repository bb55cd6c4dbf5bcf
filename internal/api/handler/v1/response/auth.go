package response

import "github.com/clubescore/ranking-api/internal/domain"

type LoginResponse struct {
	Token string       `json:"token"`
	Admin domain.Admin `json:"admin"`
}

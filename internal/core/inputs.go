package core

// PlaceInput identifies the place a challenge is made for. Either ExternalID or Name
// must be set.
type PlaceInput struct {
	ExternalID string `validate:"required_without=Name"`
	Name       string `validate:"required_without=ExternalID"`
	Address    string
	Phone      string `validate:"omitempty,numeric"`
}

type CreateChallengeInput struct {
	CreatorID string `validate:"required"`
	Text      string `validate:"required"`
	Place     PlaceInput

	// Optional review of the creator's own visit.
	Review  string
	Rating  int    `validate:"min=0,max=100"`
	Picture string `validate:"omitempty,url"`
}

type CompleteInput struct {
	Review  string
	Rating  int    `validate:"min=0,max=100"`
	Picture string `validate:"omitempty,url"`
}

package domain

// LPRRequestDTO carries a base64-encoded camera frame for plate extraction.
type LPRRequestDTO struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
}

// LPRCandidate is one plausible plate reading from a frame.
type LPRCandidate struct {
	PlateText  string  `json:"plate_text"`
	Confidence float64 `json:"confidence"`
}

// LPRResponseDTO returns every candidate plus the action the engine took
// with them (how many observations were accepted into the vote tally and
// whether one of them confirmed an event).
type LPRResponseDTO struct {
	Candidates []LPRCandidate  `json:"candidates"`
	Accepted   int             `json:"accepted"`
	Confirmed  *ConfirmedEvent `json:"confirmed,omitempty"`
}

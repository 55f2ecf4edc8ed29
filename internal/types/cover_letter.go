package types

// CoverLetter is the structured cover letter produced for a session.
type CoverLetter struct {
	Greeting         string   `json:"greeting"`
	OpeningParagraph string   `json:"opening_paragraph"`
	BodyParagraphs   []string `json:"body_paragraphs"`
	ClosingParagraph string   `json:"closing_paragraph"`
	SignOff          string   `json:"sign_off"`
}

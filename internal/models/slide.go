package models

// Slide represents a single slide in a deck. The source locator is an opaque
// string supplied externally and is never interpreted by the server.
type Slide struct {
	Src   string `json:"src"`
	Label string `json:"label,omitempty"`
}

// Deck represents an ordered, immutable list of slides registered under a key
type Deck struct {
	Key    string  `json:"key"`
	Slides []Slide `json:"slides"`
}

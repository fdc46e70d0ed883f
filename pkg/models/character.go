package models

// Character is a single letter of the script that can be practised and traced
type Character struct {
	ID           string `json:"id"`
	Glyph        string `json:"glyph"`
	Romanization string `json:"romanization"`
	Audio        string `json:"audio,omitempty"`
	Example      string `json:"example,omitempty"` // Optional: example word starting with the letter
}

// CharacterSet groups characters shown together on the characters page
type CharacterSet struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Characters []Character `json:"characters"`
}

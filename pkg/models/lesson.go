package models

// VocabItem is a word from a lesson's vocabulary list
type VocabItem struct {
	Sinhala  string `json:"sinhala" yaml:"si"`
	English  string `json:"english" yaml:"en"`
	Translit string `json:"translit,omitempty" yaml:"translit,omitempty"`
	Audio    string `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// WordbankPrompt is a sentence the learner assembles from a bank of tokens
type WordbankPrompt struct {
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Answer      string   `json:"-" yaml:"answer"`
	Distractors []string `json:"distractors,omitempty" yaml:"distractors,omitempty"`
}

// Exercise is a single quiz widget configuration authored in a lesson
type Exercise struct {
	ID       string            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"`
	Prompt   string            `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Sentence string            `json:"sentence,omitempty" yaml:"sentence,omitempty"`
	Options  []string          `json:"options,omitempty" yaml:"options,omitempty"`
	Answers  []string          `json:"-" yaml:"answers,omitempty"`
	Pairs    map[string]string `json:"-" yaml:"pairs,omitempty"`
	Turns    []DialogueTurn    `json:"turns,omitempty" yaml:"turns,omitempty"`
	CharID   string            `json:"char_id,omitempty" yaml:"char,omitempty"` // Character whose progress the exercise feeds
	Image    string            `json:"image,omitempty" yaml:"image,omitempty"`
}

// DialogueTurn is one exchange of a dialogue exercise
type DialogueTurn struct {
	Speaker string   `json:"speaker" yaml:"speaker"`
	Line    string   `json:"line" yaml:"line"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	Answer  string   `json:"-" yaml:"answer,omitempty"`
}

// Section is a heading-delimited part of a lesson's markdown body
type Section struct {
	Title string `json:"title"`
	Level int    `json:"level"`
	Body  string `json:"body"`
}

// Lesson is the parsed form of a lesson content file
type Lesson struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Level           int              `json:"level,omitempty"`
	Characters      []string         `json:"characters,omitempty"`
	Vocab           []VocabItem      `json:"vocab"`
	WordbankPrompts []WordbankPrompt `json:"wordbank_prompts,omitempty"`
	Exercises       []Exercise       `json:"exercises,omitempty"`
	Sections        []Section        `json:"sections,omitempty"`
}

// FindExercise returns the exercise with the given id
func (l *Lesson) FindExercise(id string) (*Exercise, bool) {
	for i := range l.Exercises {
		if l.Exercises[i].ID == id {
			return &l.Exercises[i], true
		}
	}
	return nil, false
}

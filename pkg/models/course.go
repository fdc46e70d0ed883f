package models

// Course is the course index: units of lessons
type Course struct {
	Title string `json:"title"`
	Units []Unit `json:"units"`
}

// Unit groups lessons in the course index
type Unit struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Lessons []LessonRef `json:"lessons"`
}

// LessonRef points at a lesson file from the course index
type LessonRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path,omitempty"` // Optional: relative to the content directory
}

// LearnSection is an entry of the learn page
type LearnSection struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Characters  []string `json:"characters,omitempty"`
	Lessons     []string `json:"lessons,omitempty"`
}

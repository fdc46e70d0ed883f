// Package content loads the static course content: the course index, character sets,
// learn sections and the lesson files they point at.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/pkg/models"
)

const (
	CourseFile     = "course.json"
	CharactersFile = "characters.json"
	LearnFile      = "learn.json"
	LessonsDir     = "lessons"
)

var (
	// ErrNotFound is returned for unknown lessons, characters and sections
	ErrNotFound = errors.New("not found")
	// ErrInvalidLessonID is returned for ids that could escape the content directory
	ErrInvalidLessonID = errors.New("invalid lesson id")

	lessonIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Store serves content from a directory. Index files are loaded on Load;
// lesson files are read again on every request.
type Store struct {
	dir string

	mu         sync.RWMutex
	course     models.Course
	sets       []models.CharacterSet
	sections   []models.LearnSection
	characters map[string]models.Character
	lessonRefs map[string]models.LessonRef
}

// NewStore creates a store and loads the index files
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the content directory
func (s *Store) Dir() string {
	return s.dir
}

// Load (re)reads the index files. Missing files leave that part empty.
func (s *Store) Load() error {
	var course models.Course
	if err := readJSON(filepath.Join(s.dir, CourseFile), &course); err != nil {
		return err
	}

	var chars struct {
		Sets []models.CharacterSet `json:"sets"`
	}
	if err := readJSON(filepath.Join(s.dir, CharactersFile), &chars); err != nil {
		return err
	}

	var learn struct {
		Sections []models.LearnSection `json:"sections"`
	}
	if err := readJSON(filepath.Join(s.dir, LearnFile), &learn); err != nil {
		return err
	}

	characters := make(map[string]models.Character)
	sets := make([]models.CharacterSet, 0, len(chars.Sets))
	for _, set := range chars.Sets {
		kept := set.Characters[:0]
		for _, c := range set.Characters {
			if c.ID == "" || c.Glyph == "" {
				log.Printf("Warning: skipping character without id or glyph in set %q", set.ID)
				continue
			}
			characters[c.ID] = c
			kept = append(kept, c)
		}
		set.Characters = kept
		sets = append(sets, set)
	}

	refs := make(map[string]models.LessonRef)
	for ui, unit := range course.Units {
		kept := unit.Lessons[:0]
		for _, l := range unit.Lessons {
			if l.ID == "" {
				log.Printf("Warning: skipping lesson without id in unit %q", unit.ID)
				continue
			}
			refs[l.ID] = l
			kept = append(kept, l)
		}
		course.Units[ui].Lessons = kept
	}

	sections := make([]models.LearnSection, 0, len(learn.Sections))
	for _, sec := range learn.Sections {
		if sec.ID == "" {
			log.Printf("Warning: skipping learn section without id %q", sec.Title)
			continue
		}
		sections = append(sections, sec)
	}

	s.mu.Lock()
	s.course = course
	s.sets = sets
	s.sections = sections
	s.characters = characters
	s.lessonRefs = refs
	s.mu.Unlock()
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: content file %s not found", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Course returns the course index
func (s *Store) Course() models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.course
}

// CharacterSets returns all character sets in file order
func (s *Store) CharacterSets() []models.CharacterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets
}

// CharacterIDs returns every character id in set order
func (s *Store) CharacterIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, set := range s.sets {
		for _, c := range set.Characters {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Character returns a character by id
func (s *Store) Character(id string) (models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return models.Character{}, fmt.Errorf("character %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Sections returns the learn sections
func (s *Store) Sections() []models.LearnSection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sections
}

// Section returns a learn section by id
func (s *Store) Section(id string) (models.LearnSection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sec := range s.sections {
		if sec.ID == id {
			return sec, nil
		}
	}
	return models.LearnSection{}, fmt.Errorf("section %q: %w", id, ErrNotFound)
}

// ResolveLessonPath maps a lesson id to its file: the course index path when one is given,
// otherwise lessons/<id>.md
func (s *Store) ResolveLessonPath(id string) (string, error) {
	if !lessonIDRE.MatchString(id) {
		return "", fmt.Errorf("%q: %w", id, ErrInvalidLessonID)
	}

	s.mu.RLock()
	ref, ok := s.lessonRefs[id]
	s.mu.RUnlock()

	rel := filepath.Join(LessonsDir, id+".md")
	if ok && ref.Path != "" {
		rel = filepath.Clean(filepath.FromSlash(ref.Path))
		if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("lesson %q path %q: %w", id, ref.Path, ErrInvalidLessonID)
		}
	}
	return filepath.Join(s.dir, rel), nil
}

// Lesson reads and parses a lesson
func (s *Store) Lesson(id string) (*models.Lesson, error) {
	path, err := s.ResolveLessonPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson %q: %w", id, err)
	}

	lesson, err := lessonparse.Parse(id, data)
	if err != nil {
		return nil, err
	}
	if lesson.Title == "" {
		s.mu.RLock()
		lesson.Title = s.lessonRefs[id].Title
		s.mu.RUnlock()
	}
	return lesson, nil
}

// ValidationIssue is one lesson that failed to load
type ValidationIssue struct {
	LessonID string
	Err      error
}

// ValidateAll parses every lesson of the course index and every character a lesson
// or section refers to
func (s *Store) ValidateAll() []ValidationIssue {
	var issues []ValidationIssue
	course := s.Course()
	for _, unit := range course.Units {
		for _, ref := range unit.Lessons {
			lesson, err := s.Lesson(ref.ID)
			if err != nil {
				issues = append(issues, ValidationIssue{LessonID: ref.ID, Err: err})
				continue
			}
			for _, c := range lesson.Characters {
				if _, err := s.Character(c); err != nil {
					issues = append(issues, ValidationIssue{LessonID: ref.ID, Err: err})
				}
			}
		}
	}
	for _, sec := range s.Sections() {
		for _, c := range sec.Characters {
			if _, err := s.Character(c); err != nil {
				issues = append(issues, ValidationIssue{LessonID: "section:" + sec.ID, Err: err})
			}
		}
	}
	return issues
}

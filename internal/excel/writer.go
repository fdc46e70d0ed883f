package excel

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/pkg/models"
	"gopkg.in/yaml.v3"
)

// WriteLessonVocab replaces the vocab list in a lesson's front matter and keeps
// the other keys and the markdown body. A missing file is created.
func WriteLessonVocab(path string, vocab []models.VocabItem) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read lesson: %w", err)
	}

	front, body, err := lessonparse.Split(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	doc, err := frontMatterNode(front)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var list yaml.Node
	if err := list.Encode(vocab); err != nil {
		return fmt.Errorf("failed to encode vocab: %w", err)
	}
	for _, item := range list.Content {
		item.Style = yaml.FlowStyle
	}
	setKey(doc.Content[0], "vocab", &list)

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	buf.WriteString("---\n")
	buf.Write(body)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// frontMatterNode parses the front matter into a document whose root is a mapping
func frontMatterNode(front []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &doc); err != nil {
			return nil, fmt.Errorf("invalid front matter: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("front matter is not a mapping")
	}
	return &doc, nil
}

func setKey(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

package lessonparse

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/example/sinhala/pkg/models"
)

var (
	headingRE   = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	separatorRE = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
)

// parseSections splits the markdown body at headings, ignoring headings inside code fences
func parseSections(body []byte) []models.Section {
	var (
		sections []models.Section
		current  models.Section
		buf      strings.Builder
		inFence  bool
	)

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if current.Title != "" || text != "" {
			current.Body = text
			sections = append(sections, current)
		}
		buf.Reset()
	}

	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRE.FindStringSubmatch(line); m != nil {
				flush()
				current = models.Section{Title: m[2], Level: len(m[1])}
				continue
			}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()
	return sections
}

// vocabFromSections reads a pipe table under a "Vocabulary" heading
func vocabFromSections(sections []models.Section) []models.VocabItem {
	items := make([]models.VocabItem, 0)
	for _, s := range sections {
		title := strings.ToLower(s.Title)
		if title != "vocabulary" && title != "vocab" {
			continue
		}
		items = append(items, parseVocabTable(s.Body)...)
	}
	return items
}

func parseVocabTable(text string) []models.VocabItem {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		if separatorRE.MatchString(line) {
			continue
		}
		rows = append(rows, splitRow(line))
	}
	if len(rows) == 0 {
		return nil
	}

	siCol, enCol, trCol := 0, 1, 2
	header := rows[0]
	if cols, ok := headerColumns(header); ok {
		siCol, enCol, trCol = cols[0], cols[1], cols[2]
		rows = rows[1:]
	}

	var items []models.VocabItem
	for _, r := range rows {
		item := models.VocabItem{Sinhala: cell(r, siCol), English: cell(r, enCol), Translit: cell(r, trCol)}
		if item.Sinhala == "" || item.English == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func headerColumns(header []string) ([3]int, bool) {
	cols := [3]int{-1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(h) {
		case "sinhala", "si", "word":
			cols[0] = i
		case "english", "en", "meaning":
			cols[1] = i
		case "translit", "transliteration", "roman", "pronunciation":
			cols[2] = i
		}
	}
	return cols, cols[0] >= 0 && cols[1] >= 0
}

func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

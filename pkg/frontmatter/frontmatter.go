package frontmatter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\r?\n(.*?)\r?\n---\r?\n?(.*)`)
	headingPattern     = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)
)

// Frontmatter is the optional YAML header of a note. Only the fields the tree
// displays are decoded; anything else is ignored.
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags,flow"`
}

// Parse extracts frontmatter from content and returns it with the body.
// Content without a header returns a nil Frontmatter and the content unchanged.
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	return &fm, matches[2], nil
}

// Title picks a display title for a note: the frontmatter title, then the
// first level-one heading, then the file name without its extension.
func Title(content, path string) string {
	fm, body, err := Parse(content)
	if err == nil && fm != nil && strings.TrimSpace(fm.Title) != "" {
		return strings.TrimSpace(fm.Title)
	}
	if m := headingPattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Body strips a frontmatter header if present. A malformed header is kept.
func Body(content string) string {
	_, body, err := Parse(content)
	if err != nil {
		return content
	}
	return body
}

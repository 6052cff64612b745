package frontmatter

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			content: `---
title: Test Note
tags: [test, example]
created: 2023-01-01 10:00:00
---

# Test Content

This is the body.`,
			wantFM: &Frontmatter{
				Title: "Test Note",
				Tags:  []string{"test", "example"},
			},
			wantBody: "\n# Test Content\n\nThis is the body.",
		},
		{
			name:     "no frontmatter",
			content:  "# Just a title\n\nSome content.",
			wantFM:   nil,
			wantBody: "# Just a title\n\nSome content.",
		},
		{
			name: "invalid yaml",
			content: `---
title: [invalid
---

Body`,
			wantFM: nil,
			wantBody: `---
title: [invalid
---

Body`,
			wantErr: true,
		},
		{
			name:     "no tags",
			content:  "---\ntitle: Bare\n---\nbody",
			wantFM:   &Frontmatter{Title: "Bare", Tags: []string{}},
			wantBody: "body",
		},
		{
			name:     "crlf line endings",
			content:  "---\r\ntitle: Windows\r\n---\r\nbody",
			wantFM:   &Frontmatter{Title: "Windows", Tags: []string{}},
			wantBody: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := Parse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(fm, tt.wantFM) {
				t.Errorf("Parse() fm = %+v, want %+v", fm, tt.wantFM)
			}
			if body != tt.wantBody {
				t.Errorf("Parse() body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		path    string
		want    string
	}{
		{"frontmatter wins", "---\ntitle: From Header\n---\n# Heading\n", "/n/a.md", "From Header"},
		{"blank frontmatter title falls through", "---\ntitle: \"  \"\n---\n# Heading\n", "/n/a.md", "Heading"},
		{"first heading", "intro\n\n# Weekly Plan ##\n\n# Second\n", "/n/a.md", "Weekly Plan"},
		{"subheadings ignored", "## Not a title\n", "/n/meeting.md", "meeting"},
		{"empty note", "", "/n/todo.txt", "todo"},
		{"dotted name", "", "/n/v1.2.md", "v1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.content, tt.path); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBody(t *testing.T) {
	if got := Body("---\ntitle: x\n---\nhello"); got != "hello" {
		t.Errorf("Body() = %q, want %q", got, "hello")
	}
	broken := "---\ntitle: [x\n---\nhello"
	if got := Body(broken); got != broken {
		t.Errorf("Body() should keep malformed content, got %q", got)
	}
}

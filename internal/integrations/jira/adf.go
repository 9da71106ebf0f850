package jira

import (
	"encoding/json"
	"strings"
)

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

var adfBlockTypes = map[string]bool{
	"paragraph":   true,
	"heading":     true,
	"listItem":    true,
	"codeBlock":   true,
	"blockquote":  true,
	"tableRow":    true,
	"rule":        true,
	"mediaSingle": true,
}

// descriptionText turns a v3 description (ADF document, plain string from
// older instances, or null) into text. nil means the issue has no
// description.
func descriptionText(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return &plain
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		text := string(raw)
		return &text
	}
	var b strings.Builder
	writeADF(&b, doc)
	text := strings.TrimSpace(b.String())
	return &text
}

func writeADF(b *strings.Builder, n adfNode) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
		return
	case "hardBreak":
		b.WriteString("\n")
		return
	}
	for _, child := range n.Content {
		writeADF(b, child)
	}
	if adfBlockTypes[n.Type] {
		b.WriteString("\n")
	}
}

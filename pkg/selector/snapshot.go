package selector

import "strings"

// Snapshot is a serializable copy of the element state a browser shim
// reports with each interaction.
type Snapshot struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Index      int               `json:"position"`
	Text       string            `json:"text,omitempty"`
}

func (s Snapshot) TagName() string {
	return s.Tag
}

func (s Snapshot) Attribute(name string) (string, bool) {
	if v, ok := s.Attributes[name]; ok {
		return v, true
	}
	for k, v := range s.Attributes {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

func (s Snapshot) Position() int {
	return s.Index
}

func (s Snapshot) TextContent() string {
	return s.Text
}

package application

import (
	"fmt"
	"strings"
	"text/template"
)

// ReleaseMessageData holds the values available to release-close message
// templates, mirroring the release_tag and release_link variables derived
// from the release event.
type ReleaseMessageData struct {
	ReleaseTag  string
	ReleaseLink string
}

// RenderReleaseMessage expands a release-close message template.
// Unknown template fields are a configuration error surfaced at render time.
func RenderReleaseMessage(tmpl string, data ReleaseMessageData) (string, error) {
	t, err := template.New("release-message").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse release message template: %w", err)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render release message: %w", err)
	}

	return buf.String(), nil
}

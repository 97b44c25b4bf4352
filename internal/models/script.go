package models

// VisualKind tags the visual source of a script section.
type VisualKind string

const (
	VisualGenerated VisualKind = "generated"
	VisualSourced   VisualKind = "sourced"
	VisualNone      VisualKind = "none"
)

// Visual is a tagged variant: either a prompt for the slide generator, an
// image URL lifted from the source article, or nothing. Exactly one case is
// meaningful; Kind decides which.
type Visual struct {
	Kind     VisualKind `json:"kind"`
	Prompt   string     `json:"prompt,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
}

func GeneratedSlide(prompt string) Visual {
	return Visual{Kind: VisualGenerated, Prompt: prompt}
}

func SourcedImage(url string) Visual {
	return Visual{Kind: VisualSourced, ImageURL: url}
}

func NoVisual() Visual {
	return Visual{Kind: VisualNone}
}

// ScriptSection is one narrative unit produced by the script stage.
type ScriptSection struct {
	Title     string `json:"title"`
	Narration string `json:"narration"`
	Visual    Visual `json:"visual"`
}

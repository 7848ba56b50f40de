package domain

// Button is an inline keyboard button; exactly one of CallbackData or URL is set.
type Button struct {
	Text         string
	CallbackData string
	URL          string
}

// Keyboard is a grid of inline buttons.
type Keyboard [][]Button

// Prompt is the content of an outbound message. A non-empty PhotoURL makes it a photo with caption.
type Prompt struct {
	Text     string
	PhotoURL string
	Keyboard Keyboard
}

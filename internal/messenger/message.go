// Package messenger describes outbound bot messages independently of the
// chat platform that renders them.
package messenger

// Message is a reply or notification addressed to one chat. When Photo is
// set the message is sent as a photo and Text becomes its caption.
type Message struct {
	ChatID   int64
	Text     string
	Photo    string
	Keyboard Keyboard
}

// IsPhoto reports whether the message carries an image
func (m Message) IsPhoto() bool {
	return m.Photo != ""
}

// Keyboard is attached to a message; nil leaves the client keyboard as is
type Keyboard interface {
	isKeyboard()
}

// ReplyKeyboard replaces the client keyboard with text buttons
type ReplyKeyboard struct {
	Rows    [][]ReplyButton
	OneTime bool
	Resize  bool
}

// ReplyButton sends its text when pressed. RequestContact makes the client
// share the user's phone number instead.
type ReplyButton struct {
	Text           string
	RequestContact bool
}

// InlineKeyboard is shown under a message and emits action payloads
type InlineKeyboard struct {
	Rows [][]InlineButton
}

// InlineButton emits Data as a callback when pressed
type InlineButton struct {
	Text string
	Data string
}

// RemoveKeyboard hides a previously sent reply keyboard
type RemoveKeyboard struct{}

func (ReplyKeyboard) isKeyboard()  {}
func (InlineKeyboard) isKeyboard() {}
func (RemoveKeyboard) isKeyboard() {}

// Text builds a plain text message
func Text(chatID int64, text string) Message {
	return Message{ChatID: chatID, Text: text}
}

// Photo builds a photo message with a caption
func Photo(chatID int64, photo, caption string) Message {
	return Message{ChatID: chatID, Photo: photo, Text: caption}
}

package bot

// EventKind tells which part of Event is populated
type EventKind int

const (
	EventText EventKind = iota
	EventStart
	EventContact
	EventPhoto
	EventAction
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventStart:
		return "start"
	case EventContact:
		return "contact"
	case EventPhoto:
		return "photo"
	case EventAction:
		return "action"
	}
	return "unknown"
}

// Event is an inbound update reduced to what the bots act on
type Event struct {
	Kind   EventKind
	ChatID int64

	// Text is the message text or the photo caption
	Text string
	// Phone is set for EventContact
	Phone string
	// Photo is the file reference of the largest photo size
	Photo string
	// Action and CallbackID are set for EventAction
	Action     Action
	CallbackID string
}

// TextEvent builds a plain text event
func TextEvent(chatID int64, text string) Event {
	return Event{Kind: EventText, ChatID: chatID, Text: text}
}

// StartEvent builds a /start command event
func StartEvent(chatID int64) Event {
	return Event{Kind: EventStart, ChatID: chatID, Text: "/start"}
}

// ContactEvent builds a shared contact event
func ContactEvent(chatID int64, phone string) Event {
	return Event{Kind: EventContact, ChatID: chatID, Phone: phone}
}

// PhotoEvent builds a photo event
func PhotoEvent(chatID int64, photo string) Event {
	return Event{Kind: EventPhoto, ChatID: chatID, Photo: photo}
}

// ActionEvent builds an inline button event
func ActionEvent(chatID int64, callbackID string, action Action) Event {
	return Event{Kind: EventAction, ChatID: chatID, Action: action, CallbackID: callbackID}
}

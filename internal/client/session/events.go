package session

// Event is a one-shot notification. Events are delivered once and never
// replayed to later readers.
type Event interface {
	isEvent()
}

// EventAskSyncBarcodeID asks whether the barcode id should follow the
// edited card id. Answer with Session.ResolveBarcodeSync.
type EventAskSyncBarcodeID struct {
	// BarcodeID is the barcode id from before the card id was edited.
	BarcodeID string
	CardID    string
}

type EventSaved struct {
	ID int64
}

// EventToast is a short message for the user.
type EventToast struct {
	Message string
}

// EventConfirmDiscard asks the user to confirm leaving with unsaved changes.
type EventConfirmDiscard struct{}

// EventExit tells the caller the session may be closed.
type EventExit struct{}

func (EventAskSyncBarcodeID) isEvent() {}
func (EventSaved) isEvent()            {}
func (EventToast) isEvent()            {}
func (EventConfirmDiscard) isEvent()   {}
func (EventExit) isEvent()             {}

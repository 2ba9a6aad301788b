// Package session implements the card edit session: it loads a card through
// a Gateway, holds it as editable state, regenerates its barcode in the
// background and coordinates saving.
//
// State leaves the session as immutable snapshots on three streams (card,
// barcode, save) plus a queue of one-shot events. All mutation goes through
// Session methods, which serialize on a single mutex and publish while
// holding it, so observers see transitions in the order they were made.
//
// Asynchronous work follows "last request wins": a newer load or barcode
// generation supersedes an older one, whose result is dropped on arrival.
// Cancelled work never produces a state change or an error.
package session

// Package cli provides the cardkeeper command-line client.
//
// It wires configuration, local storage, the image store and the card
// gateway, and exposes them as cobra commands. The edit command drives an
// edit session from an interactive prompt: every line is a field change or
// an action, and session events (save results, the barcode id question)
// are printed as they arrive.
package cli

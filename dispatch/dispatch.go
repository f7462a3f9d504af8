// Package dispatch makes the editor's interactive thread explicit. Everything
// that touches a document, the overlay or the status line is posted to one
// Dispatcher, and runs there in order.
package dispatch

// Dispatcher runs functions on the interactive thread, in the order posted.
type Dispatcher interface {
	Post(fn func())
}

// Inline is a Dispatcher that runs fn immediately on the calling goroutine.
// It suits single-threaded callers and tests.
type Inline struct{}

// Post implements Dispatcher.
func (Inline) Post(fn func()) {
	fn()
}

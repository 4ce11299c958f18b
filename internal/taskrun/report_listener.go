package taskrun

import "io"

// discardListener is a fire-and-forget request.Listener for requests
// whose outcome the caller does not need to wait on, such as the
// optional start-of-run TaskReport advertisement.
type discardListener struct{}

func (discardListener) ServerReplied(io.Reader) error { return nil }
func (discardListener) ServerFailed(error)            {}

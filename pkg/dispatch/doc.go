// Package dispatch decodes frame slices concurrently and yields the records
// in input order.
//
// A [Dispatcher] is sized once and shared by every [Stream] it creates; the
// worker bound applies across all of them. Each task borrows a zero-copy
// view of its frame, decodes and assembles it via [csi.Extract], and releases
// the decoded frame before the result is handed on. Per-frame failures are
// reported on the result and do not stop the stream.
//
// Tasks are not cancelled once started. Closing a stream or the dispatcher
// stops submission and waits for running tasks, so views into the capture
// are never used after the caller tears it down.
package dispatch

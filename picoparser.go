// Package picoparser reads CSI capture files: it indexes length-prefixed
// frames in a memory-mapped file and decodes them on a bounded worker pool
// without losing file order.
//
// Example usage:
//
//	s, err := picoparser.Open("capture.csi", session.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	res, err := s.Aggregate(picoparser.AggregateConfig{
//	    Fields: picoparser.Fields{Magnitude: true},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Magnitude.Shape, len(res.Report.Failed))
package picoparser

import (
	"github.com/bft-labs/picoparser/pkg/csi"
	"github.com/bft-labs/picoparser/pkg/dispatch"
	"github.com/bft-labs/picoparser/pkg/frame"
	"github.com/bft-labs/picoparser/pkg/session"
)

// Session is an open capture file. See session.Session.
type Session = session.Session

// AggregateConfig selects the fields Session.Aggregate stacks.
type AggregateConfig = session.AggregateConfig

// Fields selects record fields.
type Fields = csi.Fields

// FrameRecord is one decoded frame.
type FrameRecord = csi.FrameRecord

// Slice is the byte range of one frame in the capture.
type Slice = frame.Slice

// Report lists the frames that failed during a decode.
type Report = dispatch.Report

// AllFields selects every record field.
var AllFields = csi.AllFields

// Open maps the capture at path. The default decoder reads the flat format.
func Open(path string, opts ...session.Option) (*Session, error) {
	return session.Open(path, opts...)
}

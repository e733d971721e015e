// Package session ties a mapped capture file to a decode dispatcher.
//
// A Session is the unit of resource ownership: it holds the file handle, the
// copy-on-write mapping, and the worker bound. Close joins every outstanding
// decode before the mapping is released.
//
// # Usage
//
//	s, err := session.Open("capture.csi", session.WithWorkers(8))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	res, err := s.Aggregate(session.AggregateConfig{
//	    Fields: csi.Fields{Timestamp: true, Magnitude: true},
//	})
//
// Records can also be consumed lazily:
//
//	st, err := s.Records(false)
//	defer st.Close()
//	for {
//	    rec, err := st.NextRecord()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//	report := st.Report() // failed and leaked frames
package session

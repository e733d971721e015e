// Package frame locates length-prefixed frames in a capture buffer.
//
// A capture file is a flat sequence of frames. Each frame is a 4-byte
// little-endian payload length followed by that many payload bytes; there is
// no file-level header or footer. The [Indexer] only ever reads the length
// prefixes, so a corrupt payload cannot disturb the boundaries of the frames
// after it as long as its own prefix is intact.
//
// # Usage
//
//	idx := frame.NewIndexer(buf, size)
//	for {
//	    s, err := idx.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    payload := buf[s.Offset+frame.HeaderSize : s.End()]
//	    ...
//	}
//	tail := idx.Tail() // why scanning stopped
//
// [NewReaderIndexer] scans any io.ReaderAt instead, copying only the
// prefixes. Callers whose backing memory can go away use it so that a
// closed source surfaces as an error from Next.
package frame

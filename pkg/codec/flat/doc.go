// Package flat implements csi.Decoder for an uncompressed CSI payload.
//
// The flat format stores one CSI snapshot per frame with no compression or
// bit packing, which makes it convenient for fixtures and for tools that
// re-export data from other sources. Layout of a frame (little-endian):
//
//	off  size  field
//	0    4     payload length (frame prefix)
//	4    4     magic "PCSI"
//	8    1     version (1)
//	9    1     reserved
//	10   1     tx antennas
//	11   1     rx antennas
//	12   1     spatial streams
//	13   1     reserved
//	14   2     tones
//	16   8     timestamp, ns since Unix epoch
//	24   2*T   subcarrier labels (int16)
//	..   4*N   real parts (float32), N = tones*tx*rx*streams
//	..   4*N   imaginary parts (float32)
//
// With interpolation enabled the decoder fills the -1, 0 and +1 slots between
// adjacent -2 and +2 tones by linear interpolation, the way vendor decoders
// fill the DC gap.
package flat

package codec

import "encoding/binary"

// putUint16 and putUint32 write big-endian integers into buf, matching the
// wire format mandated for every multi-byte field on disk.
func putUint16(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }
func putUint32(buf []byte, v uint32) { binary.BigEndian.PutUint32(buf, v) }

func getUint16(buf []byte) uint16 { return binary.BigEndian.Uint16(buf) }
func getUint32(buf []byte) uint32 { return binary.BigEndian.Uint32(buf) }

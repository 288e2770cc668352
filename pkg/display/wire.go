package display

import "encoding/binary"

// Wayland wire format: a message is a 32-bit object id, a 32-bit word
// packing the total size (high 16 bits, header included) and the opcode
// (low 16 bits), then the arguments. Words use the host byte order, which
// is little-endian on every platform this daemon runs on. Strings carry a
// 32-bit length (terminating NUL included) and are padded to a word
// boundary. File descriptors travel out of band via SCM_RIGHTS.
const headerSize = 8

var wireOrder = binary.LittleEndian

// message is one decoded inbound message; data holds the argument bytes
type message struct {
	object uint32
	opcode uint16
	data   []byte
}

// parseMessage decodes the first complete message in buf. It returns the
// number of bytes consumed, or 0 when buf does not yet hold a full message.
func parseMessage(buf []byte) (message, int) {
	if len(buf) < headerSize {
		return message{}, 0
	}
	object := wireOrder.Uint32(buf[0:4])
	word := wireOrder.Uint32(buf[4:8])
	size := int(word >> 16)
	opcode := uint16(word & 0xffff)
	if size < headerSize || len(buf) < size {
		return message{}, 0
	}
	return message{object: object, opcode: opcode, data: buf[headerSize:size]}, size
}

// args reads argument values out of a decoded message
type args struct {
	data []byte
	bad  bool
}

func (a *args) uint() uint32 {
	if len(a.data) < 4 {
		a.bad = true
		return 0
	}
	v := wireOrder.Uint32(a.data[:4])
	a.data = a.data[4:]
	return v
}

func (a *args) string() string {
	n := int(a.uint())
	padded := pad(n)
	if a.bad || n == 0 || len(a.data) < padded {
		a.bad = true
		return ""
	}
	s := string(a.data[:n-1]) // strip the NUL
	a.data = a.data[padded:]
	return s
}

// encodeMessage builds an outbound message. Arguments may be uint32 or
// string; fds are attached separately at send time.
func encodeMessage(object uint32, opcode uint16, msgArgs ...any) []byte {
	buf := make([]byte, headerSize, headerSize+8*len(msgArgs))
	wireOrder.PutUint32(buf[0:4], object)
	for _, arg := range msgArgs {
		switch v := arg.(type) {
		case uint32:
			buf = wireOrder.AppendUint32(buf, v)
		case string:
			buf = wireOrder.AppendUint32(buf, uint32(len(v)+1))
			buf = append(buf, v...)
			buf = append(buf, 0)
			for len(buf)%4 != 0 {
				buf = append(buf, 0)
			}
		default:
			panic("unsupported wire argument type")
		}
	}
	wireOrder.PutUint32(buf[4:8], uint32(len(buf))<<16|uint32(opcode))
	return buf
}

func pad(n int) int {
	return (n + 3) &^ 3
}

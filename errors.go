package vsensor

// Error is a string based error type that allows errors to be declared as
// constants.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}

const (
	// ErrUnknownRegister is returned when a register name or address is not
	// part of the V-Sensor register map.
	ErrUnknownRegister Error = "unknown register"
	// ErrNotWritable is returned when a write targets a read-only register.
	ErrNotWritable Error = "register is not writable"

	ErrProtocolError     Error = "protocol error"
	ErrUnknownProtocolId Error = "unknown protocol identifier"
)

package vsensor

import (
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"strings"
)

type endianness uint

const (
	fcReadHoldingRegisters   uint8 = 0x03
	fcReadInputRegisters     uint8 = 0x04
	fcWriteSingleRegister    uint8 = 0x06
	fcWriteMultipleRegisters uint8 = 0x10

	excIllegalFunction    uint8 = 0x01
	excIllegalDataAddress uint8 = 0x02
	excIllegalDataValue   uint8 = 0x03

	mbapHeaderLength int = 7

	// endianness of 16-bit registers
	bigEndian         endianness = 1
	littleEndian      endianness = 2
	maxTCPFrameLength int        = 260

	maxRegisterQuantity uint16 = 125
)

type pdu struct {
	unitId       uint8
	functionCode uint8
	payload      []byte
}

// Sim is a TCP based Modbus server backed by a MemoryMap. It stands in for a
// real V-Sensor during development and in tests and answers the register
// read/write function codes the sensor supports.
type Sim struct {
	url         string
	unitId      uint8
	mem         *MemoryMap
	tcpListener net.Listener
}

// NewSim creates a simulator listening on url (e.g. "tcp://localhost:5020")
// answering for the given unit id.
func NewSim(url string, unitId uint8, mem *MemoryMap) *Sim {
	splitURL := strings.SplitN(url, "://", 2)
	if len(splitURL) == 2 {
		return &Sim{url: splitURL[1], unitId: unitId, mem: mem}
	}
	return nil
}

func (s *Sim) Start() (err error) {
	s.tcpListener, err = net.Listen("tcp", s.url)
	if err == nil {
		go s.acceptTCPClients()
	}
	return
}

// Addr returns the address the simulator listens on, or the empty string
// before Start succeeded. Useful when the configured port was 0.
func (s *Sim) Addr() string {
	if s.tcpListener == nil {
		return ""
	}
	return s.tcpListener.Addr().String()
}

func (s *Sim) Close() error {
	return s.tcpListener.Close()
}

func (s *Sim) acceptTCPClients() {
	for {
		sock, err := s.tcpListener.Accept()
		if err != nil {
			return
		}
		slog.Info("client connected", "remote", sock.RemoteAddr())
		go s.handleClient(sock)
	}
}

func (s *Sim) handleClient(sock net.Conn) {
	defer func() { _ = sock.Close() }()
	for {
		req, txnId, err := readMBAPFrame(sock)
		if err != nil {
			if err != io.EOF {
				slog.Warn("failed to read frame", "err", err)
			}
			return
		}
		if req.unitId != s.unitId {
			slog.Info("ignoring request for foreign unit id", "unit", req.unitId)
			continue
		}

		res := s.handlePDU(req)
		if _, err := sock.Write(assembleMBAPFrame(txnId, res)); err != nil {
			return
		}
	}
}

// handlePDU answers a single request out of the memory map. It performs no IO
// and is the unit under test for the protocol logic.
func (s *Sim) handlePDU(req *pdu) *pdu {
	switch req.functionCode {
	case fcReadHoldingRegisters, fcReadInputRegisters:
		if len(req.payload) != 4 {
			return exception(req, excIllegalDataValue)
		}
		addr := bytesToUint16(bigEndian, req.payload[0:2])
		quantity := bytesToUint16(bigEndian, req.payload[2:4])
		if quantity == 0 || quantity > maxRegisterQuantity {
			return exception(req, excIllegalDataValue)
		}
		payload := []byte{uint8(quantity * 2)}
		for i := uint16(0); i < quantity; i++ {
			var value uint16
			if req.functionCode == fcReadInputRegisters {
				value, _ = s.mem.InputReg(addr + i)
			} else {
				value, _ = s.mem.HoldingReg(addr + i)
			}
			payload = append(payload, uint16ToBytes(bigEndian, value)...)
		}
		return &pdu{unitId: req.unitId, functionCode: req.functionCode, payload: payload}

	case fcWriteSingleRegister:
		if len(req.payload) != 4 {
			return exception(req, excIllegalDataValue)
		}
		addr := bytesToUint16(bigEndian, req.payload[0:2])
		value := bytesToUint16(bigEndian, req.payload[2:4])
		s.mem.PutHoldingReg(addr, value)
		// the response echoes the request
		return &pdu{unitId: req.unitId, functionCode: req.functionCode, payload: req.payload}

	case fcWriteMultipleRegisters:
		if len(req.payload) < 5 {
			return exception(req, excIllegalDataValue)
		}
		addr := bytesToUint16(bigEndian, req.payload[0:2])
		quantity := bytesToUint16(bigEndian, req.payload[2:4])
		byteCount := uint16(req.payload[4])
		if quantity == 0 || quantity > maxRegisterQuantity || byteCount != quantity*2 || len(req.payload) != int(5+byteCount) {
			return exception(req, excIllegalDataValue)
		}
		for i := uint16(0); i < quantity; i++ {
			value := bytesToUint16(bigEndian, req.payload[5+i*2:7+i*2])
			s.mem.PutHoldingReg(addr+i, value)
		}
		payload := append(uint16ToBytes(bigEndian, addr), uint16ToBytes(bigEndian, quantity)...)
		return &pdu{unitId: req.unitId, functionCode: req.functionCode, payload: payload}

	default:
		return exception(req, excIllegalFunction)
	}
}

func exception(req *pdu, code uint8) *pdu {
	return &pdu{unitId: req.unitId, functionCode: req.functionCode | 0x80, payload: []byte{code}}
}

// Reads an entire frame (MBAP header + modbus PDU) from the socket.
func readMBAPFrame(sock net.Conn) (p *pdu, txnId uint16, err error) {
	var rxbuf []byte
	var bytesNeeded int
	var protocolId uint16
	var unitId uint8

	// read the MBAP header
	rxbuf = make([]byte, mbapHeaderLength)
	_, err = io.ReadFull(sock, rxbuf)
	if err != nil {
		return
	}

	// decode the transaction identifier
	txnId = bytesToUint16(bigEndian, rxbuf[0:2])
	// decode the protocol identifier
	protocolId = bytesToUint16(bigEndian, rxbuf[2:4])
	// store the source unit id
	unitId = rxbuf[6]

	// determine how many more bytes we need to read
	bytesNeeded = int(bytesToUint16(bigEndian, rxbuf[4:6]))

	// the byte count includes the unit ID field, which we already have
	bytesNeeded--

	// never read more than the max allowed frame length
	if bytesNeeded+mbapHeaderLength > maxTCPFrameLength {
		err = ErrProtocolError
		return
	}

	// an MBAP length of 0 is illegal
	if bytesNeeded <= 0 {
		err = ErrProtocolError
		return
	}

	// read the PDU
	rxbuf = make([]byte, bytesNeeded)
	_, err = io.ReadFull(sock, rxbuf)
	if err != nil {
		return
	}

	// validate the protocol identifier
	if protocolId != 0x0000 {
		err = ErrUnknownProtocolId
		slog.Warn("received unexpected protocol id", "protocolId", protocolId)
		return
	}

	// store unit id, function code and payload in the PDU object
	p = &pdu{
		unitId:       unitId,
		functionCode: rxbuf[0],
		payload:      rxbuf[1:],
	}

	return
}

// Turns a PDU into an MBAP frame (MBAP header + PDU) and returns it as bytes.
func assembleMBAPFrame(txnId uint16, p *pdu) (payload []byte) {
	// transaction identifier
	payload = uint16ToBytes(bigEndian, txnId)
	// protocol identifier (always 0x0000)
	payload = append(payload, 0x00, 0x00)
	// length (covers unit identifier + function code + payload fields)
	payload = append(payload, uint16ToBytes(bigEndian, uint16(2+len(p.payload)))...)
	// unit identifier
	payload = append(payload, p.unitId)
	// function code
	payload = append(payload, p.functionCode)
	// payload
	payload = append(payload, p.payload...)

	return
}

func bytesToUint16(e endianness, in []byte) (out uint16) {
	switch e {
	case bigEndian:
		out = binary.BigEndian.Uint16(in)
	case littleEndian:
		out = binary.LittleEndian.Uint16(in)
	}

	return
}

func uint16ToBytes(e endianness, in uint16) (out []byte) {
	out = make([]byte, 2)
	switch e {
	case bigEndian:
		binary.BigEndian.PutUint16(out, in)
	case littleEndian:
		binary.LittleEndian.PutUint16(out, in)
	}

	return
}

// Package pvnet define o protocolo cliente↔servidor do PlanetVision:
// mensagens pequenas codificadas no wire format do protobuf via
// google.golang.org/protobuf/encoding/protowire, sem código gerado.
// Campos desconhecidos são pulados, então versões diferentes conseguem
// conversar.
package pvnet

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// MessageType identifica o conteúdo do payload de um Envelope.
type MessageType int32

const (
	MsgPing           MessageType = 1
	MsgPong           MessageType = 2
	MsgServerStatus   MessageType = 3
	MsgRequestPatch   MessageType = 4
	MsgElevationPatch MessageType = 5
)

// Envelope embrulha toda mensagem trafegada no websocket:
// campo 1 = tipo (varint), campo 2 = payload (bytes).
type Envelope struct {
	Type    MessageType
	Payload []byte
}

// Marshal serializa o envelope.
func (m *Envelope) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Type))
	if len(m.Payload) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Payload)
	}
	return b
}

// Unmarshal decodifica o envelope.
func (m *Envelope) Unmarshal(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("envelope: tag inválida: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Type = MessageType(v)
			data = data[n:]
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Payload = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

// NewEnvelope monta um envelope já serializado para envio.
func NewEnvelope(t MessageType, payload []byte) []byte {
	e := Envelope{Type: t, Payload: payload}
	return e.Marshal()
}

// RequestPatch pede ao servidor a grade de elevação de um tile.
type RequestPatch struct {
	Face       int32
	X          int32
	Y          int32
	Depth      int32
	Resolution int32
}

// Marshal serializa o pedido.
func (m *RequestPatch) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, int64(m.Face))
	b = appendVarintField(b, 2, int64(m.X))
	b = appendVarintField(b, 3, int64(m.Y))
	b = appendVarintField(b, 4, int64(m.Depth))
	b = appendVarintField(b, 5, int64(m.Resolution))
	return b
}

// Unmarshal decodifica o pedido.
func (m *RequestPatch) Unmarshal(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		v, n := protowire.ConsumeVarint(field)
		if n < 0 {
			return n, protowire.ParseError(n)
		}
		switch num {
		case 1:
			m.Face = int32(v)
		case 2:
			m.X = int32(v)
		case 3:
			m.Y = int32(v)
		case 4:
			m.Depth = int32(v)
		case 5:
			m.Resolution = int32(v)
		default:
			return protowire.ConsumeFieldValue(num, typ, field), nil
		}
		return n, nil
	})
}

// ElevationPatch é a resposta do servidor: a grade de amostras do tile na
// ordem de LatticeIndex, empacotada como fixed32 (campo 6, packed).
type ElevationPatch struct {
	Face       int32
	X          int32
	Y          int32
	Depth      int32
	Resolution int32
	Samples    []float32
}

// Marshal serializa o patch.
func (m *ElevationPatch) Marshal() []byte {
	var b []byte
	b = appendVarintField(b, 1, int64(m.Face))
	b = appendVarintField(b, 2, int64(m.X))
	b = appendVarintField(b, 3, int64(m.Y))
	b = appendVarintField(b, 4, int64(m.Depth))
	b = appendVarintField(b, 5, int64(m.Resolution))
	if len(m.Samples) > 0 {
		packed := make([]byte, 0, len(m.Samples)*4)
		for _, s := range m.Samples {
			packed = protowire.AppendFixed32(packed, math.Float32bits(s))
		}
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	return b
}

// Unmarshal decodifica o patch.
func (m *ElevationPatch) Unmarshal(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 6 {
			packed, n := protowire.ConsumeBytes(field)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			if len(packed)%4 != 0 {
				return n, fmt.Errorf("patch: bloco de amostras com %d bytes (não múltiplo de 4)", len(packed))
			}
			m.Samples = make([]float32, 0, len(packed)/4)
			for len(packed) > 0 {
				v, k := protowire.ConsumeFixed32(packed)
				if k < 0 {
					return n, protowire.ParseError(k)
				}
				m.Samples = append(m.Samples, math.Float32frombits(v))
				packed = packed[k:]
			}
			return n, nil
		}
		v, n := protowire.ConsumeVarint(field)
		if n < 0 {
			return n, protowire.ParseError(n)
		}
		switch num {
		case 1:
			m.Face = int32(v)
		case 2:
			m.X = int32(v)
		case 3:
			m.Y = int32(v)
		case 4:
			m.Depth = int32(v)
		case 5:
			m.Resolution = int32(v)
		default:
			return protowire.ConsumeFieldValue(num, typ, field), nil
		}
		return n, nil
	})
}

// ServerStatus é o aperto de mão inicial do servidor.
type ServerStatus struct {
	Message string
	DBReady bool
}

// Marshal serializa o status.
func (m *ServerStatus) Marshal() []byte {
	var b []byte
	if m.Message != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Message)
	}
	if m.DBReady {
		b = appendVarintField(b, 2, 1)
	}
	return b
}

// Unmarshal decodifica o status.
func (m *ServerStatus) Unmarshal(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch num {
		case 1:
			v, n := protowire.ConsumeString(field)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.Message = v
			return n, nil
		case 2:
			v, n := protowire.ConsumeVarint(field)
			if n < 0 {
				return n, protowire.ParseError(n)
			}
			m.DBReady = v != 0
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, field), nil
		}
	})
}

func appendVarintField(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// consumeFields percorre os campos de uma mensagem chamando fn para cada
// um; fn devolve quantos bytes do campo consumiu.
func consumeFields(data []byte, fn func(num protowire.Number, typ protowire.Type, field []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		k, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if k < 0 {
			return protowire.ParseError(k)
		}
		data = data[k:]
	}
	return nil
}

package entry

import "time"

// RecordType identifies the journaled command.
type RecordType uint8

const (
	RecordCreate RecordType = iota + 1
	RecordCancel
	RecordUpdate
	RecordQuit
)

func (t RecordType) String() string {
	switch t {
	case RecordCreate:
		return "create"
	case RecordCancel:
		return "cancel"
	case RecordUpdate:
		return "update"
	case RecordQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Record is one accepted command. Data holds the command in its canonical
// text form.
type Record struct {
	Type RecordType
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(t RecordType, seq uint64, data []byte) *Record {
	return &Record{
		Type: t,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

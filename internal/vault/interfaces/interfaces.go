package interfaces

import (
	"epd/internal/models"
	"time"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
}

// CipherInterface seals and opens vault payloads. Implementations must
// be safe for concurrent use.
type CipherInterface interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// UsageLogInterface is the contact usage-event store. Record/Stats/Count
// and Clear operate on in-memory state; Flush is the only disk writer.
type UsageLogInterface interface {
	Record(childID, contactID string, at time.Time)
	Stats() models.UsageStats
	Count() int
	Clear()
	Flush() error
	Restore() error
}

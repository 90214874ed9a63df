package crypto

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

type IDGenerator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("ID_GENERATION_FAILED").Wrap(err)
	}
	return id.String(), nil
}

// ULIDGenerator produces lexicographically sortable ids with 80 bits of
// crypto/rand entropy.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: rand.Reader,
		now:     time.Now,
	}
}

func (g *ULIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", oops.Code("ID_GENERATION_FAILED").Wrap(err)
	}
	return id.String(), nil
}

const (
	IDSchemeUUID = "uuid"
	IDSchemeULID = "ulid"
)

func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", IDSchemeUUID:
		return NewUUIDGenerator(), nil
	case IDSchemeULID:
		return NewULIDGenerator(), nil
	default:
		return nil, oops.Code("ID_UNKNOWN_SCHEME").
			With("scheme", scheme).
			Errorf("unknown id scheme %q", scheme)
	}
}

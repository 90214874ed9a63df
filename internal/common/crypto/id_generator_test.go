package crypto_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/authd/internal/common/crypto"
)

func TestUUIDGenerator(t *testing.T) {
	gen := crypto.NewUUIDGenerator()

	id, err := gen.NewID()
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestULIDGenerator(t *testing.T) {
	gen := crypto.NewULIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		_, err = ulid.ParseStrict(id)
		require.NoError(t, err)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestNewIDGenerator(t *testing.T) {
	gen, err := crypto.NewIDGenerator("")
	require.NoError(t, err)
	assert.IsType(t, &crypto.UUIDGenerator{}, gen)

	gen, err = crypto.NewIDGenerator(crypto.IDSchemeULID)
	require.NoError(t, err)
	assert.IsType(t, &crypto.ULIDGenerator{}, gen)

	_, err = crypto.NewIDGenerator("serial")
	assert.Error(t, err)
}

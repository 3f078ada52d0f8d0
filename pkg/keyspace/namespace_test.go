package keyspace_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegiskit/aegis/pkg/keyspace"
)

func TestNew_RequiresRoot(t *testing.T) {
	_, err := keyspace.New()
	assert.ErrorIs(t, err, keyspace.ErrNoRoot)
}

func TestNew_RejectsReservedTokens(t *testing.T) {
	tests := []string{"_rt", "_gp", "_ky", "has:colon", "has/slash"}
	for _, seg := range tests {
		_, err := keyspace.New(seg)
		assert.ErrorIsf(t, err, keyspace.ErrReservedToken, "segment %q", seg)
	}
}

func TestNew_RejectsEmptySegment(t *testing.T) {
	_, err := keyspace.New("lock", "  ")
	assert.ErrorIs(t, err, keyspace.ErrEmptySegment)
}

func TestPrefixed_Shape(t *testing.T) {
	ns, err := keyspace.New("lock")
	require.NoError(t, err)

	k, err := ns.NewKey("job-42")
	require.NoError(t, err)
	assert.Equal(t, "_rt:lock:_ky:job-42", k.Prefixed())
}

func TestPrefixed_WithGroup(t *testing.T) {
	ns, err := keyspace.New("lock")
	require.NoError(t, err)
	grouped, err := ns.WithGroup("tenant-a")
	require.NoError(t, err)

	k, err := grouped.NewKey("job-42")
	require.NoError(t, err)
	assert.Equal(t, "_rt:lock:_gp:tenant-a:_ky:job-42", k.Prefixed())
}

func TestAppendRoot_ExtendsRootNotGroup(t *testing.T) {
	ns, err := keyspace.New("lock")
	require.NoError(t, err)
	grouped, err := ns.WithGroup("tenant-a")
	require.NoError(t, err)

	extended, err := grouped.AppendRoot("v2")
	require.NoError(t, err)

	assert.Equal(t, []string{"lock", "v2"}, extended.RootPrefix())
	assert.Equal(t, []string{"tenant-a"}, extended.Group())
}

// Two keys differing only by namespace must map to distinct prefixed
// strings.
func TestNamespaceCollisionSafety(t *testing.T) {
	a, err := keyspace.New("lock")
	require.NoError(t, err)
	b, err := keyspace.New("semaphore")
	require.NoError(t, err)

	ka, err := a.NewKey("job-42")
	require.NoError(t, err)
	kb, err := b.NewKey("job-42")
	require.NoError(t, err)

	assert.False(t, ka.Equal(kb))
	assert.NotEqual(t, ka.Prefixed(), kb.Prefixed())
}

func TestKeyEqual_SameNamespaceSameSegments(t *testing.T) {
	ns, err := keyspace.New("lock")
	require.NoError(t, err)

	k1, err := ns.NewKey("a", "b")
	require.NoError(t, err)
	k2, err := ns.NewKey("a", "b")
	require.NoError(t, err)

	assert.True(t, k1.Equal(k2))
}

func TestShardKey_Deterministic(t *testing.T) {
	ns, err := keyspace.New("semaphore")
	require.NoError(t, err)
	k, err := ns.NewKey("pool")
	require.NoError(t, err)

	first := keyspace.ShardKey(k, 16)
	second := keyspace.ShardKey(k, 16)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 16)
	assert.Equal(t, 0, keyspace.ShardKey(k, 0))
}

func TestNewKey_RequiresSegments(t *testing.T) {
	ns, err := keyspace.New("lock")
	require.NoError(t, err)
	_, err = ns.NewKey()
	assert.True(t, errors.Is(err, keyspace.ErrNoKeySegments))
}

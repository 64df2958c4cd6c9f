package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/pkg/errors"
)

func TestNewStore(t *testing.T) {
	for _, provider := range []string{"", "env", "memory"} {
		store, err := NewStore(Config{Provider: provider})
		require.NoError(t, err, provider)
		assert.NotNil(t, store, provider)
	}

	store, err := NewStore(Config{Provider: "kms"})
	assert.ErrorContains(t, err, "unsupported secret provider")
	assert.Nil(t, store)
}

func TestEnvStore_NormalizesKey(t *testing.T) {
	t.Setenv("DASHSCOPE_API_KEY", "sk-env")
	got, err := NewEnvStore().Get(context.Background(), "dashscope.api-key")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", got)

	_, err = NewEnvStore().Get(context.Background(), "mall.unset-secret-for-test")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryStore_SetAndMissing(t *testing.T) {
	m := NewMemoryStore(nil)
	m.Set("jwt_key", "k1")
	got, err := m.Get(context.Background(), "jwt_key")
	require.NoError(t, err)
	assert.Equal(t, "k1", got)

	_, err = m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(map[string]string{"admin_password": "p@ss"})

	plain, err := Resolve(ctx, store, "literal")
	require.NoError(t, err)
	assert.Equal(t, "literal", plain)

	ref, err := Resolve(ctx, store, "secret:admin_password")
	require.NoError(t, err)
	assert.Equal(t, "p@ss", ref)

	_, err = Resolve(ctx, store, "secret:missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = Resolve(ctx, nil, "secret:admin_password")
	assert.Error(t, err)
}

func TestPickField(t *testing.T) {
	v2 := map[string]interface{}{"data": map[string]interface{}{"key": "jwt-k", "user": "ops"}}
	got, err := pickField(v2, "key", "mall/jwt#key")
	require.NoError(t, err)
	assert.Equal(t, "jwt-k", got)

	_, err = pickField(v2, "", "mall/jwt")
	assert.ErrorIs(t, err, errors.ErrNotFound, "多字段且无 value 时不猜测")

	v1 := map[string]interface{}{"api_key": "sk-1"}
	got, err = pickField(v1, "", "dashscope")
	require.NoError(t, err)
	assert.Equal(t, "sk-1", got)

	got, err = pickField(map[string]interface{}{"value": "v", "other": "o"}, "", "x")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

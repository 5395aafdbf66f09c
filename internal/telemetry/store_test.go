package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) IrrigationKey(userID int64) string {
	return "caec:irrigation:" + strconv.FormatInt(userID, 10)
}

func TestRedisConfigStoreRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store := NewRedisConfigStore(kv)
	ctx := context.Background()

	got, err := store.Load(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, got, "a miss is not an error")

	at := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	want := StoredConfig{Config: IrrigationSettings{SavingPower: 10, SavingDuration: 20, AbundantDuration: 30}, UpdatedAt: at}
	require.NoError(t, store.Save(ctx, 4, want))

	assert.Contains(t, kv.data, "caec:irrigation:4")
	assert.Contains(t, kv.data["caec:irrigation:4"], `"savingPower":10`)
	assert.Equal(t, time.Duration(0), kv.ttls["caec:irrigation:4"], "configs never expire")

	got, err = store.Load(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Config, got.Config)
	assert.True(t, got.UpdatedAt.Equal(at))
}

func TestRedisConfigStoreRejectsCorruptPayload(t *testing.T) {
	kv := newFakeKV()
	kv.data["caec:irrigation:1"] = "{not json"
	_, err := NewRedisConfigStore(kv).Load(context.Background(), 1)
	assert.Error(t, err)
}

func TestMemoryConfigStore(t *testing.T) {
	store := NewMemoryConfigStore()
	ctx := context.Background()
	got, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, 1, StoredConfig{Config: DefaultIrrigation()}))
	got, err = store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultIrrigation(), got.Config)
}

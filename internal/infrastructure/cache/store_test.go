package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopStoreAlwaysMissesAndNeverFails(t *testing.T) {
	store := NewNoopStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := store.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)

	assert.NoError(t, store.Delete(ctx, "k", "k2"))
	assert.NoError(t, store.DeleteByPrefix(ctx, "payments:"))
}

func TestKeySchemeIsDeterministic(t *testing.T) {
	clientID := uuid.New()
	ledgerID := uuid.New()

	assert.Equal(t, ClientPaymentsKey(clientID), ClientPaymentsKey(clientID))
	assert.Equal(t, "payments:client:"+clientID.String(), ClientPaymentsKey(clientID))
	assert.Equal(t, "payments:ledger:"+ledgerID.String(), LedgerKey(ledgerID))
	assert.Equal(t, "summary:client:"+clientID.String(), ClientSummaryKey(clientID))
}

func TestMutationKeysCoverEveryStaleEntry(t *testing.T) {
	clientID := uuid.New()
	ledgerID := uuid.New()

	keys := MutationKeys(ledgerID, clientID)
	require.Len(t, keys, 3)
	assert.Contains(t, keys, LedgerKey(ledgerID))
	assert.Contains(t, keys, ClientPaymentsKey(clientID))
	assert.Contains(t, keys, ClientSummaryKey(clientID))

	prefixes := ClientFamilyPrefixes(clientID)
	require.Len(t, prefixes, 2)
	for _, p := range prefixes {
		assert.Contains(t, p, clientID.String())
	}
}

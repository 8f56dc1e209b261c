package anchor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
	"github.com/sahayatri/go-tourist-credential/credential/vc"
	"github.com/sahayatri/go-tourist-credential/did"
)

func TestFingerprintStableAcrossKeyOrder(t *testing.T) {
	d1 := jsonmap.JSONMap{
		"issuer": "did:key:abc",
		"credentialSubject": map[string]interface{}{
			"name":      "Priya Sharma",
			"bloodType": "O+",
		},
	}
	d2 := jsonmap.JSONMap{
		"credentialSubject": map[string]interface{}{
			"bloodType": "O+",
			"name":      "Priya Sharma",
		},
		"issuer": "did:key:abc",
	}

	f1, err := Fingerprint(d1)
	require.NoError(t, err)
	f2, err := Fingerprint(d2)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
}

func TestFingerprintIgnoresProof(t *testing.T) {
	issuer, err := did.Generate()
	require.NoError(t, err)

	info := vc.TouristInfo{
		Name:              "Priya Sharma",
		Nationality:       "British",
		PassportNumber:    "G987654321",
		EmergencyContact:  "+44 20 7946 0999",
		BloodType:         "O+",
		InsurancePolicyID: "INS-AETNA-5588-XYZ",
	}

	payload, err := vc.BuildPayload(info, issuer)
	require.NoError(t, err)

	before, err := Fingerprint(payload)
	require.NoError(t, err)

	cred := mustSign(t, payload, issuer)
	after, err := Fingerprint(cred)
	require.NoError(t, err)

	// Pre-anchor and post-signing fingerprints must be identical bytes.
	assert.Equal(t, before, after)
}

func mustSign(t *testing.T, payload jsonmap.JSONMap, issuer *did.Identity) jsonmap.JSONMap {
	t.Helper()

	data, err := payload.ToJSON()
	require.NoError(t, err)
	cred, err := vc.ParseCredential(data)
	require.NoError(t, err)
	require.NoError(t, cred.AddProof(issuer))

	return cred.Doc()
}

func TestAdapterAnchorAndLookup(t *testing.T) {
	store := NewMemoryStore()
	adapter := NewAdapter(store, time.Second)
	ctx := context.Background()

	digest, err := Fingerprint(jsonmap.JSONMap{"issuer": "did:key:abc"})
	require.NoError(t, err)

	anchored, err := adapter.IsAnchored(ctx, digest)
	require.NoError(t, err)
	assert.False(t, anchored)

	receipt, err := adapter.Anchor(ctx, digest)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TxHash)

	anchored, err = adapter.IsAnchored(ctx, digest)
	require.NoError(t, err)
	assert.True(t, anchored)
}

func TestAdapterReanchorIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	adapter := NewAdapter(store, time.Second)
	ctx := context.Background()

	digest, err := Fingerprint(jsonmap.JSONMap{"issuer": "did:key:abc"})
	require.NoError(t, err)

	first, err := adapter.Anchor(ctx, digest)
	require.NoError(t, err)
	second, err := adapter.Anchor(ctx, digest)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// slowStore blocks in Put until its context is cancelled.
type slowStore struct{}

func (s *slowStore) Put(ctx context.Context, digest [32]byte) (*Receipt, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *slowStore) Has(ctx context.Context, digest [32]byte) (bool, error) {
	return false, nil
}

func TestAdapterAnchorTimeout(t *testing.T) {
	adapter := NewAdapter(&slowStore{}, 10*time.Millisecond)

	_, err := adapter.Anchor(context.Background(), [32]byte{0x01})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewEthereumStoreRejectsBadAddress(t *testing.T) {
	_, err := NewEthereumStore(context.Background(), EthereumStoreArgs{
		RPCURL:          "http://localhost:8545",
		ContractAddress: "not-an-address",
		DeployerKeyHex:  "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		ChainID:         1337,
	})
	assert.ErrorIs(t, err, ErrRejected)
}

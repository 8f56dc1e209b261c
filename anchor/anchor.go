// Package anchor records tamper-evident credential fingerprints on an
// external append-only store and answers existence lookups against it. The
// fingerprint is always computed over the proof-free canonical payload, so
// the issuance-time digest and the verification-time digest are the same
// bytes by construction.
package anchor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahayatri/go-tourist-credential/credential/common/canonical"
	"github.com/sahayatri/go-tourist-credential/credential/common/jsonmap"
)

// ErrTimeout indicates the store did not confirm the write within the
// adapter's deadline. Retryable by the caller; the adapter itself never
// retries.
var ErrTimeout = errors.New("anchor submission timed out")

// ErrRejected indicates the store refused the write outright, e.g. a
// malformed contract address or a reverted transaction. Fatal.
var ErrRejected = errors.New("anchor submission rejected")

// Receipt describes a confirmed anchor write.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// Store is the external append-only key-existence service. Put blocks until
// the write is confirmed or ctx expires; Has is a read-only lookup and
// never mutates state.
type Store interface {
	Put(ctx context.Context, digest [32]byte) (*Receipt, error)
	Has(ctx context.Context, digest [32]byte) (bool, error)
}

// Fingerprint computes the canonical digest of a credential document. The
// proof block is excluded regardless of whether one is attached, so the
// digest is identical before signing and after verification-side stripping.
func Fingerprint(doc jsonmap.JSONMap) ([32]byte, error) {
	data, err := doc.Canonicalize()
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to fingerprint document: %w", err)
	}

	return canonical.Digest(data), nil
}

// Adapter wraps a Store with a bounded submission timeout.
type Adapter struct {
	store   Store
	timeout time.Duration
}

// DefaultTimeout bounds anchor submissions when the caller does not
// configure one.
const DefaultTimeout = 120 * time.Second

// NewAdapter creates an Adapter over the given store.
func NewAdapter(store Store, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Adapter{
		store:   store,
		timeout: timeout,
	}
}

// Anchor submits a digest and blocks until confirmation or the deadline.
func (a *Adapter) Anchor(ctx context.Context, digest [32]byte) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	receipt, err := a.store.Put(ctx, digest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, err
	}

	return receipt, nil
}

// IsAnchored reports whether the digest has been recorded.
func (a *Adapter) IsAnchored(ctx context.Context, digest [32]byte) (bool, error) {
	return a.store.Has(ctx, digest)
}

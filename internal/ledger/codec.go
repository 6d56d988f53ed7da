// internal/ledger/codec.go
package ledger

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// MarshalCurve encodes a curve account snapshot in borsh, the same layout
// family the on-chain account data uses.
func MarshalCurve(c *CurveAccount) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode curve account: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalCurve decodes a snapshot produced by MarshalCurve.
func UnmarshalCurve(data []byte) (*CurveAccount, error) {
	var c CurveAccount
	if err := bin.NewBorshDecoder(data).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode curve account: %w", err)
	}
	return &c, nil
}

package engine

import (
	"github.com/dane-04-code/Fusefun/internal/curve"
)

// referralShareDivisor carves the referrer's cut out of the protocol fee:
// one tenth goes to the referrer, the rest to the treasury.
const referralShareDivisor = 10

type feeBreakdown struct {
	total    uint64
	protocol uint64
	creator  uint64
}

// splitFee computes the curve fee on amount and splits it between the
// protocol treasury and the token creator. All arithmetic is checked.
func (e *Engine) splitFee(amount uint64) (feeBreakdown, error) {
	scaled, err := curve.CheckedMul(amount, e.params.FeeBasisPoints)
	if err != nil {
		return feeBreakdown{}, err
	}
	total := scaled / 10_000

	scaled, err = curve.CheckedMul(total, e.params.ProtocolFeeShare)
	if err != nil {
		return feeBreakdown{}, err
	}
	protocol := scaled / 100

	return feeBreakdown{
		total:    total,
		protocol: protocol,
		creator:  total - protocol,
	}, nil
}

package utxo

import (
	"math/big"
	"sort"

	"github.com/nexawallet/txcore/internal/chain"
)

// Selection is the outcome of coin selection for a single transfer.
type Selection struct {
	// Units are the inputs chosen, largest first.
	Units []chain.SpendableUnit

	// Fee is the fee the transaction will pay. When NoChange is set this
	// includes any sub-dust remainder absorbed into the fee.
	Fee *big.Int

	// Change is the value returned to the sender, zero when NoChange.
	Change *big.Int

	// NoChange reports that the transaction has no change output.
	NoChange bool

	// Exhausted reports that every available unit was selected without
	// covering the target. Callers decide whether that is a sweep or a
	// shortfall.
	Exhausted bool
}

// Total returns the summed value of the selected units.
func (s *Selection) Total() *big.Int {
	total := new(big.Int)
	for _, u := range s.Units {
		total.Add(total, u.Value)
	}
	return total
}

// Select chooses units to cover target using largest-first accumulation.
// The fee is recomputed after each unit is added since every input grows
// the transaction. When includeFee is true the selected units must cover
// target plus the fee (native transfers); when false the fee is paid from
// a separate balance and units only need to cover target itself.
//
// If the change left over would be below dustLimit it is folded into the
// fee and the change output dropped. If the units run out the selection is
// returned with Exhausted set and a no-change fee over all units.
func Select(units []chain.SpendableUnit, target *big.Int, feeRate, dustLimit uint64, includeFee bool) *Selection {
	sorted := make([]chain.SpendableUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value.Cmp(sorted[j].Value) > 0
	})

	selected := make([]chain.SpendableUnit, 0, len(sorted))
	total := new(big.Int)

	for _, u := range sorted {
		selected = append(selected, u)
		total.Add(total, u.Value)

		// Recipient output plus change output.
		fee := EstimateFee(len(selected), 2, feeRate)

		need := new(big.Int).Set(target)
		if includeFee {
			need.Add(need, fee)
		}
		if total.Cmp(need) < 0 {
			continue
		}

		if !includeFee {
			return &Selection{
				Units:  selected,
				Fee:    fee,
				Change: new(big.Int).Sub(total, target),
			}
		}

		change := new(big.Int).Sub(total, target)
		change.Sub(change, fee)
		if change.Cmp(new(big.Int).SetUint64(dustLimit)) < 0 {
			// Sub-dust change is not worth an output; the remainder
			// goes to the miner.
			return &Selection{
				Units:    selected,
				Fee:      new(big.Int).Sub(total, target),
				Change:   new(big.Int),
				NoChange: true,
			}
		}

		return &Selection{
			Units:  selected,
			Fee:    fee,
			Change: change,
		}
	}

	return &Selection{
		Units:     selected,
		Fee:       EstimateFee(len(selected), 1, feeRate),
		Change:    new(big.Int),
		NoChange:  true,
		Exhausted: true,
	}
}

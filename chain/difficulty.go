// Copyright 2020 The The 420Integrated Development Group
// This file is part of the go-420coin library.
//
// The go-420coin library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-420coin library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-420coin library. If not, see <http://www.gnu.org/licenses/>.

package chain

import "math/big"

// Some weird constants to avoid constant memory allocs for them.
var (
	big148 = big.NewInt(148)
	big6   = big.NewInt(6)
	bigMinus99 = big.NewInt(-99)
	periodDivisor = big.NewInt(66_000_000)
)

// GetDiff is the difficulty adjustment algorithm (spec.md §4.2):
//
//	elapsed = now - prev_ts
//	bonus = elapsed + (elapsed-4)*new_block_count; if bonus>0, elapsed=bonus
//	x = 1 - floor(elapsed/6), clamped to x >= -99
//	y = prev_distance / 148
//	result = prev_distance + x*y
//	return max(result, min_diff)
func GetDiff(nowMs, prevTsMs int64, prevDistance, minDiff *big.Int, newBlockCount int64) *big.Int {
	elapsed := nowMs - prevTsMs
	bonus := elapsed + (elapsed-4)*newBlockCount
	if bonus > 0 {
		elapsed = bonus
	}

	x := new(big.Int).Sub(big.NewInt(1), floorDiv(big.NewInt(elapsed), big6))
	if x.Cmp(bigMinus99) < 0 {
		x.Set(bigMinus99)
	}

	y := new(big.Int).Div(prevDistance, big148)

	result := new(big.Int).Add(prevDistance, new(big.Int).Mul(x, y))
	if result.Cmp(minDiff) < 0 {
		return new(big.Int).Set(minDiff)
	}
	return result
}

// floorDiv implements floor(a/b) for possibly-negative a, matching the
// source language's floor-division semantics rather than Go's
// truncate-toward-zero big.Int.Div/Quo for negative numerators.
func floorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a, b, r)
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

// GetExpFactorDiff applies the exponential "bomb" adjustment on top of a
// get_diff result (spec.md §4.2):
//
//	period = floor((parent_height+1) / 66_000_000)
//	if period > 2, add 2^(period-2)
func GetExpFactorDiff(diff *big.Int, parentHeight uint64) *big.Int {
	period := new(big.Int).Div(new(big.Int).SetUint64(parentHeight+1), periodDivisor)
	out := new(big.Int).Set(diff)
	if period.Cmp(big.NewInt(2)) > 0 {
		exp := new(big.Int).Sub(period, big.NewInt(2))
		bonus := new(big.Int).Exp(big.NewInt(2), exp, nil)
		out.Add(out, bonus)
	}
	return out
}

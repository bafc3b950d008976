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

import (
	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/rovers"
)

// PrepareNewBlock assembles a MiningCandidate on top of lastParent
// (spec.md §4.4 start_mining step 3): it merges lastParent's header map
// with the freshly observed tip on triggerChain, recomputes difficulty with
// the exp-factor bomb applied, and retries with timestamp+=1 until the
// result fits 53 bits (spec.md §4.2, §9). Returns the candidate and the
// final timestamp actually used.
func PrepareNewBlock(
	nowS int64,
	lastParent *ParentBlock,
	triggerChain rovers.Chain,
	triggerHeader rovers.ChildHeader,
	newBlockCount int64,
	txList []string,
	minerKey string,
	unfinished *ParentBlock,
) (*MiningCandidate, int64) {
	headers := lastParent.BlockchainHeaders
	if unfinished != nil {
		headers = unfinished.BlockchainHeaders
	}
	headers = headers.WithTip(triggerChain, triggerHeader)

	ts := nowS
	var difficultyHex string
	for {
		d := GetDiff(ts*1000, lastParent.TimestampS*1000, lastParent.DistanceBig(), MinimumDifficulty, newBlockCount)
		adjusted := GetExpFactorDiff(d, lastParent.Height)
		if common.Fits53Bits(adjusted) {
			difficultyHex = common.BigToHex(adjusted)
			break
		}
		ts++
	}

	candidate := lastParent.Clone()
	candidate.PreviousHash = lastParent.Hash
	candidate.Height = lastParent.Height + 1
	candidate.Miner = minerKey
	candidate.Difficulty = difficultyHex
	candidate.TimestampS = ts
	candidate.Distance = "0"
	candidate.TotalDistance = lastParent.TotalDistance
	candidate.Nonce = ""
	candidate.TxList = txList
	candidate.TxCount = len(txList)
	candidate.BlockchainHeaders = headers
	candidate.BlockchainHeadersCount = headers.DistinctCount()
	candidate.ChainRoot = common.BigToHex(ChildChainRoot(headers))
	candidate.MerkleRoot = MerkleRoot(merkleInputs(candidate, headers))
	candidate.Hash = candidate.ComputeHash()

	work := PrepareWork(lastParent.Hash, headers)
	return &MiningCandidate{Block: candidate, Work: work}, ts
}

// merkleInputs builds the ordered leaf list merkle_root folds over: the
// candidate's transactions (possibly empty, spec.md §3) followed by every
// header hash, so the root commits to both.
func merkleInputs(b *ParentBlock, headers rovers.ChildHeaderMap) []string {
	leaves := append([]string{}, b.TxList...)
	for _, c := range rovers.Known {
		for _, h := range headers[c] {
			leaves = append(leaves, h.Hash)
		}
	}
	if len(leaves) == 0 {
		leaves = []string{b.PreviousHash}
	}
	return leaves
}

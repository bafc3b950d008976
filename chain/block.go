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

// Package chain holds the parent-chain block model and the pure functions
// that assemble, hash, and score it: difficulty, work, distance, merkle
// root, and mining-candidate preparation (spec.md §3-4.2).
package chain

import (
	"math/big"

	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/rovers"
)

// MinimumDifficulty is the floor every get_diff result is clamped to
// (spec.md §4.2).
var MinimumDifficulty = common.BigFromHex("11801972029393")

// ParentBlock bundles references to rovered-chain tips into the chain this
// node mines. See spec.md §3 for field-by-field semantics and invariants.
type ParentBlock struct {
	Hash         string `json:"hash"`
	PreviousHash string `json:"previousHash"`
	Version      uint32 `json:"version"`
	SchemaVersion uint32 `json:"schemaVersion"`
	Height       uint64 `json:"height"`
	Miner        string `json:"miner"`

	Difficulty    string `json:"difficulty"`    // base-16 big.Int
	TimestampS    int64  `json:"timestampS"`
	MerkleRoot    string `json:"merkleRoot"`
	ChainRoot     string `json:"chainRoot"`
	Distance      string `json:"distance"`      // base-16 big.Int
	TotalDistance string `json:"totalDistance"` // base-16 big.Int
	Nonce         string `json:"nonce"`
	NrgGrant      uint64 `json:"nrgGrant"`

	// Genesis-copied fields, carried forward unchanged by prepare_new_block.
	BlockchainFingerprintsRoot string `json:"blockchainFingerprintsRoot"`
	Targets                    map[string]string `json:"targets"`
	Emblem                     string            `json:"emblem"`
	TxFeeBase                  uint64            `json:"txFeeBase"`
	TxFeeMultiplier            uint64            `json:"txFeeMultiplier"`

	TxList                  []string                `json:"txList"`
	TxCount                 int                     `json:"txCount"`
	BlockchainHeadersCount  int                     `json:"blockchainHeadersCount"`
	BlockchainHeaders       rovers.ChildHeaderMap   `json:"blockchainHeaders"`
}

// DifficultyBig parses Difficulty as an unbounded integer.
func (b *ParentBlock) DifficultyBig() *big.Int { return common.BigFromHex(b.Difficulty) }

// DistanceBig parses Distance as an unbounded integer.
func (b *ParentBlock) DistanceBig() *big.Int { return common.BigFromHex(b.Distance) }

// TotalDistanceBig parses TotalDistance as an unbounded integer.
func (b *ParentBlock) TotalDistanceBig() *big.Int { return common.BigFromHex(b.TotalDistance) }

// Clone returns a deep copy safe to mutate independently of b.
func (b *ParentBlock) Clone() *ParentBlock {
	cp := *b
	cp.TxList = append([]string{}, b.TxList...)
	cp.BlockchainHeaders = b.BlockchainHeaders.Clone()
	cp.Targets = make(map[string]string, len(b.Targets))
	for k, v := range b.Targets {
		cp.Targets[k] = v
	}
	return &cp
}

// ComputeHash returns H(previous_hash || merkle_root), the invariant every
// accepted block must satisfy (spec.md §3, §8).
func (b *ParentBlock) ComputeHash() string {
	return common.H2(b.PreviousHash, b.MerkleRoot)
}

// MiningCandidate is a ParentBlock prepared for the worker: nonce="",
// distance=0, timestamp set to assembly time, plus the derived work string.
type MiningCandidate struct {
	Block *ParentBlock
	Work  string
}

// Solution is what the worker sends back on success (spec.md §3/§4.3).
type Solution struct {
	Nonce      string `json:"nonce"`
	Distance   string `json:"distance"` // base-16 big.Int
	TimestampS int64  `json:"timestampS"`
	Difficulty string `json:"difficulty"` // base-16 big.Int
	Iterations uint64 `json:"iterations"`
	TimeDiffMs int64  `json:"timeDiffMs"`
}

// DistanceBig parses Solution.Distance as an unbounded integer.
func (s *Solution) DistanceBig() *big.Int { return common.BigFromHex(s.Distance) }

// DifficultyBig parses Solution.Difficulty as an unbounded integer.
func (s *Solution) DifficultyBig() *big.Int { return common.BigFromHex(s.Difficulty) }

// Accepted reports whether the solution clears its own difficulty target,
// distance > difficulty as unbounded integers (spec.md §3).
func (s *Solution) Accepted() bool {
	return s.DistanceBig().Cmp(s.DifficultyBig()) > 0
}

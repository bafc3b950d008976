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

// genesisHeaders seeds every known chain with a synthetic height-1 tip so
// the first parent block satisfies ChildHeaderMap's completeness invariant
// without waiting on a live rover.
func genesisHeaders() rovers.ChildHeaderMap {
	m := make(rovers.ChildHeaderMap, len(rovers.Known))
	for _, c := range rovers.Known {
		seed := string(c) + ".genesis"
		m[c] = []rovers.ChildHeader{{
			Chain:                 c,
			Hash:                  common.H(seed),
			PreviousHash:          common.H(seed + ".prev"),
			TimestampMs:           0,
			Height:                1,
			MerkleRoot:            common.H(seed + ".merkle"),
			ConfirmationsInParent: 1,
		}}
	}
	return m
}

// Genesis produces the canonical height-1 parent block from static data
// (spec.md §4, "Genesis provider"). It is a pure function: called twice, it
// returns byte-identical blocks (spec.md §8 scenario 1).
func Genesis() *ParentBlock {
	headers := genesisHeaders()

	b := &ParentBlock{
		PreviousHash:  common.H("multiverse.genesis.seed"),
		Version:       1,
		SchemaVersion: 1,
		Height:        1,
		Miner:         "0x0000000000000000000000000000000000000000",
		Difficulty:    common.BigToHex(MinimumDifficulty),
		TimestampS:    1400198400, // 2014-05-16T00:00:00Z — an arbitrary, fixed epoch
		Distance:      "0",
		TotalDistance: "0",
		Nonce:         "",
		NrgGrant:      0,

		BlockchainFingerprintsRoot: common.H("multiverse.genesis.fingerprints"),
		Targets: map[string]string{
			string(rovers.BTC): "0x00000000ffff0000000000000000000000000000000000000000000000000",
		},
		Emblem:          "genesis",
		TxFeeBase:       0,
		TxFeeMultiplier: 1,

		TxList:                 nil,
		TxCount:                0,
		BlockchainHeadersCount: len(rovers.Known),
		BlockchainHeaders:      headers,
	}
	b.MerkleRoot = MerkleRoot([]string{common.H("genesis.merkle.seed")})
	b.ChainRoot = common.BigToHex(ChildChainRoot(headers))
	b.Hash = b.ComputeHash()
	return b
}

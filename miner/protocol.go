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

// Package miner forks and supervises the out-of-process proof-of-work
// search (spec.md §4.3): the engine's half of the relationship lives here,
// the worker's half in cmd/bcminer.
package miner

// DifficultyData is the per-second difficulty recomputation input the
// worker re-derives get_diff/get_exp_factor_diff from (spec.md §4.3):
// prev_block_bytes/new_headers_bytes are the JSON encodings of the parent
// block and header map get_diff needs, re-decoded each time the wall-clock
// second advances rather than threaded through as already-parsed structs.
type DifficultyData struct {
	CurrentTimestampS int64  `json:"currentTimestampS"`
	PrevBlockBytes    []byte `json:"prevBlockBytes"`
	NewHeadersBytes   []byte `json:"newHeadersBytes"`
}

// Request is the single message sent to a freshly forked worker (spec.md
// §4.3).
type Request struct {
	CurrentTimestampS int64          `json:"currentTimestampS"`
	OffsetMs          int64          `json:"offsetMs"`
	Work              string         `json:"work"`
	MinerKey          string         `json:"minerKey"`
	MerkleRoot        string         `json:"merkleRoot"`
	Difficulty        string         `json:"difficulty"` // base-16 big.Int
	DifficultyData    DifficultyData `json:"difficultyData"`
}

// Solution mirrors chain.Solution on the wire; kept distinct from
// chain.Solution so the IPC framing can evolve without perturbing the
// block model.
type Solution struct {
	Nonce      string `json:"nonce"`
	Distance   string `json:"distance"`
	TimestampS int64  `json:"timestampS"`
	Difficulty string `json:"difficulty"`
	Iterations uint64 `json:"iterations"`
	TimeDiffMs int64  `json:"timeDiffMs"`
}

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

// Command bcminer is the out-of-process proof-of-work search (spec.md
// §4.3). It is forked and supervised by the engine's miner.Handle; never
// run directly against a live data directory.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"math/big"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/common"
	"github.com/multiverse-labs/bcengine/miner"
	"github.com/multiverse-labs/bcengine/rovers"
)

const deadline = 300 * time.Second

func main() {
	req, err := readRequest(os.Stdin)
	if err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	watchSignal(cancel)
	watchStdinClose(cancel)

	sol, found := search(ctx, req)
	if !found {
		os.Exit(0)
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(sol); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func readRequest(r io.Reader) (miner.Request, error) {
	var req miner.Request
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		return req, scanner.Err()
	}
	err := json.Unmarshal(scanner.Bytes(), &req)
	return req, err
}

func watchSignal(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
}

// watchStdinClose detects the engine disconnecting IPC by closing the
// write end of our stdin: once the single request line has been consumed,
// any further read returns EOF exactly when the pipe closes.
func watchStdinClose(cancel context.CancelFunc) {
	go func() {
		_, _ = io.Copy(ioutil.Discard, os.Stdin)
		cancel()
	}()
}

// search runs the spec.md §4.3 loop: draw a nonce, measure distance against
// the per-second difficulty, and return on the first trial that clears it.
func search(ctx context.Context, req miner.Request) (miner.Solution, bool) {
	t0 := time.Now()
	deadlineAt := t0.Add(deadline)

	difficulty := common.BigFromHex(req.Difficulty)
	lastSecond := req.CurrentTimestampS
	var iterations uint64

	for {
		select {
		case <-ctx.Done():
			return miner.Solution{}, false
		default:
		}

		now := time.Now()
		if now.After(deadlineAt) {
			return miner.Solution{}, false
		}

		currentSecond := now.Unix()
		if currentSecond > lastSecond {
			difficulty = recompute(req.DifficultyData, currentSecond)
			lastSecond = currentSecond
		}

		nonce := strconv.FormatFloat(rand.Float64(), 'f', -1, 64)
		candidateInput := req.MinerKey + req.MerkleRoot + common.H(nonce) + strconv.FormatInt(currentSecond, 10)
		trial := chain.Distance(req.Work, common.H(candidateInput))
		iterations++

		if trial.Cmp(difficulty) > 0 {
			return miner.Solution{
				Nonce:      nonce,
				Distance:   common.BigToHex(trial),
				TimestampS: currentSecond,
				Difficulty: common.BigToHex(difficulty),
				Iterations: iterations,
				TimeDiffMs: time.Since(t0).Milliseconds(),
			}, true
		}
	}
}

// recompute re-derives get_diff followed by get_exp_factor_diff against the
// current wall-clock second (spec.md §4.3 step 3).
func recompute(data miner.DifficultyData, nowS int64) *big.Int {
	var prevBlock chain.ParentBlock
	if err := json.Unmarshal(data.PrevBlockBytes, &prevBlock); err != nil {
		return chain.MinimumDifficulty
	}
	var headers rovers.ChildHeaderMap
	if err := json.Unmarshal(data.NewHeadersBytes, &headers); err != nil {
		headers = prevBlock.BlockchainHeaders
	}

	newBlockCount := int64(headers.DistinctCount() - prevBlock.BlockchainHeadersCount)
	if newBlockCount < 0 {
		newBlockCount = 0
	}

	d := chain.GetDiff(nowS*1000, prevBlock.TimestampS*1000, prevBlock.DistanceBig(), chain.MinimumDifficulty, newBlockCount)
	return chain.GetExpFactorDiff(d, prevBlock.Height)
}

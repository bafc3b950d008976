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

package miner

import (
	"bufio"
	"encoding/json"
	"io"
	"os/exec"
	"sync"
	"syscall"

	"github.com/multiverse-labs/bcengine/internal/errs"
	"github.com/multiverse-labs/bcengine/internal/log"
)

// Handle supervises one forked worker process for the lifetime of a single
// mining attempt (spec.md §4.3/§4.4). A Handle is used once: preemption
// replaces it rather than reusing it.
type Handle struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	onMessage func(Solution)
	onError   func(error)
	onExit    func()

	mu      sync.Mutex
	stopped bool
}

// Start forks binPath as the worker, wires line-delimited JSON IPC over its
// stdin/stdout, writes req as the single request line, and begins
// delivering Solution/error/exit events to the supplied handlers (spec.md
// §4.4 start_mining step 7, "register on_message, on_error, on_exit
// handlers").
func Start(binPath string, args []string, req Request, onMessage func(Solution), onError func(error), onExit func()) (*Handle, error) {
	cmd := exec.Command(binPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errs.New(errs.KindWorker, "miner.Start stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errs.New(errs.KindWorker, "miner.Start stdout pipe", err)
	}

	h := &Handle{cmd: cmd, stdin: stdin, onMessage: onMessage, onError: onError, onExit: onExit}

	if err := cmd.Start(); err != nil {
		return nil, errs.New(errs.KindWorker, "miner.Start fork", err)
	}

	enc := json.NewEncoder(stdin)
	if err := enc.Encode(req); err != nil {
		h.Stop()
		return nil, errs.New(errs.KindWorker, "miner.Start send request", err)
	}

	go h.readLoop(stdout)
	return h, nil
}

func (h *Handle) readLoop(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		var sol Solution
		if err := json.Unmarshal(scanner.Bytes(), &sol); err != nil {
			h.mu.Lock()
			stopped := h.stopped
			h.mu.Unlock()
			if !stopped {
				h.onError(errs.New(errs.KindWorker, "miner.readLoop decode", err))
			}
			continue
		}
		h.mu.Lock()
		stopped := h.stopped
		h.mu.Unlock()
		if !stopped {
			h.onMessage(sol)
		}
	}

	err := h.cmd.Wait()

	h.mu.Lock()
	stopped := h.stopped
	h.mu.Unlock()
	if stopped {
		return
	}
	if err != nil {
		log.Warn("worker exited with error", "err", err)
		h.onError(errs.New(errs.KindWorker, "miner worker process", err))
	}
	h.onExit()
}

// Stop idempotently tears down the worker: closes the IPC pipe, sends
// SIGTERM, and releases the process. Returns whether a running worker was
// actually stopped (spec.md §4.4 stop_mining).
func (h *Handle) Stop() bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.stopped = true
	h.mu.Unlock()

	_ = h.stdin.Close()
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Signal(syscall.SIGTERM)
	}
	return true
}

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

package store

import (
	"fmt"

	"github.com/multiverse-labs/bcengine/rovers"
)

// Key layout (spec.md §6).
const (
	KeyBlockLatest  = "bc.block.latest"
	KeyBlockEarliest = "bc.block.earliest"
	KeyAppVersion   = "appversion"
	KeyRovers       = "rovers"
)

// KeyBlockHeight returns the key a canonical block at height h is stored at.
func KeyBlockHeight(h uint64) string { return fmt.Sprintf("bc.block.%d", h) }

// KeyRoverLatest returns the key the latest known tip of a rovered chain is
// stored at.
func KeyRoverLatest(c rovers.Chain) string { return string(c) + ".block.latest" }

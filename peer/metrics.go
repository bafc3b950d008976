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

package peer

import (
	"fmt"

	"github.com/multiverse-labs/bcengine/internal/metrics"
)

var (
	callGauge           = metrics.NewRegisteredGauge("peer/calls", nil)
	successfulCallGauge = metrics.NewRegisteredGauge("peer/success", nil)
	failedCallGauge     = metrics.NewRegisteredGauge("peer/failure", nil)
	callServingTimer    = metrics.NewRegisteredTimer("peer/duration/all", nil)
)

func newCallTimer(method string, ok bool) *metrics.Timer {
	flag := "success"
	if !ok {
		flag = "failure"
	}
	name := fmt.Sprintf("peer/duration/%s/%s", method, flag)
	return metrics.GetOrRegisterTimer(name, nil)
}

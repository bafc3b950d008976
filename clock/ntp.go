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

package clock

import (
	"encoding/binary"
	"net"
	"time"
)

const ntpEpochOffset = 2208988800 // seconds between 1900 and 1970

// DefaultNTPQuery performs a minimal SNTP v3 request against pool.ntp.org
// and returns the offset, in milliseconds, between the server's clock and
// the local wall clock.
func DefaultNTPQuery() (int64, error) {
	conn, err := net.DialTimeout("udp", "pool.ntp.org:123", 5*time.Second)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	req := make([]byte, 48)
	req[0] = 0x1B // LI=0, VN=3, Mode=3 (client)

	sent := time.Now()
	if _, err := conn.Write(req); err != nil {
		return 0, err
	}

	resp := make([]byte, 48)
	if _, err := conn.Read(resp); err != nil {
		return 0, err
	}
	recv := time.Now()

	secs := binary.BigEndian.Uint32(resp[40:44])
	frac := binary.BigEndian.Uint32(resp[44:48])
	serverTime := time.Unix(int64(secs)-ntpEpochOffset, int64(float64(frac)/(1<<32)*1e9))

	roundTrip := recv.Sub(sent)
	adjustedServer := serverTime.Add(roundTrip / 2)
	return adjustedServer.Sub(recv).Milliseconds(), nil
}

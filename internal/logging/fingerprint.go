// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package logging

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// fingerprintKey keys the BLAKE2b digest so fingerprints cannot be
// recomputed from a list of candidate addresses by a third party holding
// only the logs. It is fixed per process.
var fingerprintKey = []byte(GenerateRequestID())

// Fingerprint returns a short stable digest of a client address for log
// fields and cache keys. The empty string maps to "".
func Fingerprint(addr string) string {
	if addr == "" {
		return ""
	}
	h, err := blake2b.New(8, fingerprintKey)
	if err != nil {
		// Only returned for key or size out of range.
		return ""
	}
	h.Write([]byte(addr))
	return hex.EncodeToString(h.Sum(nil))
}

package client

import (
	"github.com/shinyyama/reconnect/internal/match"
	"github.com/shinyyama/reconnect/internal/verify"
)

// ContactAllowed is the claim gate: the finder's contact is only requested after
// a High visual match and a verified police report.
func ContactAllowed(m *match.Result, v *verify.Result) bool {
	return m != nil && v != nil && m.Likelihood == match.High && v.Verified
}

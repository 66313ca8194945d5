// Package retire decides whether a published package may be
// permanently removed, and performs the removal.
package retire

import (
	"math"
	"time"

	"stowage.sh/core/registry/models"
)

// GracePeriod is how long after publication a package may be retired
// unconditionally.
const GracePeriod = 72 * time.Hour

// DownloadsPerMonthLimit caps the downloads an old package may have
// accumulated, per month of age, and still be eligible.
const DownloadsPerMonthLimit = uint64(100)

const (
	ReasonSingleOwner = "only crates with a single owner can be deleted after 72 hours"
	ReasonDownloads   = "only crates with less than 100 downloads per month can be deleted after 72 hours"
	ReasonReverseDeps = "only crates without reverse dependencies can be deleted after 72 hours"
)

// Decision is the outcome of an eligibility evaluation. A denied
// decision carries exactly one human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }

// Evaluate applies the retirement rules to a snapshot of a package's
// state. It is pure: every input is passed in, including the clock.
//
// A package inside the grace period is always eligible. Past the grace
// period, it must have exactly one individual owner, stay under the
// download ceiling for its age, and have no reverse dependencies; the
// rules are checked in that order and the first violation wins. Group
// owners never count toward the single-owner rule.
func Evaluate(pkg models.Package, owners []models.Owner, downloads uint64, hasRevDep bool, now time.Time) Decision {
	age := now.Sub(pkg.Created)
	if age <= GracePeriod {
		return allow()
	}

	users := 0
	for _, owner := range owners {
		if owner.IsUser() {
			users++
		}
	}
	if users != 1 {
		return deny(ReasonSingleOwner)
	}

	if downloads > downloadLimit(age) {
		return deny(ReasonDownloads)
	}

	if hasRevDep {
		return deny(ReasonReverseDeps)
	}

	return allow()
}

// downloadLimit computes 100 downloads per started month of age.
// Months are ceiling-divided 30-day windows of wall-clock time, never
// calendar months, and the arithmetic saturates instead of wrapping.
func downloadLimit(age time.Duration) uint64 {
	if age < 0 {
		age = 0
	}

	ageDays := uint64(age / (24 * time.Hour))
	if age%(24*time.Hour) != 0 {
		ageDays++
	}

	ageMonths := ceilDiv(ageDays, 30)
	if ageMonths == 0 {
		// unreachable for packages past the grace period, but a
		// zero-month limit would deny everything
		ageMonths = 1
	}

	if ageMonths > math.MaxUint64/DownloadsPerMonthLimit {
		return math.MaxUint64
	}
	return DownloadsPerMonthLimit * ageMonths
}

func ceilDiv(a, b uint64) uint64 {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}

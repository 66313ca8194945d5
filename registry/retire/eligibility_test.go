package retire

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"stowage.sh/core/registry/models"
)

func pkgCreatedAgo(age time.Duration, now time.Time) models.Package {
	return models.Package{ID: 1, Name: "foo", Created: now.Add(-age)}
}

func soleOwner() []models.Owner {
	return []models.Owner{{Kind: models.OwnerKindUser, Account: "alice"}}
}

func TestEvaluateNewPackageAlwaysAllowed(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		owners    []models.Owner
		downloads uint64
		hasRevDep bool
	}{
		{"clean", soleOwner(), 0, false},
		{"many downloads", soleOwner(), 10_000, false},
		{"many owners", []models.Owner{
			{Kind: models.OwnerKindUser, Account: "alice"},
			{Kind: models.OwnerKindUser, Account: "bob"},
		}, 0, false},
		{"reverse dependency", soleOwner(), 0, true},
		{"everything wrong at once", []models.Owner{
			{Kind: models.OwnerKindUser, Account: "alice"},
			{Kind: models.OwnerKindUser, Account: "bob"},
		}, math.MaxUint64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := pkgCreatedAgo(71*time.Hour, now)
			decision := Evaluate(pkg, tt.owners, tt.downloads, tt.hasRevDep, now)
			assert.True(t, decision.Allowed)
		})
	}
}

func TestEvaluateGracePeriodBoundary(t *testing.T) {
	now := time.Now()

	// exactly 72 hours is still "new"
	pkg := pkgCreatedAgo(72*time.Hour, now)
	decision := Evaluate(pkg, nil, 0, false, now)
	assert.True(t, decision.Allowed)

	// a second past and the owner rules kick in; no owners means no
	// single individual owner
	pkg = pkgCreatedAgo(72*time.Hour+time.Second, now)
	decision = Evaluate(pkg, nil, 0, false, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSingleOwner, decision.Reason)
}

func TestEvaluateOldPackageHappyPath(t *testing.T) {
	now := time.Now()
	pkg := pkgCreatedAgo(73*time.Hour, now)

	decision := Evaluate(pkg, soleOwner(), 100, false, now)
	assert.True(t, decision.Allowed)
}

func TestEvaluateSingleOwnerRule(t *testing.T) {
	now := time.Now()
	pkg := pkgCreatedAgo(73*time.Hour, now)

	owners := []models.Owner{
		{Kind: models.OwnerKindUser, Account: "alice"},
		{Kind: models.OwnerKindUser, Account: "bob"},
	}
	decision := Evaluate(pkg, owners, 0, false, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSingleOwner, decision.Reason)
}

func TestEvaluateGroupOwnersDoNotCount(t *testing.T) {
	// one individual owner plus a group owner still counts as a
	// single owner; groups grant no delete rights and are excluded
	// from the cardinality check
	now := time.Now()
	pkg := pkgCreatedAgo(73*time.Hour, now)

	owners := []models.Owner{
		{Kind: models.OwnerKindUser, Account: "alice"},
		{Kind: models.OwnerKindGroup, Account: "rustaceans"},
	}
	decision := Evaluate(pkg, owners, 0, false, now)
	assert.True(t, decision.Allowed)

	// a group alone is zero individual owners, which also fails the
	// exactly-one rule
	owners = []models.Owner{
		{Kind: models.OwnerKindGroup, Account: "rustaceans"},
	}
	decision = Evaluate(pkg, owners, 0, false, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonSingleOwner, decision.Reason)
}

func TestEvaluateDownloadCeiling(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		age       time.Duration
		downloads uint64
		allowed   bool
	}{
		// 73h is 4 ceiling-days, 1 month, limit 100
		{"at the limit", 73 * time.Hour, 100, true},
		{"one past the limit", 73 * time.Hour, 101, false},
		// 45 days is 2 months, limit 200
		{"older package, at the limit", 45 * 24 * time.Hour, 200, true},
		{"older package, one past", 45 * 24 * time.Hour, 201, false},
		// 60 days is exactly 2 months
		{"exact month multiple", 60 * 24 * time.Hour, 200, true},
		{"huge downloads saturate instead of wrapping", 73 * time.Hour, math.MaxUint64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := pkgCreatedAgo(tt.age, now)
			decision := Evaluate(pkg, soleOwner(), tt.downloads, false, now)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.Equal(t, ReasonDownloads, decision.Reason)
			}
		})
	}
}

func TestEvaluateReverseDependencyRule(t *testing.T) {
	now := time.Now()
	pkg := pkgCreatedAgo(73*time.Hour, now)

	decision := Evaluate(pkg, soleOwner(), 0, true, now)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonReverseDeps, decision.Reason)
}

func TestEvaluateRuleOrder(t *testing.T) {
	// when several rules fail at once, the single-owner reason wins,
	// then downloads, then reverse dependencies
	now := time.Now()
	pkg := pkgCreatedAgo(73*time.Hour, now)

	owners := []models.Owner{
		{Kind: models.OwnerKindUser, Account: "alice"},
		{Kind: models.OwnerKindUser, Account: "bob"},
	}
	decision := Evaluate(pkg, owners, 1_000_000, true, now)
	assert.Equal(t, ReasonSingleOwner, decision.Reason)

	decision = Evaluate(pkg, soleOwner(), 1_000_000, true, now)
	assert.Equal(t, ReasonDownloads, decision.Reason)
}

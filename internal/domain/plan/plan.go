// Package plan holds the subscription tiers and their feature limits.
// Billing and checkout live in an external service; this package only
// answers "may this account do X".
package plan

// Plan identifies a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

// Limits describes what a tier allows. A negative limit means unlimited.
type Limits struct {
	MaxProperties  int
	CalendarSync   bool
	MaxSyncRecords int
}

var limitsByPlan = map[Plan]Limits{
	PlanFree:    {MaxProperties: 1, CalendarSync: false, MaxSyncRecords: 0},
	PlanPro:     {MaxProperties: 5, CalendarSync: true, MaxSyncRecords: 5},
	PlanPremium: {MaxProperties: -1, CalendarSync: true, MaxSyncRecords: -1},
}

// LimitsFor returns the limits for a tier. Unknown tiers degrade to free so
// a stale plan string never unlocks paid features.
func LimitsFor(p Plan) Limits {
	if l, ok := limitsByPlan[p]; ok {
		return l
	}
	return limitsByPlan[PlanFree]
}

// CanAddProperty reports whether the account may create another property.
func CanAddProperty(p Plan, currentCount int64) bool {
	l := LimitsFor(p)
	return l.MaxProperties < 0 || currentCount < int64(l.MaxProperties)
}

// CanAddSync reports whether the account may register another calendar sync.
func CanAddSync(p Plan, currentCount int64) bool {
	l := LimitsFor(p)
	if !l.CalendarSync {
		return false
	}
	return l.MaxSyncRecords < 0 || currentCount < int64(l.MaxSyncRecords)
}

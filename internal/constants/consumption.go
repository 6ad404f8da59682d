package constants

// ConsumptionStatus is the participant's self-reported alcohol consumption.
type ConsumptionStatus string

const (
	ConsumptionNeverDrank     ConsumptionStatus = "never_drank"
	ConsumptionQuitAlready    ConsumptionStatus = "quit_already"
	ConsumptionAbstainForLent ConsumptionStatus = "abstain_for_lent"
	ConsumptionReduceForLent  ConsumptionStatus = "reduce_for_lent"
)

var ConsumptionStatuses = []ConsumptionStatus{
	ConsumptionNeverDrank,
	ConsumptionQuitAlready,
	ConsumptionAbstainForLent,
	ConsumptionReduceForLent,
}

func (s ConsumptionStatus) Valid() bool {
	for _, v := range ConsumptionStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Qualifies reports whether drinking frequency, intent period and monthly
// expense are meaningful for this status.
func (s ConsumptionStatus) Qualifies() bool {
	return s == ConsumptionAbstainForLent || s == ConsumptionReduceForLent
}

// Labels used in exports and dashboards.
var ConsumptionLabels = map[ConsumptionStatus]string{
	ConsumptionNeverDrank:     "ไม่เคยดื่ม",
	ConsumptionQuitAlready:    "เลิกดื่มแล้ว",
	ConsumptionAbstainForLent: "งดดื่มตลอดเข้าพรรษา",
	ConsumptionReduceForLent:  "ลดการดื่ม",
}

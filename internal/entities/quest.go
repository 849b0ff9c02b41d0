package entities

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

// Quest statuses. COMPLETED and FAILED are terminal.
const (
	QuestActive    QuestStatus = "ACTIVE"
	QuestCompleted QuestStatus = "COMPLETED"
	QuestFailed    QuestStatus = "FAILED"
)

// QuestObjective is a counted goal within a quest.
type QuestObjective struct {
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	TargetCount  int    `json:"target_count"`
	CurrentCount int    `json:"current_count"`
	Complete     bool   `json:"complete"`
}

// Advance increments the counter and returns true the moment the
// objective first completes.
func (o *QuestObjective) Advance(delta int) bool {
	if o.Complete {
		return false
	}
	o.CurrentCount += delta
	if o.CurrentCount >= o.TargetCount {
		o.Complete = true
		return true
	}
	return false
}

// QuestRewards is the payout for a completed quest.
type QuestRewards struct {
	Gold  int      `json:"gold"`
	XP    int      `json:"xp"`
	Items []string `json:"items,omitempty"`
}

// Quest is a tracked goal with ordered objectives.
type Quest struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Status        QuestStatus      `json:"status"`
	Objectives    []QuestObjective `json:"objectives"`
	Rewards       QuestRewards     `json:"rewards"`
	NarrativeHook string           `json:"narrative_hook,omitempty"`
}

// CheckCompletion marks the quest COMPLETED when every objective is
// complete; terminal states never revert.
func (q *Quest) CheckCompletion() bool {
	if q.Status != QuestActive {
		return q.Status == QuestCompleted
	}
	for i := range q.Objectives {
		if !q.Objectives[i].Complete {
			return false
		}
	}
	q.Status = QuestCompleted
	return true
}

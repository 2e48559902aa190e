package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Goal{},
		&GoalMember{},
		&GoalVote{},
		&Tip{},
		&TipVote{},
		&SuccessStory{},
		&ChatMessage{},
	}
}

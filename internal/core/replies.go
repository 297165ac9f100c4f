package core

// ReplySelector maps (category, confidence) to one of three canned replies
// per category. Selection is pure and total: unknown categories use the
// unproductive table and out-of-range confidence falls to the last entry.
type ReplySelector struct {
	replies map[Category][]string
}

// NewReplySelector creates a selector over the canned reply tables
func NewReplySelector(productive, unproductive []string) *ReplySelector {
	return &ReplySelector{
		replies: map[Category][]string{
			CategoryProductive:   productive,
			CategoryUnproductive: unproductive,
		},
	}
}

// Select returns the canned reply for the category and confidence tier.
// Confidence above 0.8 gets the most assertive variant, above 0.6 the
// middle one, anything else the request for more detail.
func (rs *ReplySelector) Select(category Category, confidence float64) string {
	table, ok := rs.replies[category]
	if !ok || len(table) == 0 {
		table = rs.replies[CategoryUnproductive]
	}
	if len(table) == 0 {
		return ""
	}

	idx := 2
	switch {
	case confidence > 0.8:
		idx = 0
	case confidence > 0.6:
		idx = 1
	}
	if idx >= len(table) {
		idx = len(table) - 1
	}
	return table[idx]
}

package partnership

// Context scopes every query to a user and their linked partner, if any.
// A query must never return or aggregate records outside MemberIDs().
type Context struct {
	UserID    int64  `json:"userId"`
	PartnerID *int64 `json:"partnerId,omitempty"`
	Active    bool   `json:"active"`
}

// Solo returns a context for a user with no linked partner.
func Solo(userID int64) Context {
	return Context{UserID: userID}
}

// MemberIDs returns the identifier set the query is scoped to. An inactive
// partnership contributes only the user's own id.
func (c Context) MemberIDs() []int64 {
	if c.PartnerID != nil && c.Active {
		return []int64{c.UserID, *c.PartnerID}
	}
	return []int64{c.UserID}
}

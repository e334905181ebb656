package guests

// Guest is one row of a guest list.
type Guest struct {
	Name     string `json:"name"`
	RSVPLink string `json:"rsvp_link,omitempty"` // overrides the event link when set
	Note     string `json:"note,omitempty"`
}

package api

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/youruser/invitecard/internal/invitation"
)

// invitationForm is the request schema shared by the HTML form and the JSON
// endpoint. The optional background file is read separately.
// "required" rejects a field that is present but empty, not only a missing
// one: a card with a blank guest or RSVP link is refused with 400.
type invitationForm struct {
	Host     string `form:"host" json:"host" binding:"required"`
	Event    string `form:"event" json:"event" binding:"required"`
	Date     string `form:"date" json:"date" binding:"required"`
	Time     string `form:"time" json:"time" binding:"required"`
	Venue    string `form:"venue" json:"venue" binding:"required"`
	Guest    string `form:"guest" json:"guest" binding:"required"`
	RSVPLink string `form:"rsvp_link" json:"rsvp_link" binding:"required"`
}

func (f invitationForm) request() invitation.Request {
	return invitation.Request{
		Host:     f.Host,
		Event:    f.Event,
		Date:     f.Date,
		Time:     f.Time,
		Venue:    f.Venue,
		Guest:    f.Guest,
		RSVPLink: f.RSVPLink,
	}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// fieldErrors reports the failed fields of a validation error by their
// form names. ok is false for errors that are not validation failures.
func fieldErrors(err error) (fields []fieldError, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	t := reflect.TypeOf(invitationForm{})
	for _, fe := range verrs {
		name := fe.Field()
		if sf, found := t.FieldByName(fe.StructField()); found {
			name = sf.Tag.Get("form")
		}
		fields = append(fields, fieldError{Field: name, Rule: fe.Tag()})
	}
	return fields, true
}

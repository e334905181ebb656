package guests

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGuestList(t *testing.T) {
	in := "\ufeffGuest,RSVP,Note\n" +
		"Bob,,\n" +
		"Carol / Dave,https://rsvp.example/cd,plus one\n" +
		"-,,\n" +
		",https://rsvp.example/nobody,\n" +
		"Erin\n"

	gs, err := ReadGuestList(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Guest{
		{Name: "Bob"},
		{Name: "Carol", RSVPLink: "https://rsvp.example/cd", Note: "plus one"},
		{Name: "Dave", RSVPLink: "https://rsvp.example/cd", Note: "plus one"},
		{Name: "Erin"},
	}, gs)
}

func TestReadGuestList_Errors(t *testing.T) {
	_, err := ReadGuestList(strings.NewReader(""))
	assert.ErrorContains(t, err, "no header")

	_, err = ReadGuestList(strings.NewReader("email,phone\nbob@example.com,1\n"))
	assert.ErrorContains(t, err, "no guest column")

	_, err = ReadGuestList(strings.NewReader("name\n\"unterminated\n"))
	assert.Error(t, err)
}

func TestLoadGuestList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guests.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nBob\nCarol\n"), 0o644))

	gs, err := LoadGuestList(path)
	require.NoError(t, err)
	assert.Len(t, gs, 2)

	_, err = LoadGuestList(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

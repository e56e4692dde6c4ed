// ABOUTME: Contact presentation helpers
// ABOUTME: Display name, initials and avatar colour derived from contact fields
package models

import (
	"strings"
	"unicode/utf8"
)

const (
	// UnnamedContact is shown for a contact with no name and no email.
	UnnamedContact = "Unnamed Contact"

	// UnknownContact is shown where a related contact was not embedded.
	UnknownContact = "Unknown Contact"

	// NoInitials is the avatar text when neither name part is set.
	NoInitials = "?"
)

// AvatarPalette is indexed by the first character of a record id.
var AvatarPalette = [8]string{
	"bg-red-500",
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-purple-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-orange-500",
}

// DisplayName joins first and last name, falling back to email and then to UnnamedContact.
func (c Contact) DisplayName() string {
	var parts []string
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	if name := strings.Join(parts, " "); name != "" {
		return name
	}
	if c.Email != "" {
		return c.Email
	}
	return UnnamedContact
}

// Initials returns the upper-cased first letters of first and last name.
func (c Contact) Initials() string {
	var b strings.Builder
	if r, _ := utf8.DecodeRuneInString(c.FirstName); r != utf8.RuneError {
		b.WriteRune(r)
	}
	if r, _ := utf8.DecodeRuneInString(c.LastName); r != utf8.RuneError {
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return NoInitials
	}
	return strings.ToUpper(b.String())
}

// AvatarColor picks a palette entry from the contact id.
func (c Contact) AvatarColor() string {
	return AvatarColorFor(c.ID.String())
}

// AvatarColorFor maps an id to a palette entry using only the code of its first
// character, so ids sharing that code modulo 8 share a colour. An empty id maps
// to the first entry.
func AvatarColorFor(id string) string {
	r, _ := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError {
		return AvatarPalette[0]
	}
	return AvatarPalette[int(r)%len(AvatarPalette)]
}

// RelatedContactName is the display name of an embedded contact, or UnknownContact.
func RelatedContactName(r Related[Contact]) string {
	c, ok := r.Get()
	if !ok {
		return UnknownContact
	}
	return c.DisplayName()
}

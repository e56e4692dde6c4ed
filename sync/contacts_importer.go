// ABOUTME: Google Contacts API importer
// ABOUTME: Converts People API connections into contacts and imports them with email deduplication
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
	"google.golang.org/api/people/v1"
)

// SourceGoogleContacts marks contacts created by the importer.
const SourceGoogleContacts = "Google Contacts"

// ContactStore is the part of db.Store the importer writes to.
type ContactStore interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
	CreateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
	UpdateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
}

// ImportResult counts what happened to each fetched connection.
type ImportResult struct {
	Fetched int
	Created int
	Updated int
	Skipped int
	Failed  int
}

type ContactsImporter struct {
	store   ContactStore
	userID  uuid.UUID
	logger  *log.Logger
	matcher *ContactMatcher
}

func NewContactsImporter(store ContactStore, userID uuid.UUID, logger *log.Logger) *ContactsImporter {
	return &ContactsImporter{
		store:  store,
		userID: userID,
		logger: logger,
	}
}

// Import fetches every page from source and imports each connection.
func (ci *ContactsImporter) Import(ctx context.Context, source PeopleSource) (*ImportResult, error) {
	existing, err := ci.store.ListContacts(ctx, ci.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing contacts: %w", err)
	}
	ci.matcher = NewContactMatcher(existing)

	result := &ImportResult{}
	pageToken := ""
	for {
		persons, next, err := source.Connections(ctx, pageToken)
		if err != nil {
			return result, err
		}

		result.Fetched += len(persons)
		for _, person := range persons {
			ci.importPerson(ctx, person, result)
		}

		ci.logger.Debug("imported page", "fetched", result.Fetched, "created", result.Created)
		if next == "" {
			break
		}
		pageToken = next
	}

	return result, nil
}

func (ci *ContactsImporter) importPerson(ctx context.Context, person *people.Person, result *ImportResult) {
	contact := ConvertPerson(person)
	if contact == nil {
		result.Skipped++
		return
	}

	created, err := ci.ImportContact(ctx, contact)
	switch {
	case err != nil:
		result.Failed++
		ci.logger.Warn("failed to import contact", "resource", person.ResourceName, "name", contact.DisplayName(), "err", err)
	case created:
		result.Created++
	default:
		result.Updated++
	}
}

// ImportContact creates contact, or fills the blank fields of the existing
// contact with the same email. It reports whether a new contact was created.
func (ci *ContactsImporter) ImportContact(ctx context.Context, contact *models.Contact) (bool, error) {
	if ci.matcher == nil {
		existing, err := ci.store.ListContacts(ctx, ci.userID)
		if err != nil {
			return false, fmt.Errorf("failed to load existing contacts: %w", err)
		}
		ci.matcher = NewContactMatcher(existing)
	}

	if existing, found := ci.matcher.FindMatch(contact.Email); found {
		return false, ci.mergeContact(ctx, existing, contact)
	}

	if err := contact.Validate(); err != nil {
		return false, err
	}
	if err := ci.store.CreateContact(ctx, ci.userID, contact); err != nil {
		return false, fmt.Errorf("failed to create contact: %w", err)
	}

	// Add to matcher to prevent duplicates within the same import session
	ci.matcher.AddContact(contact)
	return true, nil
}

type fieldFill struct {
	dst *string
	src string
}

// mergeContact only fills fields the existing contact leaves empty.
func (ci *ContactsImporter) mergeContact(ctx context.Context, existing, incoming *models.Contact) error {
	updated := false
	for _, f := range []fieldFill{
		{&existing.FirstName, incoming.FirstName},
		{&existing.LastName, incoming.LastName},
		{&existing.Phone, incoming.Phone},
		{&existing.Company, incoming.Company},
		{&existing.RoleTitle, incoming.RoleTitle},
		{&existing.Notes, incoming.Notes},
		{&existing.Website, incoming.Website},
		{&existing.Address, incoming.Address},
	} {
		if *f.dst == "" && f.src != "" {
			*f.dst = f.src
			updated = true
		}
	}
	if existing.Birthday == nil && incoming.Birthday != nil {
		existing.Birthday = incoming.Birthday
		updated = true
	}

	if !updated {
		return nil
	}
	if err := existing.Validate(); err != nil {
		return err
	}
	if err := ci.store.UpdateContact(ctx, ci.userID, existing); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// ConvertPerson maps a People API person to a contact. It returns nil when
// the person has neither a name nor an email.
func ConvertPerson(person *people.Person) *models.Contact {
	c := &models.Contact{Source: SourceGoogleContacts}

	if name := primaryName(person.Names); name != nil {
		c.FirstName = strings.TrimSpace(name.GivenName)
		c.LastName = strings.TrimSpace(name.FamilyName)
		if c.FirstName == "" && c.LastName == "" {
			c.FirstName = strings.TrimSpace(name.DisplayName)
		}
	}

	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if c.Email == "" {
			c.Email = strings.TrimSpace(email.Value)
		}
		if email.Metadata != nil && email.Metadata.Primary {
			c.Email = strings.TrimSpace(email.Value)
			break
		}
	}

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		if c.Phone == "" {
			c.Phone = phone.Value
		}
		if phone.Metadata != nil && phone.Metadata.Primary {
			c.Phone = phone.Value
			break
		}
	}

	if len(person.Organizations) > 0 {
		c.Company = person.Organizations[0].Name
		c.RoleTitle = person.Organizations[0].Title
	}
	if len(person.Biographies) > 0 {
		c.Notes = person.Biographies[0].Value
	}
	for _, u := range person.Urls {
		if strings.Contains(u.Value, "://") {
			c.Website = u.Value
			break
		}
	}
	if len(person.Addresses) > 0 {
		c.Address = person.Addresses[0].FormattedValue
	}
	c.Birthday = birthday(person.Birthdays)

	if c.FirstName == "" && c.LastName == "" && c.Email == "" {
		return nil
	}
	return c
}

func primaryName(names []*people.Name) *people.Name {
	for _, n := range names {
		if n.Metadata != nil && n.Metadata.Primary {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return nil
}

// birthday ignores dates without a year.
func birthday(birthdays []*people.Birthday) *time.Time {
	for _, b := range birthdays {
		if b.Date == nil || b.Date.Year == 0 || b.Date.Month == 0 || b.Date.Day == 0 {
			continue
		}
		t := time.Date(int(b.Date.Year), time.Month(b.Date.Month), int(b.Date.Day), 0, 0, 0, 0, time.UTC)
		return &t
	}
	return nil
}

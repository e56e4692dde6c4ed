// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for listing, adding, updating, and deleting contacts
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

// contactFlags binds the editable contact fields to fs.
type contactFlags struct {
	firstName, lastName, email, phone, company, title, notes, linkedin, website, birthday *string
}

func bindContactFlags(fs *flag.FlagSet) contactFlags {
	return contactFlags{
		firstName: fs.String("first-name", "", "First name"),
		lastName:  fs.String("last-name", "", "Last name"),
		email:     fs.String("email", "", "Email address"),
		phone:     fs.String("phone", "", "Phone number"),
		company:   fs.String("company", "", "Company name"),
		title:     fs.String("title", "", "Job title"),
		notes:     fs.String("notes", "", "Notes about the contact"),
		linkedin:  fs.String("linkedin", "", "LinkedIn profile URL"),
		website:   fs.String("website", "", "Website URL"),
		birthday:  fs.String("birthday", "", "Birthday (YYYY-MM-DD)"),
	}
}

// apply copies every flag that was set on the command line onto c.
func (f contactFlags) apply(fs *flag.FlagSet, c *models.Contact) error {
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	for name, dst := range map[string]*string{
		"first-name": &c.FirstName,
		"last-name":  &c.LastName,
		"email":      &c.Email,
		"phone":      &c.Phone,
		"company":    &c.Company,
		"title":      &c.RoleTitle,
		"notes":      &c.Notes,
		"linkedin":   &c.LinkedInURL,
		"website":    &c.Website,
	} {
		if set[name] {
			*dst = strings.TrimSpace(fs.Lookup(name).Value.String())
		}
	}

	if set["birthday"] {
		raw := strings.TrimSpace(*f.birthday)
		if raw == "" {
			c.Birthday = nil
			return nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --birthday (want YYYY-MM-DD): %w", err)
		}
		c.Birthday = &t
	}
	return nil
}

// AddContactCommand adds a new contact.
func AddContactCommand(app *App, args []string) error {
	fs := app.flagSet("add-contact")
	flags := bindContactFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	contact := &models.Contact{}
	if err := flags.apply(fs, contact); err != nil {
		return err
	}
	if err := contact.Validate(); err != nil {
		return err
	}

	if err := app.Store.CreateContact(context.Background(), app.UserID, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	app.printf("✓ Contact created: %s (ID: %s)\n", contact.DisplayName(), contact.ID)
	if contact.Email != "" {
		app.printf("  Email: %s\n", contact.Email)
	}
	if contact.Phone != "" {
		app.printf("  Phone: %s\n", contact.Phone)
	}
	if contact.Company != "" {
		app.printf("  Company: %s\n", contact.Company)
	}

	return nil
}

// ListContactsCommand lists contacts through the search pipeline.
func ListContactsCommand(app *App, args []string) error {
	fs := app.flagSet("list-contacts")
	query := fs.String("query", "", "Search by name, email, or company")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contacts, err := app.Store.ListContacts(context.Background(), app.UserID)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	view := listview.Contacts(contacts, *query)
	if len(view.Visible) == 0 {
		app.printf("No contacts found\n")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tCOMPANY\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------\t--")

	shown := view.Visible
	if *limit > 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}
	for _, c := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.DisplayName(), dash(c.Email), dash(c.Phone), dash(c.Company), shortID(c.ID))
	}
	_ = w.Flush()

	app.printf("\nShowing %d of %d contact(s)\n", len(shown), view.Total)
	return nil
}

// UpdateContactCommand updates an existing contact. Only flags given on the
// command line change; pass an empty value to clear a field.
func UpdateContactCommand(app *App, args []string) error {
	fs := app.flagSet("update-contact")
	flags := bindContactFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	contactID, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}

	ctx := context.Background()
	existing, err := app.Store.GetContact(ctx, app.UserID, contactID)
	if err != nil {
		return contactNotFound(contactID.String(), err)
	}

	if err := flags.apply(fs, existing); err != nil {
		return err
	}
	if err := existing.Validate(); err != nil {
		return err
	}

	if err := app.Store.UpdateContact(ctx, app.UserID, existing); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	app.printf("✓ Contact updated: %s (ID: %s)\n", existing.DisplayName(), contactID)
	return nil
}

// DeleteContactCommand deletes a contact along with its opportunities and
// interactions, after confirmation.
func DeleteContactCommand(app *App, args []string) error {
	fs := app.flagSet("delete-contact")
	yes := fs.Bool("yes", false, "Delete without asking for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	contactID, err := positionalID(fs, "contact")
	if err != nil {
		return err
	}

	ctx := context.Background()
	contact, err := app.Store.GetContact(ctx, app.UserID, contactID)
	if err != nil {
		return contactNotFound(contactID.String(), err)
	}

	if !*yes {
		opps, err := app.Store.ListOpportunitiesForContact(ctx, app.UserID, contactID)
		if err != nil {
			return fmt.Errorf("failed to list opportunities: %w", err)
		}
		ok, err := app.confirm(fmt.Sprintf("Delete %s and %d opportunities?", contact.DisplayName(), len(opps)))
		if err != nil {
			return err
		}
		if !ok {
			app.printf("Cancelled\n")
			return nil
		}
	}

	if err := app.Store.DeleteContact(ctx, app.UserID, contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	app.printf("✓ Contact deleted: %s\n", contact.DisplayName())
	return nil
}

func contactNotFound(id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("contact not found: %s", id)
	}
	return fmt.Errorf("failed to load contact: %w", err)
}

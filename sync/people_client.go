// ABOUTME: Google People API client for contacts sync
// ABOUTME: Wraps the People service behind a paging interface the importer consumes
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const personFields = "names,emailAddresses,phoneNumbers,organizations,biographies,urls,birthdays,addresses"

// PeopleSource pages through the user's Google connections.
type PeopleSource interface {
	Connections(ctx context.Context, pageToken string) (persons []*people.Person, nextPageToken string, err error)
}

type peopleService struct {
	service *people.Service
}

// NewPeopleClient creates a People API source authorised by token.
func NewPeopleClient(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (PeopleSource, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	service, err := people.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &peopleService{service: service}, nil
}

func (p *peopleService) Connections(ctx context.Context, pageToken string) ([]*people.Person, string, error) {
	call := p.service.People.Connections.List("people/me").
		PageSize(1000).
		PersonFields(personFields).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if response == nil {
		return nil, "", nil
	}
	return response.Connections, response.NextPageToken, nil
}

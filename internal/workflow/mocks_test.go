package workflow

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"lead-pipeline/internal/apollo"
)

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) SearchPeople(ctx context.Context, filters apollo.PeopleSearchFilters, page, perPage int) (*apollo.PeopleSearchResult, error) {
	args := m.Called(ctx, filters, page, perPage)
	res, _ := args.Get(0).(*apollo.PeopleSearchResult)
	return res, args.Error(1)
}

type mockEnricher struct{ mock.Mock }

func (m *mockEnricher) BulkMatchPeople(ctx context.Context, details []apollo.MatchDetails, opts apollo.BulkMatchOptions) (*apollo.BulkMatchResult, error) {
	args := m.Called(ctx, details, opts)
	res, _ := args.Get(0).(*apollo.BulkMatchResult)
	return res, args.Error(1)
}

type mockContacts struct{ mock.Mock }

func (m *mockContacts) CreateContact(ctx context.Context, in apollo.ContactInput) (*apollo.Contact, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*apollo.Contact)
	return res, args.Error(1)
}

type mockSequences struct{ mock.Mock }

func (m *mockSequences) AddContactsToSequence(ctx context.Context, sequenceID string, contactIDs []string, emailAccountID string) (*apollo.SequenceEnrollment, error) {
	args := m.Called(ctx, sequenceID, contactIDs, emailAccountID)
	res, _ := args.Get(0).(*apollo.SequenceEnrollment)
	return res, args.Error(1)
}

type stageRecord struct {
	stage             string
	succeeded, failed int
}

type fakeRecorder struct {
	runs   []string
	stages []stageRecord
}

func (r *fakeRecorder) RecordRun(_ context.Context, status string, _ time.Duration) {
	r.runs = append(r.runs, status)
}

func (r *fakeRecorder) RecordStage(_ context.Context, stage string, _ time.Duration, succeeded, failed int) {
	r.stages = append(r.stages, stageRecord{stage: stage, succeeded: succeeded, failed: failed})
}

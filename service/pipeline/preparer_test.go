package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	datamodel "inbox-pilot/data/model"
	"inbox-pilot/service/completion"
)

func TestPreparerPrepare(t *testing.T) {
	fake := &fakeCompletion{response: `{
		"category": "question",
		"summary": "Asks about the project deadline",
		"keyPoints": ["deadline unclear"],
		"urgency": "high",
		"draftReply": {"subject": "Re: Deadline", "body": "The deadline is Friday.", "tone": "professional"},
		"reasoning": "direct question from a colleague",
		"confidenceScore": 85,
		"priority": 70
	}`}
	preparer := NewPreparer(fake)

	suggestion, err := preparer.Prepare(context.Background(), &datamodel.Email{
		MessageID:   "m1",
		FromAddress: "colleague@example.com",
		Subject:     "Deadline?",
		Body:        "When is the project due?",
	})
	require.NoError(t, err)

	assert.Equal(t, datamodel.CategoryQuestion, suggestion.Category)
	assert.Equal(t, datamodel.UrgencyHigh, suggestion.Urgency)
	assert.Equal(t, 85, suggestion.ConfidenceScore)
	require.NotNil(t, suggestion.DraftReply)
	assert.Equal(t, "The deadline is Friday.", suggestion.DraftReply.Body)
}

func TestPreparerFailsClosed(t *testing.T) {
	fake := &fakeCompletion{err: completion.ErrUnreachable}
	preparer := NewPreparer(fake)

	suggestion, err := preparer.Prepare(context.Background(), &datamodel.Email{MessageID: "m2"})

	// 准备失败不允许造空建议，错误原样向上传
	require.Error(t, err)
	assert.ErrorIs(t, err, completion.ErrUnreachable)
	assert.Nil(t, suggestion)
}

func TestPreparerClampsScores(t *testing.T) {
	fake := &fakeCompletion{response: `{
		"category": "information",
		"summary": "s",
		"urgency": "low",
		"reasoning": "r",
		"confidenceScore": 150,
		"priority": -20
	}`}
	preparer := NewPreparer(fake)

	suggestion, err := preparer.Prepare(context.Background(), &datamodel.Email{MessageID: "m3"})
	require.NoError(t, err)

	assert.Equal(t, 100, suggestion.ConfidenceScore)
	assert.Equal(t, 0, suggestion.Priority)
}

func TestPreparerDefaultsUnknownEnums(t *testing.T) {
	fake := &fakeCompletion{response: `{
		"category": "banana",
		"summary": "",
		"urgency": "sometime",
		"reasoning": "r",
		"confidenceScore": 50,
		"priority": 50
	}`}
	preparer := NewPreparer(fake)

	suggestion, err := preparer.Prepare(context.Background(), &datamodel.Email{MessageID: "m4"})
	require.NoError(t, err)

	assert.Equal(t, datamodel.CategoryInformation, suggestion.Category)
	assert.Equal(t, datamodel.UrgencyMedium, suggestion.Urgency)
	assert.Equal(t, "Email received", suggestion.Summary)
}

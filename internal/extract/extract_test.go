package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biotrack/biotrack-cli/pkg/anthropic"
)

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:         "msg_test",
		Model:      "claude-sonnet-4-5-20250929",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}

func TestAnalyze_ParsesReadings(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(
		`[{"metricName": "Vitamin D", "value": 45.2, "unit": "ng/mL", "testDate": "2024-01-10"},
		  {"metricName": "HbA1c", "value": "5.7", "unit": "%", "testDate": ""}]`,
	), nil)

	a := NewAnalyzer(mc, Opts{})
	readings, err := a.Analyze(context.Background(), Document{
		Name:      "report.pdf",
		MediaType: "application/pdf",
		Data:      []byte("%PDF"),
	})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "Vitamin D", readings[0].MetricName)
	assert.Equal(t, 45.2, readings[0].Value)
	assert.Equal(t, "ng/mL", readings[0].Unit)
	assert.Equal(t, "2024-01-10", readings[0].TestDate)
	assert.Equal(t, "5.7", readings[1].Value)

	mc.AssertExpectations(t)
}

func TestAnalyze_SendsDocumentAttachment(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 &&
			len(req.Messages[0].Attachments) == 1 &&
			req.Messages[0].Attachments[0].MediaType == "image/png"
	})).Return(textResponse(`[{"metricName": "Glucose", "value": 92}]`), nil)

	a := NewAnalyzer(mc, Opts{})
	_, err := a.Analyze(context.Background(), Document{
		Name:      "report.png",
		MediaType: "image/png",
		Data:      []byte{0x89, 0x50},
	})
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestAnalyze_UnreadableDocument(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("UNREADABLE_DOCUMENT"), nil)

	a := NewAnalyzer(mc, Opts{})
	_, err := a.Analyze(context.Background(), Document{Name: "blur.jpg", MediaType: "image/jpeg"})
	assert.True(t, eris.Is(err, ErrUnreadableDocument))
}

func TestAnalyze_EmptyArrayIsNoResults(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("[]"), nil)

	a := NewAnalyzer(mc, Opts{})
	_, err := a.Analyze(context.Background(), Document{Name: "note.pdf", MediaType: "application/pdf"})
	assert.True(t, eris.Is(err, ErrNoResults))
}

func TestAnalyze_APIErrorWrapped(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("overloaded"))

	a := NewAnalyzer(mc, Opts{})
	_, err := a.Analyze(context.Background(), Document{Name: "report.pdf", MediaType: "application/pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.pdf")
}

func TestAnalyzeAll_ConcatenatesInDocumentOrder(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return string(req.Messages[0].Attachments[0].Data) == "doc-a"
	})).Return(textResponse(`[{"metricName": "Vitamin D", "value": 45.2}]`), nil)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return string(req.Messages[0].Attachments[0].Data) == "doc-b"
	})).Return(textResponse(`[{"metricName": "Glucose", "value": 92}]`), nil)

	a := NewAnalyzer(mc, Opts{})
	readings, err := a.AnalyzeAll(context.Background(), []Document{
		{Name: "a.pdf", MediaType: "application/pdf", Data: []byte("doc-a")},
		{Name: "b.pdf", MediaType: "application/pdf", Data: []byte("doc-b")},
	})
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "Vitamin D", readings[0].MetricName)
	assert.Equal(t, "Glucose", readings[1].MetricName)
}

func TestAnalyzeAll_NoResultsDocumentSkipped(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return string(req.Messages[0].Attachments[0].Data) == "empty"
	})).Return(textResponse("[]"), nil)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return string(req.Messages[0].Attachments[0].Data) == "full"
	})).Return(textResponse(`[{"metricName": "TSH", "value": 2.1}]`), nil)

	a := NewAnalyzer(mc, Opts{})
	readings, err := a.AnalyzeAll(context.Background(), []Document{
		{Name: "empty.pdf", MediaType: "application/pdf", Data: []byte("empty")},
		{Name: "full.pdf", MediaType: "application/pdf", Data: []byte("full")},
	})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "TSH", readings[0].MetricName)
}

func TestAnalyzeAll_Empty(t *testing.T) {
	a := NewAnalyzer(new(anthropic.MockClient), Opts{})
	readings, err := a.AnalyzeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestParseReadings_MarkdownFences(t *testing.T) {
	readings, err := parseReadings("```json\n[{\"metricName\": \"Iron\", \"value\": 80}]\n```")
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Iron", readings[0].MetricName)
}

func TestParseReadings_SurroundingProse(t *testing.T) {
	readings, err := parseReadings(`Here are the results:
[{"metricName": "Ferritin", "value": 30}]
Let me know if you need more.`)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "Ferritin", readings[0].MetricName)
}

func TestParseReadings_NoArray(t *testing.T) {
	_, err := parseReadings("I could not find structured results.")
	assert.True(t, eris.Is(err, ErrNoResults))
}

func TestParseReadings_MalformedJSON(t *testing.T) {
	_, err := parseReadings(`[{"metricName": "Iron", "value": }]`)
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrNoResults))
}

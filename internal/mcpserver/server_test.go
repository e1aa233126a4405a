package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/filtering"
	"github.com/spigell/job-advisor/internal/intent"
	"github.com/spigell/job-advisor/internal/matching"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.New([]catalog.JobRecord{
		{ID: "1", Title: "Go Developer", Field: "IT", Skills: []string{"go", "sql"}, Qualification: "bachelors", Salary: "100000"},
		{ID: "2", Title: "Painter", Field: "Art", Skills: []string{"painting"}, Qualification: "none", Salary: "20000"},
	})
	require.NoError(t, err)

	provider := embedding.NewHashing(0)
	classifier, err := intent.NewClassifier(ctx, provider, intent.DefaultExamples(), 0, nil)
	require.NoError(t, err)

	ranker := matching.NewRanker(matching.NewScorer(provider, 0), []filtering.Filter{filtering.NewMinSalary()}, nil)
	engine, err := dialogue.NewEngine(dialogue.Deps{Classifier: classifier, Ranker: ranker, Catalog: cat})
	require.NoError(t, err)

	return New("job-advisor", "test", Deps{
		Manager: dialogue.NewManager(engine, nil),
		Catalog: cat,
		Ranker:  ranker,
	})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestConversationTools(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.startSession(ctx, call(nil))
	require.NoError(t, err)

	var started sessionReply
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &started))
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, dialogue.Greeting, started.Reply)

	res, err = s.sendMessage(ctx, call(map[string]any{"session_id": started.SessionID, "message": "bye"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var reply sessionReply
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &reply))
	assert.Equal(t, dialogue.Farewell, reply.Reply)
	assert.True(t, reply.Ended)

	res, err = s.sendMessage(ctx, call(map[string]any{"session_id": started.SessionID, "message": "qualify"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unknown session")
}

func TestSendMessageRequiresArguments(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.sendMessage(context.Background(), call(map[string]any{"session_id": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "message")
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.listJobs(context.Background(), call(nil))
	require.NoError(t, err)

	var jobs []catalog.JobRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "Go Developer", jobs[0].Title)
}

func TestMatchJobs(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.matchJobs(context.Background(), call(map[string]any{
		"qualification": "BSc",
		"skills":        "Go, SQL",
		"fields":        "it",
		"min_salary":    "50,000",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var results []matching.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Job.ID)
	assert.Equal(t, 100.0, results[0].Score)
}

func TestMatchJobsShowLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	res, err := s.matchJobs(context.Background(), call(map[string]any{"show": float64(1)}))
	require.NoError(t, err)

	var results []matching.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &results))
	assert.Len(t, results, 1)
}

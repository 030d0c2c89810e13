package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverReturning(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		resp := geminiResponse{
			Candidates: []candidate{
				{Content: content{Parts: []part{{Text: text}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(server *httptest.Server) *Client {
	c := NewClient("test-key", "test-model")
	c.baseURL = server.URL
	return c
}

func TestGeneratePlan(t *testing.T) {
	payload := "```json\n" + `{
		"breakfast": {"items": [{"name": "Oatmeal", "calories": 300}]},
		"lunch": {"items": [{"name": "Chicken", "calories": 450}, {"name": "Rice", "calories": 200}]},
		"dinner": {"items": [{"name": "Fish", "calories": 400}]}
	}` + "\n```"

	server := serverReturning(t, http.StatusOK, payload)
	defer server.Close()

	result, err := testClient(server).GeneratePlan(context.Background(), GenerationRequest{Goal: models.GoalLose})
	require.NoError(t, err)

	assert.Equal(t, 300, result.Breakfast.TotalCalories)
	assert.Equal(t, 650, result.Lunch.TotalCalories)
	assert.Equal(t, "Fish", result.Dinner.Items[0].Name)
}

func TestGenerateMeal_FencedResponseWithChatter(t *testing.T) {
	// Models sometimes wrap the JSON in prose despite the prompt.
	payload := "Sure! Here is your meal:\n```json\n" +
		`{"items": [{"name": "Omelette", "calories": 350}]}` +
		"\n```\nEnjoy!"

	server := serverReturning(t, http.StatusOK, payload)
	defer server.Close()

	meal, err := testClient(server).GenerateMeal(context.Background(), GenerationRequest{}, models.SlotBreakfast)
	require.NoError(t, err)

	require.Len(t, meal.Items, 1)
	assert.Equal(t, "Omelette", meal.Items[0].Name)
	assert.Equal(t, 350, meal.TotalCalories)
	assert.False(t, meal.IsCompleted)
}

func TestGenerateMeal_MalformedJSON(t *testing.T) {
	server := serverReturning(t, http.StatusOK, "this is not json at all")
	defer server.Close()

	_, err := testClient(server).GenerateMeal(context.Background(), GenerationRequest{}, models.SlotLunch)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGeneration, apperrors.CodeOf(err))
}

func TestGenerateMeal_EmptyItems(t *testing.T) {
	server := serverReturning(t, http.StatusOK, `{"items": []}`)
	defer server.Close()

	_, err := testClient(server).GenerateMeal(context.Background(), GenerationRequest{}, models.SlotDinner)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGeneration, apperrors.CodeOf(err))
}

func TestGeneratePlan_APIError(t *testing.T) {
	server := serverReturning(t, http.StatusTooManyRequests, "")
	defer server.Close()

	_, err := testClient(server).GeneratePlan(context.Background(), GenerationRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGeneration, apperrors.CodeOf(err))
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanResponse("noise before {\"a\":1} noise after"))
	assert.Equal(t, `{"a":1}`, cleanResponse(`{"a":1}`))
}

func TestBuildPlanPrompt_CapsExclusions(t *testing.T) {
	req := GenerationRequest{Goal: models.GoalGain}
	for i := 0; i < 30; i++ {
		req.ExcludeItems = append(req.ExcludeItems, "item")
	}

	prompt := NewClient("k", "m").buildPlanPrompt(req)
	assert.Contains(t, prompt, "gain weight")
	// Only the first 20 history items make it into the prompt.
	assert.NotContains(t, prompt, "item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item, item")
}

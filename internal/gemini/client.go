package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fitbalance/fitbalance-backend/internal/models"
	"github.com/fitbalance/fitbalance-backend/pkg/apperrors"
	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GenerationRequest carries the user attributes and exclusion history a
// prompt is built from.
type GenerationRequest struct {
	Height       float64
	Weight       float64
	Age          int
	Gender       string
	Goal         string
	ExcludeItems []string
}

// PlanResult holds the three generated meals of a full daily plan.
type PlanResult struct {
	Breakfast *models.Meal
	Lunch     *models.Meal
	Dinner    *models.Meal
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

type geminiRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type mealPayload struct {
	Items []models.MealItem `json:"items"`
}

// GeneratePlan asks for a full breakfast/lunch/dinner plan for the user.
func (c *Client) GeneratePlan(ctx context.Context, req GenerationRequest) (*PlanResult, error) {
	response, err := c.generate(ctx, c.buildPlanPrompt(req))
	if err != nil {
		return nil, err
	}
	return c.parsePlanResponse(response)
}

// GenerateMeal asks for a single slot's meal, explicitly excluding items the
// user has already been served in that slot.
func (c *Client) GenerateMeal(ctx context.Context, req GenerationRequest, slot models.Slot) (*models.Meal, error) {
	response, err := c.generate(ctx, c.buildMealPrompt(req, slot))
	if err != nil {
		return nil, err
	}
	return c.parseMealResponse(response)
}

func (c *Client) buildPlanPrompt(req GenerationRequest) string {
	var sb strings.Builder

	sb.WriteString("Create a daily meal plan for a fitness app user.\n\n")
	sb.WriteString("USER PROFILE:\n")
	sb.WriteString(fmt.Sprintf("- Height: %.0f cm\n", req.Height))
	sb.WriteString(fmt.Sprintf("- Weight: %.0f kg\n", req.Weight))
	sb.WriteString(fmt.Sprintf("- Age: %d\n", req.Age))
	sb.WriteString(fmt.Sprintf("- Gender: %s\n", req.Gender))
	sb.WriteString(fmt.Sprintf("- Goal: %s\n", goalText(req.Goal)))

	if len(req.ExcludeItems) > 0 {
		exclusions := req.ExcludeItems
		if len(exclusions) > 20 {
			exclusions = exclusions[:20]
		}
		sb.WriteString(fmt.Sprintf(
			"\nFoods the user has eaten recently: %s. Avoid repeating these and suggest DIFFERENT foods of a similar style.\n",
			strings.Join(exclusions, ", ")))
	}

	sb.WriteString(`
Respond ONLY in the following JSON format, with no extra explanation:
{
  "breakfast": {
    "items": [
      {"name": "Food name", "calories": calorie_count}
    ]
  },
  "lunch": {
    "items": [
      {"name": "Food name", "calories": calorie_count}
    ]
  },
  "dinner": {
    "items": [
      {"name": "Food name", "calories": calorie_count}
    ]
  }
}

Rules:
- Suggest 3-5 foods per meal
- Use realistic calorie values
- Respond only with JSON
`)

	return sb.String()
}

func (c *Client) buildMealPrompt(req GenerationRequest, slot models.Slot) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create a %s meal for a fitness app user.\n\n", slot))
	sb.WriteString("USER PROFILE:\n")
	sb.WriteString(fmt.Sprintf("- Height: %.0f cm\n", req.Height))
	sb.WriteString(fmt.Sprintf("- Weight: %.0f kg\n", req.Weight))
	sb.WriteString(fmt.Sprintf("- Age: %d\n", req.Age))
	sb.WriteString(fmt.Sprintf("- Gender: %s\n", req.Gender))
	sb.WriteString(fmt.Sprintf("- Goal: %s\n", goalText(req.Goal)))

	if len(req.ExcludeItems) > 0 {
		sb.WriteString(fmt.Sprintf(
			"\nFoods the user has already been served for this meal: %s. Suggest DIFFERENT foods of a similar style.\n",
			strings.Join(req.ExcludeItems, ", ")))
	}

	sb.WriteString(`
Respond ONLY in the following JSON format, with no extra explanation:
{
  "items": [
    {"name": "Food name", "calories": calorie_count}
  ]
}

Rules:
- Suggest 3-5 foods
- Use realistic calorie values
- Offer options DIFFERENT from the previous foods
- Respond only with JSON
`)

	return sb.String()
}

func goalText(goal string) string {
	switch goal {
	case models.GoalGain:
		return "gain weight"
	case models.GoalLose:
		return "lose weight"
	case models.GoalMaintain:
		return "maintain current weight"
	default:
		return "eat healthily"
	}
}

// generate performs one completion call and returns the raw response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	requestBody := geminiRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", apperrors.Generation("failed to marshal generation request", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", apperrors.Generation("failed to create generation request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.Generation("generation request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Gemini API returned non-OK status")
		return "", apperrors.Generation(fmt.Sprintf("generation API returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Generation("failed to read generation response", err)
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", apperrors.Generation("failed to decode generation response", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.Generation("no candidates in generation response", nil)
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}

// cleanResponse strips markdown code fences and trims the text down to the
// outermost JSON object.
func cleanResponse(response string) string {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end != -1 && end > start {
		response = response[start : end+1]
	}

	return response
}

func (c *Client) parsePlanResponse(response string) (*PlanResult, error) {
	cleaned := cleanResponse(response)

	var payload struct {
		Breakfast *mealPayload `json:"breakfast"`
		Lunch     *mealPayload `json:"lunch"`
		Dinner    *mealPayload `json:"dinner"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		log.WithError(err).Warn("Failed to parse meal plan response")
		return nil, apperrors.Generation("could not parse generated meal plan", err)
	}

	breakfast, err := mealFromPayload(payload.Breakfast)
	if err != nil {
		return nil, err
	}
	lunch, err := mealFromPayload(payload.Lunch)
	if err != nil {
		return nil, err
	}
	dinner, err := mealFromPayload(payload.Dinner)
	if err != nil {
		return nil, err
	}

	return &PlanResult{Breakfast: breakfast, Lunch: lunch, Dinner: dinner}, nil
}

func (c *Client) parseMealResponse(response string) (*models.Meal, error) {
	cleaned := cleanResponse(response)

	var payload mealPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		log.WithError(err).Warn("Failed to parse single meal response")
		return nil, apperrors.Generation("could not parse generated meal", err)
	}

	return mealFromPayload(&payload)
}

func mealFromPayload(payload *mealPayload) (*models.Meal, error) {
	if payload == nil || len(payload.Items) == 0 {
		return nil, apperrors.Generation("generated meal has no items", nil)
	}

	meal := &models.Meal{Items: payload.Items}
	meal.TotalCalories = meal.SumItems()
	return meal, nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestRequest is the request body for POST /api/logs/suggest.
type suggestRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// suggestionResponse is the structured estimate returned by the AI, shaped so
// the client can post it straight to /api/logs.
// Confidence is 1-5 indicating how accurate the estimate is.
type suggestionResponse struct {
	Content    string  `json:"content"`
	Qty        float64 `json:"qty"`
	Uom        string  `json:"uom"`
	Calories   int     `json:"calories"`
	Confidence int     `json:"confidence"`
}

/* ─── OpenAI prompt constants ────────────────────────────────────────── */

const mealSystemPrompt = `You are a nutrition assistant. Parse the meal description and return a JSON object with:
- "content" (string, cleaned up title case)
- "qty" (number)
- "uom" (one of: each, g, ml, serving)
- "calories" (integer, total for the full quantity)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

// exerciseSystemPromptTemplate takes the user's stored biometrics so the
// estimate can account for body size.
const exerciseSystemPromptTemplate = `You are a fitness calorie-burn estimator. The user is:
- Gender: %s
- Age: %d years
- Weight: %.1f kg
- Height: %.0f cm
- Activity level: %s

Parse the exercise description and estimate calories burned. Return a JSON object with:
- "content" (string, cleaned up title case)
- "qty" (number, duration or distance)
- "uom" (one of: minutes, km, miles, each)
- "calories" (integer, estimated calories burned)
- "confidence" (integer 1-5: 5=well-studied exercise with known MET values, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unusual activities. Only return {"error": "unrecognized"} if the input is not an exercise at all.
Return only valid JSON, no explanation.`

// exerciseSystemPromptFallback is used when the user has no profile yet.
const exerciseSystemPromptFallback = `You are a fitness calorie-burn estimator. No body stats are available, use averages for an adult.

Parse the exercise description and estimate calories burned. Return a JSON object with:
- "content" (string, cleaned up title case)
- "qty" (number, duration or distance)
- "uom" (one of: minutes, km, miles, each)
- "calories" (integer, estimated calories burned)
- "confidence" (integer 1-5: 5=well-studied exercise with known MET values, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unusual activities. Only return {"error": "unrecognized"} if the input is not an exercise at all.
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

var openAIClient = &http.Client{Timeout: 15 * time.Second}

// callOpenAI sends a chat completions request and returns the content of the
// first choice.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          "gpt-4o-mini",
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := openAIClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestLogEntry handles POST /api/logs/suggest: turns a free-text meal or
// exercise description into content and a calorie estimate.
func (h *Handler) suggestLogEntry(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		apiError(c, http.StatusBadRequest, "description is required")
		return
	}

	systemPrompt := mealSystemPrompt
	if t, _ := normalizeLogType(req.Type); t == store.LogTypeExercise {
		systemPrompt = h.buildExercisePrompt(c, c.GetInt("user_id"))
	}

	content, err := callOpenAI(c.Request.Context(), []openAIMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: req.Description},
	}, h.openAIBaseURL)
	if err != nil {
		log.Errorf("[suggest] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Errorf("[suggest] failed to parse OpenAI response: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	var suggestion suggestionResponse
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		log.Errorf("[suggest] failed to parse suggestion JSON: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if suggestion.Content == "" || suggestion.Calories <= 0 {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}

// buildExercisePrompt personalises the exercise prompt from the stored
// profile, falling back to a generic prompt when there is none.
func (h *Handler) buildExercisePrompt(ctx context.Context, userID int) string {
	p, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		return exerciseSystemPromptFallback
	}
	return fmt.Sprintf(exerciseSystemPromptTemplate,
		p.Gender, p.AgeYears, p.WeightKG, p.HeightCM, p.ActivityLevel)
}

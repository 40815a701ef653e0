// Package ai wraps the OpenAI chat-completions API for learning-plan and quiz
// generation. The rest of the application only sees the Generator interface,
// so tests can substitute a stub.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"project/backend/config"
)

// LessonContent is one generated lesson of a learning plan.
type LessonContent struct {
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	TheoryMD     string   `json:"theory_md"`
	Task         string   `json:"task"`
	TaskType     string   `json:"task_type"`
	TimeEstimate int      `json:"time_estimate"`
	ExtraLinks   []string `json:"extra_links"`
}

// QuestionContent is one generated multiple-choice question.
type QuestionContent struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Generator produces learning-plan and quiz content.
type Generator interface {
	GenerateLearningPlan(topic, level string, weeklyHours int) ([]LessonContent, error)
	GenerateQuizQuestions(lessonTitle, theory string, numQuestions int) ([]QuestionContent, error)
}

// Client calls the OpenAI chat-completions endpoint.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.OpenAIKey,
		apiURL: "https://api.openai.com/v1/chat/completions",
		model:  cfg.OpenAIModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateLearningPlan asks the model for a day-by-day plan on the topic.
// The model is instructed to answer with pure JSON; the per-lesson time
// estimate is capped by the weekly commitment.
func (c *Client) GenerateLearningPlan(topic, level string, weeklyHours int) ([]LessonContent, error) {
	prompt := fmt.Sprintf(`Create a learning plan for the topic "%s".
Knowledge level: %s.
Each day must contain:
- A micro-lesson title
- Theory (in Markdown)
- A practical task
- An estimated time in minutes, not exceeding %d
- 2-3 links to additional resources

Answer with JSON only, no explanations.
Format:
[
  {
    "day": int,
    "title": string,
    "theory_md": string,
    "task": string,
    "task_type": "theory"|"practice"|"quiz"|"project",
    "time_estimate": int,
    "extra_links": [string]
  }
]`, topic, level, weeklyHours*60)

	var lessons []LessonContent
	if err := c.complete(prompt, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// GenerateQuizQuestions asks the model for multiple-choice questions covering
// the lesson theory. Long theory is truncated to keep the prompt bounded.
func (c *Client) GenerateQuizQuestions(lessonTitle, theory string, numQuestions int) ([]QuestionContent, error) {
	if len(theory) > 3000 {
		theory = theory[:3000]
	}

	prompt := fmt.Sprintf(`Based on the following theory of the lesson "%s", create %d test questions
to check understanding of the material.

Theory:
%s

Each question must contain:
- The question text
- 4 answer options (A, B, C, D)
- The correct answer (A/B/C/D)
- A short explanation of why the answer is correct

Answer with JSON only, no explanations.
Format:
[
  {
    "question": string,
    "option_a": string,
    "option_b": string,
    "option_c": string,
    "option_d": string,
    "correct_answer": string (A/B/C/D),
    "explanation": string
  }
]`, lessonTitle, numQuestions, theory)

	var questions []QuestionContent
	if err := c.complete(prompt, &questions); err != nil {
		return nil, err
	}

	for i := range questions {
		questions[i].CorrectAnswer = strings.ToUpper(strings.TrimSpace(questions[i].CorrectAnswer))
	}
	return questions, nil
}

func (c *Client) complete(prompt string, out interface{}) error {
	request := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return fmt.Errorf("API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no response choices returned")
	}

	text := stripCodeFences(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse generated JSON: %w", err)
	}
	return nil
}

var (
	fenceOpen  = regexp.MustCompile("^```(?:json)?")
	fenceClose = regexp.MustCompile("```$")
)

// stripCodeFences removes a ```json ... ``` wrapper the model sometimes adds
// despite being told to answer with pure JSON.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

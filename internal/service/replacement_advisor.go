package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

const advisorSystemPrompt = `You help a school office cover lessons of an absent teacher.
Answer with a JSON object {"proposals":[{"description":string,"impact":"low"|"medium"|"high","assignments":[{"lessonId":string,"mode":"substitute"|"merge"|"supervise"|"cancel","teacherId":string,"mergedLessonId":string}]}]}.
Every affected lesson must appear in exactly one assignment of a proposal. Only use teacher ids from the candidates or teachers lists.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AdvisorConfig configures the language-model advisor.
type AdvisorConfig struct {
	APIKey       string
	Model        string
	BaseURL      string
	Timeout      time.Duration
	MaxProposals int
}

// OpenAIAdvisor asks a chat-completion model for extra replacement proposals. Its answers are
// untrusted; the finder re-validates each one.
type OpenAIAdvisor struct {
	client chatCompleter
	cfg    AdvisorConfig
	logger *zap.Logger
}

// NewOpenAIAdvisor builds an advisor backed by the OpenAI API or a compatible endpoint.
func NewOpenAIAdvisor(cfg AdvisorConfig, logger *zap.Logger) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("advisor api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return newOpenAIAdvisor(openai.NewClientWithConfig(clientCfg), cfg, logger), nil
}

func newOpenAIAdvisor(client chatCompleter, cfg AdvisorConfig, logger *zap.Logger) *OpenAIAdvisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.MaxProposals <= 0 {
		cfg.MaxProposals = 3
	}
	return &OpenAIAdvisor{client: client, cfg: cfg, logger: logger}
}

type advisorPromptLesson struct {
	ID        string  `json:"id"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	ClassID   string  `json:"classId"`
	SubjectID *string `json:"subjectId,omitempty"`
	RoomID    *string `json:"roomId,omitempty"`
}

type advisorPrompt struct {
	AbsentTeacher models.CatalogTeacher   `json:"absentTeacher"`
	Date          string                  `json:"date"`
	Day           models.Day              `json:"day"`
	Lessons       []advisorPromptLesson   `json:"lessons"`
	Candidates    map[string][]string     `json:"candidates"`
	Teachers      []models.CatalogTeacher `json:"teachers"`
	MaxProposals  int                     `json:"maxProposals"`
}

type advisorAnswer struct {
	Proposals []timetable.AdvisorProposal `json:"proposals"`
}

// Propose implements timetable.Advisor.
func (a *OpenAIAdvisor) Propose(ctx context.Context, req timetable.AdvisorRequest) ([]timetable.AdvisorProposal, error) {
	prompt := advisorPrompt{
		AbsentTeacher: req.AbsentTeacher,
		Date:          req.Date.Format("2006-01-02"),
		Day:           req.Day,
		Candidates:    req.Candidates,
		Teachers:      req.Teachers,
		MaxProposals:  a.cfg.MaxProposals,
	}
	for _, l := range req.Lessons {
		prompt.Lessons = append(prompt.Lessons, advisorPromptLesson{
			ID:        l.ID,
			Start:     l.StartTime.String(),
			End:       l.EndTime.String(),
			ClassID:   l.ClassID,
			SubjectID: l.SubjectID,
			RoomID:    l.RoomID,
		})
	}
	payload, err := json.Marshal(prompt)
	if err != nil {
		return nil, fmt.Errorf("encode advisor prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("advisor completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("advisor returned no choices")
	}
	a.logger.Debug("advisor answered", zap.String("model", a.cfg.Model), zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	proposals, err := parseAdvisorAnswer(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(proposals) > a.cfg.MaxProposals {
		proposals = proposals[:a.cfg.MaxProposals]
	}
	return proposals, nil
}

func parseAdvisorAnswer(content string) ([]timetable.AdvisorProposal, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var answer advisorAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &answer); err != nil {
		return nil, fmt.Errorf("decode advisor answer: %w", err)
	}
	for i := range answer.Proposals {
		for j := range answer.Proposals[i].Assignments {
			as := &answer.Proposals[i].Assignments[j]
			as.TeacherID = emptyToNil(as.TeacherID)
			as.MergedLessonID = emptyToNil(as.MergedLessonID)
		}
	}
	return answer.Proposals, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

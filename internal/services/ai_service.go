package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxaizer/upwork-hunter/internal/domain/models"
)

type aiClient interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// AIService turns a normalized job plus the freelancer's bio into the two
// outreach texts. Prompt wording is deliberately rigid; loosening it degrades
// output length discipline.
type AIService struct {
	aiClient aiClient
}

func NewAIService(aiClient aiClient) *AIService {
	return &AIService{aiClient: aiClient}
}

func (a *AIService) GenerateCoverLetter(ctx context.Context, job models.NormalizedJob, bio string) (string, error) {

	prompt := fmt.Sprintf(`Write a max 35-word cover letter for this Upwork job.
Job: %s
Description: %s

My Background (Bio):
%s

Rules:
- Mirror the client's problem
- Reference one concrete relevant build from my bio if applicable
- Link to walkthrough doc: [DOC_LINK]
- Do NOT invent fake projects. Only use what is in my bio or general expertise.

Output strictly the cover letter text.`, job.Title, job.Description, bio)

	response, err := a.aiClient.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func (a *AIService) GenerateProposal(ctx context.Context, job models.NormalizedJob, bio string) (string, error) {

	prompt := fmt.Sprintf(`Write a 200-350 word proposal for this Upwork job.
Job: %s
Description: %s

My Background (Bio):
%s

Rules:
- First-person, conversational
- Clear problem mirror
- Explicit step-by-step plan
- Concrete deliverables
- Realistic timeline
- One sharp clarifying question
- Use my bio to substantiate claims, but do not copy-paste it.

Structure:
Hey [name]...
My approach...
Deliverables...
Timeline...
Question...`, job.Title, job.Description, bio)

	response, err := a.aiClient.GenerateResponse(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/fadilmartias/resume-scanner/internal/dto"
	"github.com/fadilmartias/resume-scanner/internal/repository"
	"github.com/fadilmartias/resume-scanner/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSubject        = "Project Assignment Notification"
	defaultRepositoryName = "DefaultProjectRepo"
	bulkEmailConcurrency  = 3
)

var defaultCompany = dto.CompanyInfo{
	Name:         "Your Company",
	ContactEmail: "hr@company.com",
	Website:      "www.company.com",
}

var emailBody = template.Must(template.New("assignment").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(`{{.Content.Greeting}}

{{.Content.Introduction}}

Project Assignment Details:
- Project Name: {{.Content.ProjectDetails.Name}}
- Description: {{.Content.ProjectDetails.Description}}
- Key Requirements: {{join .Content.ProjectDetails.Requirements}}
- Expected Outcomes: {{join .Content.ProjectDetails.ExpectedOutcomes}}
- Project Repository Name: {{.Repository}}

{{.Content.NextSteps}}

{{.Content.Closing}}

Best Regards,
{{.Company.Name}}
Email: {{.Company.ContactEmail}}
Website: {{.Company.Website}}
`))

const assignmentPrompt = `You are an expert HR assistant that matches candidates to suitable projects based on their
profiles and job requirements. Generate a personalized project assignment email for the
candidate described below.

Candidate Profile:
%s

Job Description:
%s

Available Projects (optional):
%s

Generate output in the following JSON structure:
{
    "subject": "Email subject line",
    "greeting": "Personalized greeting",
    "introduction": "Paragraph introducing the assignment",
    "project_details": {
        "name": "Project name",
        "description": "Detailed project description",
        "requirements": ["list", "of", "specific", "requirements"],
        "expected_outcomes": ["list", "of", "expected", "outcomes"]
    },
    "repository_name": "Repository name for the project",
    "next_steps": "Instructions for what the candidate should do next",
    "closing": "Professional closing remarks"
}

Guidelines:
1. The project assignment should closely match the candidate's skills and experience
2. The language should be professional but friendly
3. Include specific details about why this project was chosen for this candidate
4. Make the expectations and next steps very clear
5. Keep the total email length reasonable (3-5 paragraphs)`

type EmailUsecase struct {
	assignments *repository.AssignmentRepository
	gemini      service.GeminiServiceInterface
	mailer      service.Mailer
	cfg         *config.MailConfig
}

func NewEmailUsecase(assignments *repository.AssignmentRepository, gemini service.GeminiServiceInterface, mailer service.Mailer, cfg *config.MailConfig) *EmailUsecase {
	return &EmailUsecase{assignments: assignments, gemini: gemini, mailer: mailer, cfg: cfg}
}

type emailJob struct {
	from, password string
	jobDescription map[string]any
	projectOptions map[string]any
	company        dto.CompanyInfo
}

func (uc *EmailUsecase) job(creds dto.EmailCredentials, jd, options, company map[string]any) (*emailJob, error) {
	from, password := creds.SenderEmail, creds.Password
	if from == "" {
		from = uc.cfg.SenderEmail
	}
	if password == "" {
		password = uc.cfg.SenderPassword
	}
	if from == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return &emailJob{
		from:           from,
		password:       password,
		jobDescription: jd,
		projectOptions: options,
		company:        companyFrom(company),
	}, nil
}

func companyFrom(m map[string]any) dto.CompanyInfo {
	c := defaultCompany
	if v, ok := m["name"].(string); ok && v != "" {
		c.Name = v
	}
	if v, ok := m["contact_email"].(string); ok && v != "" {
		c.ContactEmail = v
	}
	if v, ok := m["website"].(string); ok && v != "" {
		c.Website = v
	}
	return c
}

// SendIndividual emails the candidate at req.CandidateIndex.
func (uc *EmailUsecase) SendIndividual(ctx context.Context, req dto.SendIndividualEmailRequest) (*dto.EmailResult, error) {
	if len(req.RankedResumes) == 0 {
		return nil, fmt.Errorf("%w: no ranked resumes provided", ErrInvalidInput)
	}
	if req.CandidateIndex < 0 || req.CandidateIndex >= len(req.RankedResumes) {
		return nil, fmt.Errorf("%w: invalid candidate index", ErrInvalidInput)
	}
	job, err := uc.job(req.EmailCredentials, req.JobDescription, req.ProjectOptions, req.CompanyInfo)
	if err != nil {
		return nil, err
	}
	profile, raw, ok := candidateProfile(req.RankedResumes[req.CandidateIndex])
	if !ok {
		return nil, fmt.Errorf("%w: candidate profile or email not available", ErrInvalidInput)
	}
	if err := uc.send(ctx, job, profile, raw); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return &dto.EmailResult{
		Status:  "success",
		Message: "Email sent successfully to " + profile.ContactInfo.FullName,
	}, nil
}

// SendBulk emails every candidate and reports per-candidate outcomes. A
// failure for one candidate never stops the others.
func (uc *EmailUsecase) SendBulk(ctx context.Context, req dto.SendBulkEmailRequest) (*dto.BulkEmailResponse, error) {
	if len(req.RankedResumes) == 0 {
		return nil, fmt.Errorf("%w: no ranked resumes provided", ErrInvalidInput)
	}
	job, err := uc.job(req.EmailCredentials, req.JobDescription, req.ProjectOptions, req.CompanyInfo)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[string]dto.EmailResult, len(req.RankedResumes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkEmailConcurrency)
	for idx, entry := range req.RankedResumes {
		key := fmt.Sprintf("candidate_%d", idx)
		g.Go(func() error {
			res := dto.EmailResult{Status: "failed", Message: "Missing profile or email"}
			if profile, raw, ok := candidateProfile(entry); ok {
				if err := uc.send(gctx, job, profile, raw); err != nil {
					slog.Warn("assignment email failed", "candidate", key, "error", err)
					res.Message = "Email failed to send to " + profile.ContactInfo.FullName
				} else {
					res = dto.EmailResult{Status: "success", Message: "Email sent successfully to " + profile.ContactInfo.FullName}
				}
			}
			mu.Lock()
			results[key] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, r := range results {
		if r.Status == "success" {
			sent++
		}
	}
	return &dto.BulkEmailResponse{
		Status:          "completed",
		Summary:         fmt.Sprintf("Sent emails to %d out of %d candidates", sent, len(req.RankedResumes)),
		DetailedResults: results,
	}, nil
}

func candidateProfile(entry dto.CandidateEntry) (*dto.ResumeProfile, json.RawMessage, bool) {
	if len(entry.FullResume) == 0 || string(entry.FullResume) == "null" {
		return nil, nil, false
	}
	var profile dto.ResumeProfile
	if err := json.Unmarshal(entry.FullResume, &profile); err != nil {
		return nil, nil, false
	}
	if strings.TrimSpace(profile.ContactInfo.Email) == "" {
		return nil, nil, false
	}
	return &profile, entry.FullResume, true
}

func (uc *EmailUsecase) send(ctx context.Context, job *emailJob, profile *dto.ResumeProfile, raw json.RawMessage) error {
	content, err := uc.generateContent(ctx, raw, job)
	if err != nil {
		return err
	}

	repo := content.RepositoryName
	if repo == "" {
		repo = defaultRepositoryName
	}
	identifier := profile.ContactInfo.GitHub
	if identifier == "" {
		identifier = profile.ContactInfo.Email
	}
	if err := uc.assignments.Save(ctx, identifier, repo); err != nil {
		slog.Error("saving repository assignment failed", "candidate", identifier, "error", err)
	}

	body, err := RenderAssignmentEmail(content, job.company)
	if err != nil {
		return err
	}
	return uc.mailer.Send(ctx, service.MailMessage{
		From:     job.from,
		Password: job.password,
		To:       profile.ContactInfo.Email,
		Subject:  content.Subject,
		Body:     body,
	})
}

func (uc *EmailUsecase) generateContent(ctx context.Context, profile json.RawMessage, job *emailJob) (*dto.AssignmentContent, error) {
	indent := func(v any) string {
		b, _ := json.MarshalIndent(v, "", "  ")
		return string(b)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, profile, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(profile)
	}
	options := job.projectOptions
	if options == nil {
		options = map[string]any{}
	}
	prompt := fmt.Sprintf(assignmentPrompt, pretty.String(), indent(job.jobDescription), indent(options))

	out, err := uc.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate assignment content: %w", err)
	}
	var content dto.AssignmentContent
	if err := json.Unmarshal([]byte(out), &content); err != nil {
		return nil, fmt.Errorf("decode assignment content: %w", err)
	}
	applyContentDefaults(&content)
	return &content, nil
}

func applyContentDefaults(c *dto.AssignmentContent) {
	if c.Subject == "" {
		c.Subject = defaultSubject
	}
	if c.Greeting == "" {
		c.Greeting = "Dear Candidate"
	}
	if c.Introduction == "" {
		c.Introduction = "We're pleased to assign you to a project based on your skills and experience."
	}
	if c.ProjectDetails == nil {
		c.ProjectDetails = &dto.ProjectDetails{
			Name:        "Custom Project Assignment",
			Description: "A project tailored to your qualifications",
		}
	}
	if c.ProjectDetails.Name == "" {
		c.ProjectDetails.Name = "Project Assignment"
	}
	if c.ProjectDetails.Description == "" {
		c.ProjectDetails.Description = "A tailored project assignment"
	}
	if c.NextSteps == "" {
		c.NextSteps = "Please review the details and confirm your acceptance."
	}
	if c.Closing == "" {
		c.Closing = "We look forward to working with you."
	}
}

// RenderAssignmentEmail produces the plain-text body of an assignment email.
func RenderAssignmentEmail(content *dto.AssignmentContent, company dto.CompanyInfo) (string, error) {
	repo := content.RepositoryName
	if repo == "" {
		repo = "Project Repository"
	}
	var buf bytes.Buffer
	err := emailBody.Execute(&buf, map[string]any{
		"Content":    content,
		"Repository": repo,
		"Company":    company,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}

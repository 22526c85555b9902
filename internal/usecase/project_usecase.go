package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fadilmartias/resume-scanner/internal/service"
)

// maxProjectChars bounds the digest sent to the model.
const maxProjectChars = 200_000

type ProjectUsecase struct {
	github service.GitHubServiceInterface
	gemini service.GeminiServiceInterface
}

func NewProjectUsecase(github service.GitHubServiceInterface, gemini service.GeminiServiceInterface) *ProjectUsecase {
	return &ProjectUsecase{github: github, gemini: gemini}
}

// Content returns the plain-text digest of a GitHub repository.
func (uc *ProjectUsecase) Content(ctx context.Context, inputPath string) (string, error) {
	owner, repo, ok := service.ParseGitHubURL(inputPath)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, inputPath)
	}
	snap, err := uc.github.FetchRepository(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	return snap.Text(), nil
}

const projectPrompt = `Analyze the following project content and provide a detailed report including:

- A summary of the project's purpose and functionality.
- The project's structure, including key files and directories.
- Key technologies and libraries used.
- Potential areas for improvement or refactoring.
- Project metrics such as estimated complexity, maintainability, and code quality.
- A list of identified potential issues or bugs.
- A list of the programming languages used.
- A list of the libraries used.
- A list of the files that are most important.
- A list of the files that are most complex.

Project Content:
%s

Return your analysis in the following JSON structure ONLY:
{
    "summary": "Project summary",
    "structure": "Description of project structure",
    "technologies": ["Technology 1", "Technology 2"],
    "languages": ["Language1", "Language2"],
    "libraries": ["Library1", "Library2"],
    "important_files": ["file1", "file2"],
    "complex_files": ["file1", "file2"],
    "improvements": ["Improvement 1", "Improvement 2"],
    "metrics": {
        "complexity": "Estimated complexity",
        "maintainability": "Estimated maintainability",
        "code_quality": "Estimated code quality"
    },
    "issues": ["Issue 1", "Issue 2"]
}`

func (uc *ProjectUsecase) Analyze(ctx context.Context, inputPath string) (json.RawMessage, error) {
	content, err := uc.Content(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	if len(content) > maxProjectChars {
		content = content[:maxProjectChars]
	}
	out, err := uc.gemini.GenerateJSON(ctx, fmt.Sprintf(projectPrompt, content))
	if err != nil {
		return nil, fmt.Errorf("error analyzing project: %w", err)
	}
	return json.RawMessage(out), nil
}

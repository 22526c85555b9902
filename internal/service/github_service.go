package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fadilmartias/resume-scanner/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// maxTreeEntries caps the file listing included in a snapshot.
const maxTreeEntries = 500

type GitHubServiceInterface interface {
	FetchRepository(ctx context.Context, owner, repo string) (*RepoSnapshot, error)
}

type RepoSnapshot struct {
	FullName      string
	Description   string
	DefaultBranch string
	Stars         int64
	Forks         int64
	Topics        []string
	Languages     map[string]int64
	Readme        string
	Files         []string
	Truncated     bool
}

type GitHubService struct {
	client *resty.Client
}

func NewGitHubService(cfg *config.GitHubConfig) *GitHubService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &GitHubService{client: client}
}

// ParseGitHubURL accepts https://github.com/<owner>/<repo>[.git][/...].
func ParseGitHubURL(raw string) (owner, repo string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Host != "github.com" && u.Host != "www.github.com") {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}

func (s *GitHubService) get(ctx context.Context, path string, query map[string]string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err != nil {
		return "", fmt.Errorf("github request %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("github %s returned %d: %s", path, resp.StatusCode(), gjson.Get(resp.String(), "message").String())
	}
	return resp.String(), nil
}

func (s *GitHubService) FetchRepository(ctx context.Context, owner, repo string) (*RepoSnapshot, error) {
	base := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	meta, err := s.get(ctx, base, nil)
	if err != nil {
		return nil, err
	}
	snap := &RepoSnapshot{
		FullName:      gjson.Get(meta, "full_name").String(),
		Description:   gjson.Get(meta, "description").String(),
		DefaultBranch: gjson.Get(meta, "default_branch").String(),
		Stars:         gjson.Get(meta, "stargazers_count").Int(),
		Forks:         gjson.Get(meta, "forks_count").Int(),
		Languages:     map[string]int64{},
	}
	for _, t := range gjson.Get(meta, "topics").Array() {
		snap.Topics = append(snap.Topics, t.String())
	}

	if langs, err := s.get(ctx, base+"/languages", nil); err == nil {
		gjson.Parse(langs).ForEach(func(k, v gjson.Result) bool {
			snap.Languages[k.String()] = v.Int()
			return true
		})
	}

	// README is optional.
	if readme, err := s.client.R().SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.raw+json").
		Get(base + "/readme"); err == nil && readme.IsSuccess() {
		snap.Readme = readme.String()
	}

	if snap.DefaultBranch != "" {
		tree, err := s.get(ctx, base+"/git/trees/"+url.PathEscape(snap.DefaultBranch), map[string]string{"recursive": "1"})
		if err == nil {
			for _, entry := range gjson.Get(tree, "tree").Array() {
				if entry.Get("type").String() != "blob" {
					continue
				}
				if len(snap.Files) >= maxTreeEntries {
					snap.Truncated = true
					break
				}
				snap.Files = append(snap.Files, entry.Get("path").String())
			}
			snap.Truncated = snap.Truncated || gjson.Get(tree, "truncated").Bool()
		}
	}
	return snap, nil
}

// Text renders the snapshot as the plain-text digest fed to the analyser.
func (r *RepoSnapshot) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", r.FullName)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Stars: %d  Forks: %d\n", r.Stars, r.Forks)
	if len(r.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(r.Topics, ", "))
	}
	if len(r.Languages) > 0 {
		names := make([]string, 0, len(r.Languages))
		for name := range r.Languages {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if r.Languages[names[i]] != r.Languages[names[j]] {
				return r.Languages[names[i]] > r.Languages[names[j]]
			}
			return names[i] < names[j]
		})
		b.WriteString("Languages:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "- %s: %d bytes\n", name, r.Languages[name])
		}
	}
	if len(r.Files) > 0 {
		b.WriteString("\nFile tree:\n")
		for _, f := range r.Files {
			fmt.Fprintf(&b, "%s\n", f)
		}
		if r.Truncated {
			b.WriteString("(listing truncated)\n")
		}
	}
	if r.Readme != "" {
		b.WriteString("\nREADME:\n")
		b.WriteString(r.Readme)
		b.WriteString("\n")
	}
	return b.String()
}

package document

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

// RepositoryStore is a file in a GitHub repository, read and committed through
// the contents API.
type RepositoryStore struct {
	client  *github.Client
	owner   string
	repo    string
	path    string
	branch  string
	message string

	// sha of the blob returned by the last Read, required by the update call.
	sha string
}

// NewRepositoryStore builds a store for owner/repo at path. An empty branch means
// the default branch. An empty baseURL targets api.github.com.
func NewRepositoryStore(httpClient *http.Client, baseURL, owner, repo, path, branch, message string) (*RepositoryStore, error) {
	client := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure REST base URL: %w", err)
		}
	}
	return &RepositoryStore{
		client:  client,
		owner:   owner,
		repo:    repo,
		path:    path,
		branch:  branch,
		message: message,
	}, nil
}

func (s *RepositoryStore) Read(ctx context.Context) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: s.branch}
	file, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		return "", fmt.Errorf("failed to get %s from %s/%s: %w", s.path, s.owner, s.repo, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s in %s/%s is a directory", s.path, s.owner, s.repo)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	s.sha = file.GetSHA()
	return content, nil
}

func (s *RepositoryStore) Write(ctx context.Context, content string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(s.message),
		Content: []byte(content),
	}
	if s.sha != "" {
		opts.SHA = github.String(s.sha)
	}
	if s.branch != "" {
		opts.Branch = github.String(s.branch)
	}
	resp, _, err := s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, s.path, opts)
	if err != nil {
		return fmt.Errorf("failed to commit %s to %s/%s: %w", s.path, s.owner, s.repo, err)
	}
	s.sha = resp.GetContent().GetSHA()
	return nil
}

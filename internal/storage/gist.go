package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const gistFileName = "pushed_titles.txt"

// GistStore keeps the seen-title keys in a GitHub gist, one key per line —
// the cloud memory a CI job can share across runs without a database.
type GistStore struct {
	gistID  string
	token   string
	client  *http.Client
	baseURL string
}

func NewGistStore(gistID, token string, client *http.Client) *GistStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GistStore{
		gistID:  gistID,
		token:   token,
		client:  client,
		baseURL: "https://api.github.com",
	}
}

type gistPayload struct {
	Files map[string]struct {
		Content string `json:"content"`
	} `json:"files"`
}

func (s *GistStore) Load() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.gistURL(), nil)
	if err != nil {
		return nil, err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist fetch status %d", resp.StatusCode)
	}

	var payload gistPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gist: %w", err)
	}

	file, ok := payload.Files[gistFileName]
	if !ok {
		return nil, nil
	}
	var keys []string
	for _, line := range strings.Split(file.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			keys = append(keys, line)
		}
	}
	return keys, nil
}

func (s *GistStore) Save(keys []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body := map[string]interface{}{
		"files": map[string]interface{}{
			gistFileName: map[string]string{
				"content": strings.Join(CapKeys(keys), "\n"),
			},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal gist payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.gistURL(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("update gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gist update status %d", resp.StatusCode)
	}
	return nil
}

func (s *GistStore) gistURL() string {
	return s.baseURL + "/gists/" + s.gistID
}

func (s *GistStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

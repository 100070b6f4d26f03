package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BellezaEmporium/galaxy-integration-ead/internal/domain"
)

// Cookie files hold the web-session cookies as a JSON array of
// {"name": ..., "value": ...} objects. `ead login` also accepts a plain
// "name=value" per line format for hand-assembled files.

type cookieFileEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func loadCookies(path string) ([]domain.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookie file: %w", err)
	}

	var entries []cookieFileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return parseCookieLines(string(data))
	}

	cookies := make([]domain.Cookie, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		cookies = append(cookies, domain.Cookie{Name: entry.Name, Value: entry.Value})
	}
	return cookies, nil
}

func parseCookieLines(content string) ([]domain.Cookie, error) {
	var cookies []domain.Cookie
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("cookie line %q is not name=value", line)
		}
		cookies = append(cookies, domain.Cookie{Name: name, Value: value})
	}
	if len(cookies) == 0 {
		return nil, errors.New("cookie file holds no cookies")
	}
	return cookies, nil
}

func saveCookies(path string, cookies []domain.Cookie) error {
	entries := make([]cookieFileEntry, 0, len(cookies))
	for _, cookie := range cookies {
		entries = append(entries, cookieFileEntry{Name: cookie.Name, Value: cookie.Value})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

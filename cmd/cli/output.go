package main

import (
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if flagPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// readPosts loads a video list export: either a bare array or the API's {"data":{"videos":[...]}} body.
func readPosts(path string) ([]domain.Post, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err == nil {
		return posts, nil
	}
	var body struct {
		Data struct {
			Videos []domain.Post `json:"videos"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.Data.Videos, nil
}

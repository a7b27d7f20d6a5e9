package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	get "github.com/hashicorp/go-getter"
)

// IsRemote reports whether src needs fetching before it can be read, that is
// it names a URL or forces a getter ("git::", "s3::", ...).
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Fetch downloads a single config file from src into dst.
func Fetch(ctx context.Context, dst, src string) error {
	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("fetch config: %w", err)
	}
	client := &get.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: get.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch config %s: %w", src, err)
	}
	return nil
}

// Resolve returns a local path for src, fetching remote sources into dir.
func Resolve(ctx context.Context, src, dir string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}
	dst := filepath.Join(dir, "config.yaml")
	if err := Fetch(ctx, dst, src); err != nil {
		return "", err
	}
	return dst, nil
}

// Package brief loads the product brief that seeds content generation.
// The brief stands in for the external intake service: operators describe
// the product, audience and tone in a small YAML file.
package brief

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/pkg/filesystem"
	"github.com/doeshing/adpost-go/internal/ports"
)

// FileCollector reads the brief from a YAML file.
type FileCollector struct{}

// NewFileCollector builds the default collector.
func NewFileCollector() *FileCollector {
	return &FileCollector{}
}

// Collect implements ports.BriefCollector. An inline brief on the request
// wins; otherwise the request path, then ~/.adpost/brief.yaml.
func (c *FileCollector) Collect(_ context.Context, _ domain.Config, req domain.PostRequest) (domain.Brief, error) {
	if req.Brief != nil {
		return validate(*req.Brief)
	}

	path := req.BriefPath
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".adpost", "brief.yaml")
	} else {
		path = filesystem.ExpandPath(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Brief{}, fmt.Errorf("read brief %s: %w", path, err)
	}
	var b domain.Brief
	if err := yaml.Unmarshal(data, &b); err != nil {
		return domain.Brief{}, fmt.Errorf("parse brief %s: %w", path, err)
	}
	return validate(b)
}

func validate(b domain.Brief) (domain.Brief, error) {
	if strings.TrimSpace(b.Description) == "" {
		return domain.Brief{}, fmt.Errorf("%w: brief needs a product description", domain.ErrInvalidArgument)
	}
	return b, nil
}

var _ ports.BriefCollector = (*FileCollector)(nil)

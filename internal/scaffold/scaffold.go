package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/files/layout"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

//go:embed all:templates
var templatesFS embed.FS

// DefaultTemplate is used by `pg2duck init` when no template is named.
const DefaultTemplate = "default"

// Scaffolder writes a starter configuration from an embedded template.
type Scaffolder struct {
	fsys   filesystem.FileSystem
	logger pg2duck.Logger
}

// NewScaffolder creates a new Scaffolder instance
func NewScaffolder(fsys filesystem.FileSystem, logger pg2duck.Logger) *Scaffolder {
	return &Scaffolder{fsys: fsys, logger: logger}
}

// CreateProject writes templateName's files into targetPath, which must be
// empty or not exist yet. It returns the created file names.
func (s *Scaffolder) CreateProject(templateName, targetPath string) ([]string, error) {
	templatePath := path.Join("templates", templateName)
	if _, err := templatesFS.ReadDir(templatePath); err != nil {
		return nil, fmt.Errorf("template '%s' not found: %w", templateName, err)
	}

	if err := s.requireEmpty(targetPath); err != nil {
		return nil, err
	}
	if err := s.fsys.MkdirAll(targetPath); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	projectName := filepath.Base(absOrSelf(targetPath))
	s.logger.Verbose("Creating project '%s' at %s with template '%s'", projectName, targetPath, templateName)

	created, err := s.copyTemplateFiles(templatePath, targetPath, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to copy template files: %w", err)
	}
	return created, nil
}

func (s *Scaffolder) requireEmpty(targetPath string) error {
	info, err := s.fsys.Stat(targetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to check target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", pg2duck.ErrOutputNotDirectory, targetPath)
	}

	empty, err := layout.IsEmptyDir(s.fsys, targetPath)
	if err != nil {
		return fmt.Errorf("failed to check target directory: %w", err)
	}
	if !empty {
		return fmt.Errorf("%w: %s\n\npg2duck init requires an empty directory to avoid overwriting existing files.\n\nOptions:\n• Choose a different location\n• Remove existing files manually\n• Use a new directory name", pg2duck.ErrOutputNotEmpty, targetPath)
	}
	return nil
}

func (s *Scaffolder) copyTemplateFiles(templatePath, targetPath, projectName string) ([]string, error) {
	var created []string
	err := fs.WalkDir(templatesFS, templatePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == templatePath {
			return nil
		}

		rel := strings.TrimPrefix(p, templatePath+"/")
		target := filepath.Join(targetPath, filepath.FromSlash(rel))

		if d.IsDir() {
			s.logger.Verbose("Creating directory: %s", rel)
			return s.fsys.MkdirAll(target)
		}

		content, err := templatesFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", p, err)
		}

		s.logger.Verbose("Creating file: %s", rel)
		if err := s.fsys.WriteFile(target, []byte(processTemplate(string(content), projectName))); err != nil {
			return fmt.Errorf("failed to write file %s: %w", target, err)
		}
		created = append(created, rel)
		return nil
	})
	return created, err
}

// processTemplate replaces template variables in content
func processTemplate(content, projectName string) string {
	return strings.ReplaceAll(content, "{{PROJECT_NAME}}", projectName)
}

// ListTemplates returns available template names
func ListTemplates() ([]string, error) {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	var templates []string
	for _, entry := range entries {
		if entry.IsDir() {
			templates = append(templates, entry.Name())
		}
	}
	return templates, nil
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

package packager

import (
	"context"
	"fmt"
	"path/filepath"
)

// dockerImagePackager publishes saved image tarballs produced by an
// upstream build step. It does not build or save images itself; it locates
// the tarballs and hands them off unmodified.
type dockerImagePackager struct{}

func (p *dockerImagePackager) Format() Format {
	return FormatDockerImage
}

func (p *dockerImagePackager) Package(ctx context.Context, job Job) (*Artifact, error) {
	matches, err := resolveInputs(job, []string{"**/*.tar", "**/*.tar.gz"})
	if err != nil {
		return nil, fmt.Errorf("resolve image tarballs: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no image tarballs matched under %s", job.SourceDir)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		files = append(files, filepath.Join(job.SourceDir, rel))
	}

	return &Artifact{
		Format:    FormatDockerImage,
		Files:     files,
		KeyPrefix: fmt.Sprintf("images/%s/%s", job.Name, job.Version),
		Mode:      ModeCopy,
	}, nil
}

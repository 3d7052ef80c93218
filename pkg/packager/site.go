package packager

import (
	"context"
	"fmt"
	"path/filepath"
)

// staticSitePackager publishes a built site through the sync path with
// delete-extraneous enabled, so removed pages disappear from the remote
// tree. Site builds handed over as a zip bundle are expanded in staging.
type staticSitePackager struct{}

func (p *staticSitePackager) Format() Format {
	return FormatStaticSite
}

func (p *staticSitePackager) Package(ctx context.Context, job Job) (*Artifact, error) {
	matches, err := resolveInputs(job, []string{"**/*"})
	if err != nil {
		return nil, fmt.Errorf("resolve site files: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no site files matched under %s", job.SourceDir)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		files = append(files, filepath.Join(job.SourceDir, rel))
	}

	return &Artifact{
		Format:           FormatStaticSite,
		Files:            files,
		KeyPrefix:        fmt.Sprintf("sites/%s/%s", job.Name, job.Version),
		Mode:             ModeSync,
		DeleteExtraneous: true,
	}, nil
}

package packager

import (
	"context"
	"fmt"
	"path/filepath"
)

// datasetPackager publishes dataset files through the sync path. Matched
// zip bundles are expanded into the remote tree; later bundles layer over
// earlier ones on path collision, which dataset jobs rely on to apply
// partial updates over a base bundle.
type datasetPackager struct{}

func (p *datasetPackager) Format() Format {
	return FormatDataset
}

func (p *datasetPackager) Package(ctx context.Context, job Job) (*Artifact, error) {
	matches, err := resolveInputs(job, []string{"**/*"})
	if err != nil {
		return nil, fmt.Errorf("resolve dataset files: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no dataset files matched under %s", job.SourceDir)
	}

	files := make([]string, 0, len(matches))
	for _, rel := range matches {
		files = append(files, filepath.Join(job.SourceDir, rel))
	}

	return &Artifact{
		Format:    FormatDataset,
		Files:     files,
		KeyPrefix: fmt.Sprintf("datasets/%s/%s", job.Name, job.Version),
		Mode:      ModeSync,
	}, nil
}

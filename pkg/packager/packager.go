// Package packager dispatches artifact-packaging jobs to per-format
// handlers and publishes the results to object storage.
package packager

import (
	"context"
	"fmt"

	"github.com/shipyard-ci/stagebucket/internal/glob"
)

// Format is the closed set of artifact kinds the pipeline can package.
type Format string

const (
	FormatDockerImage Format = "docker-image"
	FormatLambdaZip   Format = "lambda-zip"
	FormatDataset     Format = "dataset"
	FormatStaticSite  Format = "static-site"
)

// ParseFormat maps a config/CLI string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatDockerImage, FormatLambdaZip, FormatDataset, FormatStaticSite:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported artifact format: %q", s)
}

// PublishMode selects how an artifact's files reach the bucket.
type PublishMode int

const (
	// ModeSync stages the files and runs a directory sync; zip files are
	// expanded into the staged tree.
	ModeSync PublishMode = iota

	// ModeCopy uploads each file as a single object under the artifact
	// prefix, byte for byte. Used for artifacts that must stay archived
	// remotely, like Lambda deployment zips and saved image tarballs.
	ModeCopy
)

// Job describes one packaging task handed to a Packager.
type Job struct {
	// Name identifies the deployment unit (service, function, site).
	Name string

	// Version is the build tag or commit the artifact belongs to.
	Version string

	// SourceDir is the directory the input patterns resolve against.
	SourceDir string

	// Patterns are recursive glob patterns selecting the inputs. Empty
	// falls back to the format's default patterns.
	Patterns []string

	// Excludes drops matched inputs again, e.g. "**/*_test.py".
	Excludes []string

	// OutputDir receives files built by the packager itself. Empty falls
	// back to SourceDir.
	OutputDir string
}

func (j Job) outputDir() string {
	if j.OutputDir != "" {
		return j.OutputDir
	}
	return j.SourceDir
}

// Artifact is the product of a packaging run, ready for publication.
type Artifact struct {
	Format Format

	// Files are local paths to publish, in order.
	Files []string

	// KeyPrefix is the artifact's namespace below the pipeline's base
	// prefix, e.g. "lambda/checkout/abc123".
	KeyPrefix string

	// Mode selects the publication mechanism.
	Mode PublishMode

	// DeleteExtraneous requests removal of remote objects no longer in
	// the artifact when publishing via ModeSync.
	DeleteExtraneous bool
}

// Packager builds an Artifact for one format.
type Packager interface {
	Format() Format
	Package(ctx context.Context, job Job) (*Artifact, error)
}

// New returns the handler for format. The switch is exhaustive over the
// Format constants; an unknown value is a programming error upstream of
// ParseFormat.
func New(format Format) (Packager, error) {
	switch format {
	case FormatDockerImage:
		return &dockerImagePackager{}, nil
	case FormatLambdaZip:
		return &lambdaZipPackager{}, nil
	case FormatDataset:
		return &datasetPackager{}, nil
	case FormatStaticSite:
		return &staticSitePackager{}, nil
	default:
		return nil, fmt.Errorf("unsupported artifact format: %q", format)
	}
}

// resolveInputs expands the job's patterns (or the format's defaults) under
// the source directory and drops anything hit by an exclude pattern. Paths
// come back relative to the source directory.
func resolveInputs(job Job, defaults []string) ([]string, error) {
	patterns := job.Patterns
	if len(patterns) == 0 {
		patterns = defaults
	}

	matches, err := glob.Expand(job.SourceDir, patterns, glob.Flags{FilesOnly: true})
	if err != nil {
		return nil, err
	}

	if len(job.Excludes) == 0 {
		return matches, nil
	}

	kept := matches[:0]
	for _, match := range matches {
		excluded := false
		for _, pattern := range job.Excludes {
			hit, err := glob.Match(pattern, match)
			if err != nil {
				return nil, err
			}
			if hit {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, match)
		}
	}
	return kept, nil
}

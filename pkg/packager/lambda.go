package packager

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// lambdaZipPackager assembles a Lambda deployment zip from the job's
// source files. The zip is published as-is (ModeCopy) so the function
// archive stays intact remotely.
type lambdaZipPackager struct{}

func (p *lambdaZipPackager) Format() Format {
	return FormatLambdaZip
}

func (p *lambdaZipPackager) Package(ctx context.Context, job Job) (*Artifact, error) {
	files, err := resolveInputs(job, []string{"**/*"})
	if err != nil {
		return nil, fmt.Errorf("resolve lambda sources: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no lambda sources matched under %s", job.SourceDir)
	}

	zipPath := filepath.Join(job.outputDir(), job.Name+".zip")
	if err := buildZip(zipPath, job.SourceDir, files); err != nil {
		return nil, fmt.Errorf("build lambda zip: %w", err)
	}

	log.Infof("packaged %d files into %s", len(files), zipPath)
	return &Artifact{
		Format:    FormatLambdaZip,
		Files:     []string{zipPath},
		KeyPrefix: fmt.Sprintf("lambda/%s/%s", job.Name, job.Version),
		Mode:      ModeCopy,
	}, nil
}

// buildZip writes relPaths (relative to sourceDir) into a fresh zip at
// zipPath, preserving the relative layout.
func buildZip(zipPath, sourceDir string, relPaths []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, rel := range relPaths {
		if err := addZipEntry(writer, sourceDir, rel); err != nil {
			writer.Close()
			return err
		}
	}

	return writer.Close()
}

func addZipEntry(writer *zip.Writer, sourceDir, rel string) error {
	file, err := os.Open(filepath.Join(sourceDir, rel))
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(entry, file)
	return err
}

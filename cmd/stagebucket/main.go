package main

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shipyard-ci/stagebucket/internal/config"
	"github.com/shipyard-ci/stagebucket/internal/staging"
	"github.com/shipyard-ci/stagebucket/pkg/packager"
	"github.com/shipyard-ci/stagebucket/pkg/s3client"
	"github.com/shipyard-ci/stagebucket/pkg/syncer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	region     string
	profile    string
	quiet      bool
	verbose    bool
	dryRun     bool
	deleteFlag bool
	stagingDir string
	configFile string
	jobVersion string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stagebucket",
		Short: "Stage CI artifacts and publish them to S3",
		Long: `stagebucket assembles build artifacts (image tarballs, Lambda zips,
datasets, static sites) into a staging directory and publishes them to an
S3 prefix, with delete-extraneous and dry-run support.`,
		Version:       fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case quiet:
				log.SetLevel(log.WarnLevel)
			case verbose:
				log.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (uses default if not specified)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "AWS profile to use")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug output")

	rootCmd.AddCommand(newSyncCmd(), newDeleteTreeCmd(), newPublishCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <file>... <s3-uri>",
		Short: "Stage files and sync them to a bucket prefix",
		Long: `sync copies plain files flat into the staging directory, expands zip
archives into it preserving their internal paths, then mirrors the staged
tree to the given s3://bucket/prefix.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSync,
	}
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Show operations without executing")
	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "Delete remote objects absent from the staged tree")
	cmd.Flags().StringVar(&stagingDir, "staging-dir", "", "Staging directory (default: "+staging.DefaultDirName+")")
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	files, uri := args[:len(args)-1], args[len(args)-1]

	bucket, prefix, err := s3client.ParseS3URI(uri)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	bucketSyncer := syncer.NewBucketSyncer(client, stagingDir)
	return bucketSyncer.Sync(ctx, syncer.SyncRequest{
		Bucket: bucket,
		Prefix: prefix,
		Files:  files,
		Options: syncer.SyncOptions{
			Delete: deleteFlag,
			DryRun: dryRun,
		},
	})
}

func newDeleteTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-tree <s3-uri>",
		Short: "Delete every object at or below a bucket prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteTree,
	}
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Show deletions without executing")
	return cmd
}

func runDeleteTree(cmd *cobra.Command, args []string) error {
	bucket, prefix, err := s3client.ParseS3URI(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	deleter := syncer.NewTreeDeleter(client)
	return deleter.DeleteTree(ctx, syncer.DeleteRequest{
		Bucket:  bucket,
		Prefix:  prefix,
		Options: syncer.DeleteOptions{DryRun: dryRun},
	})
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <artifact-name>",
		Short: "Package a configured artifact and publish it",
		Long: `publish looks up the named artifact in the pipeline config, runs the
packager for its format, and publishes the result under the configured
bucket and prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: runPublish,
	}
	cmd.Flags().StringVar(&configFile, "config", "stagebucket.yml", "Pipeline configuration file")
	cmd.Flags().StringVar(&jobVersion, "artifact-version", "", "Override the artifact version from config")
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Show operations without executing")
	return cmd
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	artifactCfg, err := cfg.Artifact(args[0])
	if err != nil {
		return err
	}

	format, err := packager.ParseFormat(artifactCfg.Format)
	if err != nil {
		return err
	}

	pkgr, err := packager.New(format)
	if err != nil {
		return err
	}

	jv := artifactCfg.Version
	if jobVersion != "" {
		jv = jobVersion
	}

	ctx := cmd.Context()
	artifact, err := pkgr.Package(ctx, packager.Job{
		Name:      artifactCfg.Name,
		Version:   jv,
		SourceDir: artifactCfg.SourceDir,
		OutputDir: artifactCfg.OutputDir,
		Patterns:  artifactCfg.Patterns,
		Excludes:  artifactCfg.Excludes,
	})
	if err != nil {
		return err
	}

	if region == "" {
		region = cfg.Provider.Region
	}
	if profile == "" {
		profile = cfg.Provider.Profile
	}

	client, err := newClient(ctx)
	if err != nil {
		return err
	}

	bucketSyncer := syncer.NewBucketSyncer(client, cfg.StagingDir)
	publisher := packager.NewPublisher(client, bucketSyncer)
	return publisher.Publish(ctx, artifact, cfg.Provider.Bucket, cfg.Provider.Prefix, dryRun)
}

func newClient(ctx context.Context) (*s3client.AWSClient, error) {
	var configOpts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3client.NewAWSClient(cfg), nil
}

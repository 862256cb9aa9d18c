package main

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

var contentTypes = map[string]string{
	".svg": "image/svg+xml",
	".eps": "application/postscript",
}

// parseS3URL splits s3://bucket/some/prefix into the bucket and key prefix.
func parseS3URL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("upload target %q is not of the form s3://bucket/prefix", raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}

func uploadCharts(target, region, profile string, files []string) error {
	bucket, prefix, err := parseS3URL(target)
	if err != nil {
		return err
	}
	cfg := &aws.Config{Region: aws.String(region)}
	if profile != "" {
		cfg.Credentials = credentials.NewSharedCredentials("", profile)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return fmt.Errorf("could not create AWS session: %w", err)
	}
	up := s3manager.NewUploader(sess)

	for _, f := range files {
		key := path.Join(prefix, filepath.Base(f))
		if err := uploadFile(up, bucket, key, f); err != nil {
			return err
		}
		dpLogger.WithField("key", key).Infoln("uploaded to", bucket)
	}
	return nil
}

func uploadFile(up *s3manager.Uploader, bucket, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	in := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct, ok := contentTypes[filepath.Ext(file)]; ok {
		in.ContentType = aws.String(ct)
	}
	if _, err := up.Upload(in); err != nil {
		return fmt.Errorf("could not upload %s: %w", file, err)
	}
	return nil
}

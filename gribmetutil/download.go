/*
Copyright © 2026 the gribmet authors.
This file is part of gribmet.

gribmet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gribmet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gribmet.  If not, see <http://www.gnu.org/licenses/>.
*/

package gribmetutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// newBackOff returns the retry policy for HTTP downloads.
var newBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob storage location.
// If it is, it downloads the file and
// returns the path to the downloaded file.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	// If the path starts with one of these prefixes, download the file and
	// return the location it was downloaded to.
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}

	if IsBlob(path) {
		return downloadBlob(ctx, path)
	}

	return path, nil
}

// downloadDest creates a file in a new temporary directory to download
// path into.
func downloadDest(path string) (*os.File, error) {
	dir, err := ioutil.TempDir("", "gribmet")
	if err != nil {
		return nil, fmt.Errorf("gribmet: failed creating temporary download directory: %v", err)
	}
	w, err := os.Create(filepath.Join(dir, filepath.Base(path)))
	if err != nil {
		return nil, fmt.Errorf("gribmet: failed creating file for download: %v", err)
	}
	return w, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Failed requests are retried
// unless the server reports a client error.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	w, err := downloadDest(u.Path)
	if err != nil {
		return "", err
	}
	defer w.Close()

	err = backoff.RetryNotify(
		func() error {
			if _, err := w.Seek(0, io.SeekStart); err != nil {
				return err
			}
			if err := w.Truncate(0); err != nil {
				return err
			}
			req, err := http.NewRequest(http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req.WithContext(ctx))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("%s: %s", path, resp.Status)
				if permanentStatus(resp.StatusCode) {
					return &backoff.PermanentError{Err: err}
				}
				return err
			}
			_, err = io.Copy(w, resp.Body)
			return err
		},
		backoff.WithContext(newBackOff(), ctx),
		func(err error, d time.Duration) {
			log.WithField("url", path).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	return w.Name(), nil
}

// permanentStatus reports whether a request that received the given
// status will fail the same way if it is repeated.
func permanentStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return code >= 400 && code < 500
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("gribmet: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("gribmet: opening bucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY. NOAA publishes HRRR output in us-east-1.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	r, err := bucket.NewReader(ctx, strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	defer r.Close()
	w, err := downloadDest(u.Path)
	if err != nil {
		return "", err
	}
	defer w.Close()
	if _, err = io.Copy(w, r); err != nil {
		return "", fmt.Errorf("gribmet: downloading %s: %v", path, err)
	}
	return w.Name(), nil
}

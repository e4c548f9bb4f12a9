// Package s3 lists bucket contents and per-object details for s3://
// locations.
package s3

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/datals/datals/internal/logging"
)

var log = logging.Module("datals/s3")

// defaultEndpoint is used when no endpoint override is given.
const defaultEndpoint = "s3.amazonaws.com"

// ContentMode selects how much of each object's content is fetched
// during listing.
type ContentMode string

// Supported content modes.
const (
	ContentNone    ContentMode = "none"
	ContentFirst10 ContentMode = "first10"
	ContentHash    ContentMode = "hash"
	ContentFull    ContentMode = "full"
)

// ParseContentMode validates a content mode string.
func ParseContentMode(s string) (ContentMode, error) {
	switch m := ContentMode(s); m {
	case ContentNone, ContentFirst10, ContentHash, ContentFull:
		return m, nil
	default:
		return "", errors.Errorf("invalid content mode %q", s)
	}
}

// Options configure access to a bucket.
type Options struct {
	// Endpoint overrides the default S3 endpoint, for S3-compatible
	// services.
	Endpoint string

	AccessKey    string
	SecretKey    string
	SessionToken string

	Region string
}

// Entry is one listed object or object version.
type Entry struct {
	Key          string
	Size         int64
	LastModified time.Time

	// VersionID is empty on buckets without versioning.
	VersionID      string
	IsLatest       bool
	IsDeleteMarker bool
}

// BucketInfo holds bucket-level facts. Fields degrade to a short error
// description when the corresponding query is not permitted, so a
// partial answer is always printable.
type BucketInfo struct {
	Name       string
	Region     string
	Versioning string
	Policy     string

	// Website is the static-website endpoint of the bucket, derived
	// from the bucket name and region without a request.
	Website string
}

// SplitURL splits an s3://bucket/prefix location into bucket and
// prefix. A trailing query marker on the prefix is dropped, matching
// how such URLs are commonly pasted from browsers.
func SplitURL(url string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(url, "s3://")
	if !ok {
		return "", "", errors.Errorf("not an s3:// URL: %q", url)
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", errors.Errorf("missing bucket name in %q", url)
	}

	prefix, _, _ = strings.Cut(prefix, "?")

	return bucket, prefix, nil
}

// Lister lists one bucket, optionally restricted to a key prefix.
type Lister struct {
	cli      *minio.Client
	httpc    *http.Client
	endpoint string
	bucket   string
	prefix   string
}

// NewLister connects to the bucket named in the s3:// url and verifies
// it is reachable with the given credentials.
func NewLister(ctx context.Context, url string, opt Options) (*Lister, error) {
	bucket, prefix, err := SplitURL(url)
	if err != nil {
		return nil, err
	}

	endpoint := opt.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opt.AccessKey, opt.SecretKey, opt.SessionToken),
		Secure: true,
		Region: opt.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create S3 client")
	}

	ok, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to check bucket %q", bucket)
	}

	if !ok {
		return nil, errors.Errorf("bucket %q does not exist or is not accessible", bucket)
	}

	return &Lister{
		cli:      cli,
		httpc:    &http.Client{},
		endpoint: endpoint,
		bucket:   bucket,
		prefix:   prefix,
	}, nil
}

// Bucket returns the bucket name.
func (l *Lister) Bucket() string { return l.bucket }

// Prefix returns the key prefix restriction, possibly empty.
func (l *Lister) Prefix() string { return l.prefix }

// Info gathers bucket-level facts, best-effort.
func (l *Lister) Info(ctx context.Context) BucketInfo {
	info := BucketInfo{Name: l.bucket}

	var region string

	if loc, err := l.cli.GetBucketLocation(ctx, l.bucket); err != nil {
		info.Region = errText(err)
	} else {
		info.Region = loc
		region = loc
	}

	info.Website = l.websiteEndpoint(region)

	if vc, err := l.cli.GetBucketVersioning(ctx, l.bucket); err != nil {
		info.Versioning = errText(err)
	} else if vc.Status == "" {
		info.Versioning = "Disabled"
	} else {
		info.Versioning = vc.Status
	}

	if policy, err := l.cli.GetBucketPolicy(ctx, l.bucket); err != nil {
		info.Policy = errText(err)
	} else if policy == "" {
		info.Policy = "none"
	} else {
		info.Policy = "present"
	}

	return info
}

// List returns the entries under the lister's prefix. Versioned
// listing is attempted first so that older versions and delete markers
// can be reported; when the bucket or caller does not support it, the
// listing silently degrades to current versions only.
func (l *Lister) List(ctx context.Context, recursive bool) ([]Entry, error) {
	entries, err := l.list(ctx, recursive, true)
	if err == nil {
		return entries, nil
	}

	log(ctx).Debugf("versioned listing failed, retrying without versions: %v", err)

	return l.list(ctx, recursive, false)
}

func (l *Lister) list(ctx context.Context, recursive, withVersions bool) ([]Entry, error) {
	var entries []Entry

	for obj := range l.cli.ListObjects(ctx, l.bucket, minio.ListObjectsOptions{
		Prefix:       l.prefix,
		Recursive:    recursive,
		WithVersions: withVersions,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(obj.Err, "unable to list bucket %q", l.bucket)
		}

		entries = append(entries, Entry{
			Key:            obj.Key,
			Size:           obj.Size,
			LastModified:   obj.LastModified,
			VersionID:      obj.VersionID,
			IsLatest:       obj.IsLatest || obj.VersionID == "",
			IsDeleteMarker: obj.IsDeleteMarker,
		})
	}

	return entries, nil
}

// websiteEndpoint derives the bucket's static-website host name. On
// S3-compatible services the website host is the bucket under the
// service endpoint.
func (l *Lister) websiteEndpoint(region string) string {
	if l.endpoint != defaultEndpoint {
		return fmt.Sprintf("%v.%v", l.bucket, l.endpoint)
	}

	if region == "" {
		region = "us-east-1"
	}

	return fmt.Sprintf("%v.s3-website-%v.amazonaws.com", l.bucket, region)
}

// KeyURL returns the public, unauthenticated URL of a key.
func (l *Lister) KeyURL(key string) string {
	return fmt.Sprintf("http://%v.%v/%v", l.bucket, l.endpoint, key)
}

// CheckURL probes a URL for anonymous reachability and returns "OK" or
// a short error description.
func (l *Lister) CheckURL(ctx context.Context, url string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Sprintf("E: %v", err)
	}

	resp, err := l.httpc.Do(req)
	if err != nil {
		return fmt.Sprintf("E: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Sprintf("E: %v", resp.StatusCode)
	}

	return "OK"
}

// ObjectACL returns a short description of the grants on one object.
func (l *Lister) ObjectACL(ctx context.Context, key string) (string, error) {
	oi, err := l.cli.GetObjectACL(ctx, l.bucket, key)
	if err != nil {
		return "", errors.Wrapf(err, "unable to get ACL for %q", key)
	}

	var grants []string
	for _, g := range oi.Grant {
		grantee := g.Grantee.DisplayName
		if grantee == "" {
			grantee = g.Grantee.URI
		}

		grants = append(grants, fmt.Sprintf("%v:%v", grantee, g.Permission))
	}

	if len(grants) == 0 {
		return "none", nil
	}

	return strings.Join(grants, " "), nil
}

// Content fetches object content per the given mode and returns its
// printable form. ContentNone returns an empty string without a
// request.
func (l *Lister) Content(ctx context.Context, key, versionID string, mode ContentMode) (string, error) {
	if mode == ContentNone {
		return "", nil
	}

	opts := minio.GetObjectOptions{VersionID: versionID}
	if mode == ContentFirst10 {
		if err := opts.SetRange(0, 9); err != nil {
			return "", errors.Wrap(err, "unable to set content range")
		}
	}

	obj, err := l.cli.GetObject(ctx, l.bucket, key, opts)
	if err != nil {
		return "", errors.Wrapf(err, "unable to get %q", key)
	}
	defer obj.Close() //nolint:errcheck

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read %q", key)
	}

	if mode == ContentHash {
		h := sha256.Sum256(data)
		return hex.EncodeToString(h[:]), nil
	}

	return fmt.Sprintf("%q", data), nil
}

// errText compresses an API error into a single short line suitable
// for inline display next to the field it broke.
func errText(err error) string {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code != "" {
		return fmt.Sprintf("error: %v", resp.Code)
	}

	return fmt.Sprintf("error: %v", err)
}

package cli

import (
	"context"
	"fmt"

	"github.com/datals/datals/storage/s3"
)

// bucketLister is the part of the S3 lister the listing output needs;
// satisfied by *s3.Lister and faked in tests.
type bucketLister interface {
	Info(ctx context.Context) s3.BucketInfo
	List(ctx context.Context, recursive bool) ([]s3.Entry, error)
	ObjectACL(ctx context.Context, key string) (string, error)
	Content(ctx context.Context, key, versionID string, mode s3.ContentMode) (string, error)
	KeyURL(key string) string
	CheckURL(ctx context.Context, url string) string
}

var _ bucketLister = (*s3.Lister)(nil)

// listBucket prints bucket-level facts followed by one line per object
// under the requested prefix.
func (c *commandList) listBucket(ctx context.Context, url string) error {
	creds, err := s3.LoadCredentials(c.configFile)
	if err != nil {
		return err
	}

	lister, err := s3.NewLister(ctx, url, s3.Options{
		AccessKey:    creds.AccessKey,
		SecretKey:    creds.SecretKey,
		SessionToken: creds.SessionToken,
	})
	if err != nil {
		return err
	}

	return c.printBucket(ctx, lister)
}

func (c *commandList) printBucket(ctx context.Context, lister bucketLister) error {
	info := lister.Info(ctx)
	c.out.printStdout("Bucket info:\n")
	c.out.printStdout("  bucket:     %v\n", pathColor.Sprint(info.Name))
	c.out.printStdout("  region:     %v\n", info.Region)
	c.out.printStdout("  versioning: %v\n", info.Versioning)
	c.out.printStdout("  website:    %v\n", info.Website)
	c.out.printStdout("  policy:     %v\n", info.Policy)

	contentMode, err := s3.ParseContentMode(c.listContent)
	if err != nil {
		return err
	}

	entries, err := lister.List(ctx, c.recursive)
	if err != nil {
		return err
	}

	keyWidth := 0
	for _, e := range entries {
		if len(e.Key) > keyWidth {
			keyWidth = len(e.Key)
		}
	}

	for _, e := range entries {
		c.printBucketEntry(ctx, lister, e, keyWidth, contentMode)
	}

	return nil
}

func (c *commandList) printBucketEntry(ctx context.Context, lister bucketLister, e s3.Entry, keyWidth int, contentMode s3.ContentMode) {
	padded := fmt.Sprintf("%-*v", keyWidth+1, e.Key)
	line := fmt.Sprintf("%v %12v %v", pathColor.Sprint(padded), e.Size, formatTimestamp(e.LastModified))

	if e.IsDeleteMarker {
		line += " " + errorColor.Sprint("[deleted]")
	}

	// non-latest versions keep their base columns; the per-key detail
	// requests are only spent on them with --all
	if (e.IsLatest || c.all) && !e.IsDeleteMarker {
		ver := e.VersionID
		if ver == "" {
			ver = "-"
		}

		line += fmt.Sprintf(" ver:%-32v", ver)

		if acl, err := lister.ObjectACL(ctx, e.Key); err != nil {
			line += " acl:" + warningColor.Sprintf("error: %v", err)
		} else {
			line += " acl:" + acl
		}

		keyURL := lister.KeyURL(e.Key)
		line += fmt.Sprintf(" %v [%v]", keyURL, lister.CheckURL(ctx, keyURL))

		if contentMode != s3.ContentNone {
			if content, err := lister.Content(ctx, e.Key, e.VersionID, contentMode); err != nil {
				line += " content: " + warningColor.Sprintf("error: %v", err)
			} else {
				line += " content: " + content
			}
		}
	}

	c.out.printStdout("%v\n", line)
}

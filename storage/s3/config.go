package s3

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Credentials holds the key pair used to sign bucket requests.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// LoadCredentials resolves credentials for bucket access. When
// configFile is non-empty it must be an s3cmd-style config holding
// access_key and secret_key entries; otherwise the standard AWS
// environment variables are used. Anonymous access is not an error
// here, the bucket check will reject it if the bucket needs auth.
func LoadCredentials(configFile string) (Credentials, error) {
	if configFile != "" {
		f, err := os.Open(configFile)
		if err != nil {
			return Credentials{}, errors.Wrapf(err, "unable to open config file %v", configFile)
		}
		defer f.Close() //nolint:errcheck

		return parseConfig(f)
	}

	return Credentials{
		AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken: os.Getenv("AWS_SESSION_TOKEN"),
	}, nil
}

// parseConfig reads access_key and secret_key from an s3cmd-style
// config stream. Section headers and unrelated keys are ignored.
func parseConfig(r io.Reader) (Credentials, error) {
	var creds Credentials

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "access_key":
			creds.AccessKey = strings.TrimSpace(value)
		case "secret_key":
			creds.SecretKey = strings.TrimSpace(value)
		}
	}

	if err := s.Err(); err != nil {
		return Credentials{}, errors.Wrap(err, "unable to parse config file")
	}

	if creds.AccessKey == "" || creds.SecretKey == "" {
		return Credentials{}, errors.New("config file does not provide access_key and secret_key")
	}

	return creds, nil
}

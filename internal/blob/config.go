package blob

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/openmined/dsmanager/internal/utils"
)

type S3Config struct {
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Endpoint      string `mapstructure:"endpoint"`
	UseAccelerate bool   `mapstructure:"use_accelerate"`
}

// Enabled reports whether remote export was configured at all.
func (c *S3Config) Enabled() bool {
	return c != nil && (c.AccessKey != "" || c.Endpoint != "")
}

func (c *S3Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Region == "" {
		return fmt.Errorf("s3 region required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("s3 access_key required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("s3 secret_key required")
	}
	if c.Endpoint != "" {
		if u, err := url.Parse(c.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid s3 endpoint URL %q", c.Endpoint)
		}
	}
	return nil
}

func (c *S3Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("region", c.Region),
		slog.String("endpoint", c.Endpoint),
		slog.String("access_key", utils.MaskSecret(c.AccessKey)),
		slog.String("secret_key", utils.MaskSecret(c.SecretKey)),
		slog.Bool("use_accelerate", c.UseAccelerate),
	)
}

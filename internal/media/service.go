package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Normalizer rewrites upload bytes before they are hashed, e.g. to shrink
// oversized images. It receives the lower-cased extension without the dot.
type Normalizer interface {
	Normalize(ctx context.Context, ext string, r io.Reader) (io.Reader, error)
}

// Options configures a Service.
type Options struct {
	Root         string
	SubDirs      bool
	PublicDomain string
	Normalizer   Normalizer
	Logger       *zap.Logger
	Now          func() time.Time
}

// Service is the storage-root scoped entry point for ingestion, listing,
// deletion and range serving. It holds no mutable state; the filesystem under
// the root is the only shared resource.
type Service struct {
	layout     Layout
	urls       URLBuilder
	normalizer Normalizer
	log        *zap.Logger
	now        func() time.Time
}

// NewService validates opts and makes sure the root and staging area exist.
func NewService(opts Options) (*Service, error) {
	layout, err := NewLayout(opts.Root, opts.SubDirs)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(layout.stagingDir(), dirMode); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		layout:     layout,
		urls:       NewURLBuilder(opts.PublicDomain),
		normalizer: opts.Normalizer,
		log:        log.Named("media"),
		now:        now,
	}, nil
}

// Layout exposes the resolver used by the service.
func (s *Service) Layout() Layout { return s.layout }

// URLs exposes the public URL builder.
func (s *Service) URLs() URLBuilder { return s.urls }

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

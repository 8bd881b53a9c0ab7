package oss

import (
	"context"
	"io"
	"sync"
)

// Lazy defers bucket setup until the first upload so the server can
// start without OSS credentials. Requests that need storage fail with
// the configuration error instead.
type Lazy struct {
	Prefix string

	once sync.Once
	svc  *OSSService
	err  error
}

func NewLazy(prefix string) *Lazy {
	return &Lazy{Prefix: prefix}
}

func (l *Lazy) service() (*OSSService, error) {
	l.once.Do(func() {
		l.svc, l.err = NewOSSServiceFromEnv(l.Prefix)
	})
	return l.svc, l.err
}

func (l *Lazy) Put(ctx context.Context, dir, filename, contentType string, r io.Reader) (string, error) {
	s, err := l.service()
	if err != nil {
		return "", err
	}
	return s.Put(ctx, dir, filename, contentType, r)
}

func (l *Lazy) PutAsWebP(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	s, err := l.service()
	if err != nil {
		return "", err
	}
	return s.PutAsWebP(ctx, dir, filename, r)
}

func (l *Lazy) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	s, err := l.service()
	if err != nil {
		return err
	}
	return s.DeleteByPublicURL(ctx, publicURL)
}

func (l *Lazy) DeleteObjects(ctx context.Context, keys []string) error {
	s, err := l.service()
	if err != nil {
		return err
	}
	return s.DeleteObjects(ctx, keys)
}

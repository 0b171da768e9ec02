// Package ldcontext provides a caching JSON-LD context document loader shared
// by all engine invocations. The cache is safe for concurrent use.
package ldcontext

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/piprate/json-gold/ld"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const defaultCacheSize = 256

// ErrContextNotFound is returned when a context document is not preloaded and
// remote fetching is disabled.
var ErrContextNotFound = errors.New("context document not found")

// Loader is an ld.DocumentLoader backed by an in-memory cache. Documents are
// resolved from preloaded static documents first, then from the cache, then
// from the remote loader; concurrent loads of the same URL are deduplicated.
type Loader struct {
	cache  gcache.Cache
	group  singleflight.Group
	remote ld.DocumentLoader
	static map[string]*ld.RemoteDocument
	log    *logrus.Entry
}

type loaderOpts struct {
	cacheSize    int
	remoteLoader ld.DocumentLoader
	static       map[string]interface{}
}

// Opt configures the Loader.
type Opt func(*loaderOpts)

// WithRemoteLoader enables fetching of missing contexts through the given
// loader. By default missing contexts are not fetched from the network.
func WithRemoteLoader(loader ld.DocumentLoader) Opt {
	return func(o *loaderOpts) {
		o.remoteLoader = loader
	}
}

// WithRemoteFetch enables fetching of missing contexts over HTTP using an
// instrumented client.
func WithRemoteFetch() Opt {
	return func(o *loaderOpts) {
		o.remoteLoader = ld.NewDefaultDocumentLoader(&http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
	}
}

// WithStaticDocuments preloads context documents, keyed by URL. Preloaded
// documents are never fetched remotely.
func WithStaticDocuments(docs map[string]interface{}) Opt {
	return func(o *loaderOpts) {
		o.static = docs
	}
}

// WithCacheSize sets the maximum number of cached context documents.
func WithCacheSize(size int) Opt {
	return func(o *loaderOpts) {
		o.cacheSize = size
	}
}

// NewLoader returns a new caching document loader.
func NewLoader(opts ...Opt) *Loader {
	options := &loaderOpts{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(options)
	}

	static := make(map[string]*ld.RemoteDocument, len(options.static))
	for u, doc := range options.static {
		static[u] = &ld.RemoteDocument{DocumentURL: u, Document: doc}
	}

	return &Loader{
		cache:  gcache.New(options.cacheSize).ARC().Build(),
		remote: options.remoteLoader,
		static: static,
		log:    logrus.WithField("component", "ldcontext"),
	}
}

// LoadDocument resolves a JSON-LD context document by URL.
func (l *Loader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if doc, ok := l.static[u]; ok {
		return doc, nil
	}

	if cached, err := l.cache.Get(u); err == nil {
		return cached.(*ld.RemoteDocument), nil
	}

	if l.remote == nil {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, u)
	}

	doc, err, _ := l.group.Do(u, func() (interface{}, error) {
		l.log.WithField("url", u).Debug("context cache miss, fetching remote document")

		rd, err := l.remote.LoadDocument(u)
		if err != nil {
			return nil, fmt.Errorf("load remote context document: %w", err)
		}

		if err := l.cache.Set(u, rd); err != nil {
			return nil, fmt.Errorf("cache context document: %w", err)
		}
		return rd, nil
	})
	if err != nil {
		return nil, err
	}

	return doc.(*ld.RemoteDocument), nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// --- Shared test doubles for the attachment pipeline ---

var errNotReachable = errors.New("404 not found")

// fakeFetcher serves fixed bodies by URL and counts calls.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  map[string]int
	delay  time.Duration
	slowed map[string]time.Duration
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: make(map[string][]byte),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
		slowed: make(map[string]time.Duration),
	}
}

func (f *fakeFetcher) serve(url string, body []byte) *fakeFetcher {
	f.bodies[url] = body
	return f
}

// slow delays responses for one URL on top of delay.
func (f *fakeFetcher) slow(url string, d time.Duration) *fakeFetcher {
	f.slowed[url] = d
	return f
}

func (f *fakeFetcher) fail(url string, err error) *fakeFetcher {
	f.errs[url] = err
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	f.mu.Unlock()

	if d := f.delay + f.slowed[url]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errNotReachable
	}
	return body, nil
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// countingConverter records Convert calls per fingerprint. Content listed in
// unsupported becomes an unsupported placeholder.
type countingConverter struct {
	mu          sync.Mutex
	calls       map[domain.Fingerprint]int
	order       []string
	unsupported map[string]bool
	delay       time.Duration
}

func newCountingConverter() *countingConverter {
	return &countingConverter{
		calls:       make(map[domain.Fingerprint]int),
		unsupported: make(map[string]bool),
	}
}

func (c *countingConverter) Convert(_ context.Context, att *domain.FetchedAttachment) *domain.CanonicalRepresentation {
	c.mu.Lock()
	c.calls[att.Fingerprint]++
	c.order = append(c.order, att.Reference.DisplayName())
	c.mu.Unlock()

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	rep := &domain.CanonicalRepresentation{
		Fingerprint: att.Fingerprint,
		Kind:        domain.KindImage,
		Form:        domain.FormPages,
		Pages:       []domain.PageImage{{PNG: []byte("page"), Width: 10, Height: 14}},
		PageCount:   1,
		Filename:    att.Reference.DisplayName(),
	}
	if c.unsupported[string(att.Content)] {
		rep.Kind = domain.KindUnknown
		rep.Placeholder = domain.PlaceholderUnsupported
	}
	return rep
}

func (c *countingConverter) Placeholder(
	ref domain.AttachmentReference,
	fp domain.Fingerprint,
	reason domain.PlaceholderReason,
) *domain.CanonicalRepresentation {
	return &domain.CanonicalRepresentation{
		Fingerprint: fp,
		Kind:        domain.KindUnknown,
		Form:        domain.FormPages,
		Pages:       []domain.PageImage{{PNG: []byte("placeholder")}},
		PageCount:   1,
		Placeholder: reason,
		Filename:    ref.DisplayName(),
	}
}

func (c *countingConverter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *countingConverter) callsFor(fp domain.Fingerprint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[fp]
}

// pngBytes encodes a small solid image.
func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newRef(ticketID, assetID, filename string) domain.AttachmentReference {
	return domain.AttachmentReference{
		TicketID: ticketID,
		AssetID:  assetID,
		URL:      "https://files.example.com/" + assetID + "/" + filename,
		Filename: filename,
	}
}

var quiet = logger.Discard()

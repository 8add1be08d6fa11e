package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/logging"
)

// Files under this size are treated as corrupt cache entries; a failed
// download that stored an HTML error page is well below it.
const minFontBytes = 2048

// Resolver maps a (family, weight) request to a local font file path.
// Resolution never fails: every tier falls through until the system
// font answers.
type Resolver interface {
	Resolve(ctx context.Context, family string, bold bool) string

	// Dir returns the directory holding resolved font files, suitable
	// for the render engine's fontsdir option.
	Dir() string
}

// cssSource is one request identity against the CSS discovery API.
// Different client signatures are served different font container
// formats; only truetype/opentype files are usable by the render
// engine, so identities are tried in order of how likely they are to
// yield one.
type cssSource struct {
	name      string
	endpoint  string // css2 or legacy css
	userAgent string // empty sends no User-Agent, which yields ttf
}

var cssSources = []cssSource{
	{name: "plain-css2", endpoint: "https://fonts.googleapis.com/css2"},
	{name: "plain-legacy", endpoint: "https://fonts.googleapis.com/css"},
	{
		name:      "legacy-msie",
		endpoint:  "https://fonts.googleapis.com/css",
		userAgent: "Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
	},
}

var fontURLPattern = regexp.MustCompile(`url\(([^)]+)\)`)

// DiskResolver resolves fonts through an on-disk cache shared across
// jobs, downloading on miss.
type DiskResolver struct {
	log      *logging.Logger
	cacheDir string
	client   *http.Client

	// overridable in tests
	sources []cssSource
	catalog map[string]staticFamily
}

// NewDiskResolver creates a resolver caching under cacheDir. An empty
// cacheDir selects CLIPFORGE_FONT_CACHE_DIR or the user cache dir.
func NewDiskResolver(log *logging.Logger, cacheDir string) *DiskResolver {
	if cacheDir == "" {
		cacheDir = os.Getenv("CLIPFORGE_FONT_CACHE_DIR")
	}
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil || base == "" {
			base = os.TempDir()
		}
		cacheDir = filepath.Join(base, "clipforge", "fonts")
	}
	return &DiskResolver{
		log:      log,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 30 * time.Second},
		sources:  cssSources,
		catalog:  staticCatalog,
	}
}

func (r *DiskResolver) Dir() string {
	return r.cacheDir
}

// Resolve returns a usable local font file for the requested family
// and weight. Tiers: cache, static file table, CSS discovery API,
// regular-weight retry, system font.
func (r *DiskResolver) Resolve(ctx context.Context, family string, bold bool) string {
	if strings.TrimSpace(family) == "" {
		return SystemFontPath(bold)
	}

	key := sanitizeFamily(family)
	cachePath := filepath.Join(r.cacheDir, cacheFileName(key, bold))

	if usable(cachePath) {
		return cachePath
	}
	// a sub-threshold cache file is a stored error page; redownload
	_ = os.Remove(cachePath)

	if path, ok := r.resolveStatic(ctx, key, bold, cachePath); ok {
		return path
	}
	if path, ok := r.resolveCSS(ctx, family, bold, cachePath); ok {
		return path
	}

	if bold {
		r.log.Warnw("bold font unavailable, retrying regular weight", "family", family)
		return r.Resolve(ctx, family, false)
	}

	r.log.Warnw("font resolution exhausted all tiers, using system font", "family", family)
	return SystemFontPath(bold)
}

func (r *DiskResolver) resolveStatic(ctx context.Context, key string, bold bool, cachePath string) (string, bool) {
	entry, ok := r.catalog[key]
	if !ok {
		return "", false
	}

	fontURL := entry.Regular
	if bold {
		// variable-weight families carry no separate bold file
		if entry.Bold == "" {
			return "", false
		}
		fontURL = entry.Bold
	}

	if err := r.download(ctx, fontURL, "", cachePath); err != nil {
		r.log.Warnw("static font download failed", "family", key, "url", fontURL, "error", err)
		return "", false
	}
	return cachePath, true
}

func (r *DiskResolver) resolveCSS(ctx context.Context, family string, bold bool, cachePath string) (string, bool) {
	for _, src := range r.sources {
		fontURL, err := r.discoverFontURL(ctx, src, family, bold)
		if err != nil {
			r.log.Warnw("font discovery failed",
				"family", family, "source", src.name, "error", err)
			continue
		}
		if fontURL == "" {
			// this identity served only formats the render engine
			// cannot load; try the next one
			continue
		}
		if err := r.download(ctx, fontURL, src.userAgent, cachePath); err != nil {
			r.log.Warnw("discovered font download failed",
				"family", family, "url", fontURL, "error", err)
			continue
		}
		return cachePath, true
	}
	return "", false
}

func (r *DiskResolver) discoverFontURL(ctx context.Context, src cssSource, family string, bold bool) (string, error) {
	weight := "400"
	if bold {
		weight = "700"
	}

	q := url.Values{}
	if strings.HasSuffix(src.endpoint, "css2") {
		q.Set("family", family+":wght@"+weight)
	} else {
		q.Set("family", family+":"+weight)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	if src.userAgent != "" {
		req.Header.Set("User-Agent", src.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	return pickUsableFontURL(string(body)), nil
}

// pickUsableFontURL extracts the first truetype/opentype url from a CSS
// response, skipping container formats the render engine cannot load.
func pickUsableFontURL(css string) string {
	for _, match := range fontURLPattern.FindAllStringSubmatch(css, -1) {
		u := strings.Trim(match[1], `'" `)
		lower := strings.ToLower(u)
		if strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf") {
			return u
		}
	}
	return ""
}

func (r *DiskResolver) download(ctx context.Context, fontURL, userAgent, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fontURL, nil)
	if err != nil {
		return err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create font cache dir: %w", err)
	}

	// write via temp file so a concurrent reader never sees a partial
	// cache entry
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if info, err := os.Stat(tmpPath); err != nil || info.Size() < minFontBytes {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("downloaded font too small to be a real font file")
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func usable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() >= minFontBytes
}

func cacheFileName(key string, bold bool) string {
	if bold {
		return key + "-bold.ttf"
	}
	return key + "-regular.ttf"
}

// sanitizeFamily lowercases and strips everything but letters and
// digits, so "Open Sans" and "open-sans" share a cache entry.
func sanitizeFamily(family string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(family) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

package pagemeta

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// cachedRequirement holds a parsed requirement and cache metadata
type cachedRequirement struct {
	req      Requirement
	loadedAt time.Time
}

// FileSource reads clearance requirements from the served page files
// themselves, looking for the required-clearance meta tag or the body
// data attribute the site templates carry. Results are cached per page.
type FileSource struct {
	fs            afero.Fs
	cacheDuration time.Duration

	mu    sync.RWMutex
	cache map[string]*cachedRequirement
}

// NewFileSource creates a source reading pages from the given filesystem
func NewFileSource(fs afero.Fs, cacheDuration time.Duration) *FileSource {
	return &FileSource{
		fs:            fs,
		cacheDuration: cacheDuration,
		cache:         make(map[string]*cachedRequirement),
	}
}

// RequiredClearance implements Source
func (s *FileSource) RequiredClearance(pagePath string) (Requirement, error) {
	filePath := resolvePagePath(pagePath)

	s.mu.RLock()
	cached, exists := s.cache[filePath]
	s.mu.RUnlock()

	if exists && time.Since(cached.loadedAt) < s.cacheDuration {
		return cached.req, nil
	}

	req, err := s.loadRequirement(filePath)
	if err != nil {
		return None(), err
	}

	s.mu.Lock()
	s.cache[filePath] = &cachedRequirement{
		req:      req,
		loadedAt: time.Now(),
	}
	s.mu.Unlock()

	return req, nil
}

// loadRequirement reads and parses one page file
func (s *FileSource) loadRequirement(filePath string) (Requirement, error) {
	f, err := s.fs.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing pages carry no requirement; the file
			// server will 404 them on its own
			return None(), nil
		}
		return None(), fmt.Errorf("opening page %q: %w", filePath, err)
	}
	defer f.Close()

	raw, ok, err := extractDeclaration(f)
	if err != nil {
		return None(), fmt.Errorf("parsing page %q: %w", filePath, err)
	}
	if !ok {
		return None(), nil
	}
	return ParseRequirement(raw), nil
}

// resolvePagePath maps a request path to the page file that serves it
func resolvePagePath(pagePath string) string {
	clean := path.Clean("/" + pagePath)
	if strings.HasSuffix(pagePath, "/") || clean == "/" {
		clean = path.Join(clean, "index.html")
	} else if path.Ext(clean) == "" {
		clean += ".html"
	}
	return strings.TrimPrefix(clean, "/")
}

// extractDeclaration scans an HTML document for a clearance declaration.
// The meta tag wins over the body attribute, matching how the site's
// pages declare it.
func extractDeclaration(r io.Reader) (string, bool, error) {
	tokenizer := html.NewTokenizer(r)

	var bodyValue string
	var bodyFound bool

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return "", false, err
			}
			return bodyValue, bodyFound, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "meta":
				if v, ok := metaContent(token); ok {
					return v, true, nil
				}
			case "body":
				for _, attr := range token.Attr {
					if attr.Key == BodyAttr && attr.Val != "" {
						bodyValue = attr.Val
						bodyFound = true
					}
				}
			}
		}
	}
}

// metaContent returns the content of a required-clearance meta tag
func metaContent(token html.Token) (string, bool) {
	var name, content string
	for _, attr := range token.Attr {
		switch attr.Key {
		case "name":
			name = attr.Val
		case "content":
			content = attr.Val
		}
	}
	if name == MetaName && content != "" {
		return content, true
	}
	return "", false
}

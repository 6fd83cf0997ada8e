package client

import (
	"fmt"
	"net/url"
)

type targetKind int

const (
	targetNone targetKind = iota
	targetPath
	targetURL
	targetDerive
)

// Target names the resource a request goes to. Build one with Path, URL or
// Derive; the zero Target is invalid.
type Target struct {
	kind   targetKind
	path   string
	url    *url.URL
	derive func(base *url.URL) *url.URL
}

// Path is a URL reference resolved against the base URL. "files/a" nests
// under the base path; "/files/a" replaces it.
func Path(p string) Target {
	return Target{kind: targetPath, path: p}
}

// URL is an absolute URL used as is.
func URL(u *url.URL) Target {
	return Target{kind: targetURL, url: u}
}

// Derive computes the URL from a copy of the base URL, which fn may modify
// and return. Used to add query parameters without string building.
func Derive(fn func(base *url.URL) *url.URL) Target {
	return Target{kind: targetDerive, derive: fn}
}

func (t Target) String() string {
	switch t.kind {
	case targetPath:
		return t.path
	case targetURL:
		if t.url != nil {
			return t.url.String()
		}
	case targetDerive:
		return "<derived>"
	}
	return "<invalid>"
}

// Resolve returns the absolute URL t names relative to base. base is not
// modified.
func (t Target) Resolve(base *url.URL) (*url.URL, error) {
	switch t.kind {
	case targetPath:
		ref, err := url.Parse(t.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
		}
		return base.ResolveReference(ref), nil

	case targetURL:
		if t.url == nil || !t.url.IsAbs() {
			return nil, fmt.Errorf("%w: url must be absolute", ErrInvalidTarget)
		}
		u := *t.url
		return &u, nil

	case targetDerive:
		if t.derive == nil {
			return nil, fmt.Errorf("%w: nil derive func", ErrInvalidTarget)
		}
		u := t.derive(cloneURL(base))
		if u == nil {
			return nil, fmt.Errorf("%w: derive func returned nil", ErrInvalidTarget)
		}
		return u, nil

	default:
		return nil, ErrInvalidTarget
	}
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

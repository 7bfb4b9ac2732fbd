package pattern

import (
	"strings"
)

// SchemeFile is the scheme used for local paths and urls without a scheme.
const SchemeFile = "file"

// Location is a parsed catalog url such as "s3://bucket/data/{id}.csv".
type Location struct {
	// Scheme selects the lister backend ("s3", "file", "memory", ...).
	Scheme string
	// Root is the bucket for object stores, or the directory the template
	// is relative to for filesystems.
	Root string
	// Path is the template relative to Root.
	Path string
}

// ParseURL splits a catalog url into backend scheme, root and template.
// Chained cache prefixes ("simplecache::s3://...") are dropped.
func ParseURL(urlpath string) Location {
	if i := strings.LastIndex(urlpath, "::"); i >= 0 {
		urlpath = urlpath[i+2:]
	}

	scheme := SchemeFile
	rest := urlpath
	if i := strings.Index(urlpath, "://"); i >= 0 {
		scheme = strings.ToLower(urlpath[:i])
		rest = urlpath[i+3:]
	}

	if scheme == SchemeFile {
		return splitDir(scheme, rest)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	return Location{Scheme: scheme, Root: bucket, Path: key}
}

// splitDir moves the literal directory prefix of a filesystem template into
// Root so that listers can be rooted there.
func splitDir(scheme, template string) Location {
	literal := template
	if i := strings.IndexByte(template, '{'); i >= 0 {
		literal = template[:i]
	}
	i := strings.LastIndexByte(literal, '/')
	switch {
	case i < 0:
		return Location{Scheme: scheme, Root: ".", Path: template}
	case i == 0:
		return Location{Scheme: scheme, Root: "/", Path: template[1:]}
	default:
		return Location{Scheme: scheme, Root: template[:i], Path: template[i+1:]}
	}
}

// String rebuilds the url with the template path.
func (l Location) String() string {
	return l.Join(l.Path)
}

// Join returns the url of a path relative to the location root.
func (l Location) Join(path string) string {
	if l.Scheme == SchemeFile {
		switch l.Root {
		case "", ".":
			return path
		case "/":
			return "/" + path
		}
		return l.Root + "/" + path
	}
	return l.Scheme + "://" + l.Root + "/" + path
}

package media

import (
	"errors"
	"path/filepath"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	// KindLocal is a path relative to the media root.
	KindLocal
	// KindRemote is a URL already served from our media host.
	KindRemote
	// KindExternal is a URL on some other host. It is left alone.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	case KindExternal:
		return "external"
	}
	return "empty"
}

type Ref struct {
	Kind  Kind
	Value string
}

var ErrOutsideRoot = errors.New("path escapes media root")

// ParseRef classifies a stored media field. remoteBase is the URL prefix
// every migrated object starts with, e.g. https://storage.googleapis.com/bucket/.
func ParseRef(raw, remoteBase string) Ref {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Ref{Kind: KindEmpty}
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "//") {
		if remoteBase != "" && strings.HasPrefix(v, remoteBase) {
			return Ref{Kind: KindRemote, Value: v}
		}
		return Ref{Kind: KindExternal, Value: v}
	}
	return Ref{Kind: KindLocal, Value: v}
}

// LocalPath resolves a local ref under root, rejecting paths that climb out of it.
func (r Ref) LocalPath(root string) (string, error) {
	rel := strings.TrimPrefix(r.Value, "/")
	rel = strings.TrimPrefix(rel, "media/")
	rel = filepath.FromSlash(rel)

	full := filepath.Join(root, rel)
	back, err := filepath.Rel(root, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
